// Package security holds request hygiene middleware for the local JSON
// API: client IP resolution, probe detection and response headers.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"wallet/internal/log"
)

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousRequests int64
	RejectedRequests   int64
}

// Detector flags requests that look like scanners or path probes.
type Detector struct {
	metrics        DetectionMetrics
	trustedProxies []*net.IPNet
}

// NewDetector trusts forwarding headers only from loopback, since the API
// is meant to be reached from the same machine or through a local proxy.
func NewDetector() *Detector {
	return &Detector{
		trustedProxies: []*net.IPNet{
			parseCIDR("127.0.0.0/8"),
			parseCIDR("::1/128"),
		},
	}
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

var (
	suspiciousPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		".git", ".ssh", "<script", "union select", "etc/passwd", "cmd.exe",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const maxURLLength = 2048

// IsSuspicious reports whether r looks like a probe rather than an API call.
func (d *Detector) IsSuspicious(r *http.Request) bool {
	suspicious := false

	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	if decoded, err := url.QueryUnescape(query); err == nil {
		query = decoded
	}
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			suspicious = true
			break
		}
	}

	for _, method := range unusualMethods {
		if r.Method == method {
			suspicious = true
			break
		}
	}

	if len(r.URL.String()) > maxURLLength {
		suspicious = true
	}

	if suspicious {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
	}
	return suspicious
}

// ExtractClientIP returns the peer address, or the first X-Forwarded-For /
// X-Real-IP entry when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
		RejectedRequests:   atomic.LoadInt64(&d.metrics.RejectedRequests),
	}
}

// Middleware rejects suspicious requests with 400 before they reach a
// handler.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.IsSuspicious(r) {
			atomic.AddInt64(&d.metrics.RejectedRequests, 1)
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rejected suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				"client_ip", d.ExtractClientIP(r))
			http.Error(w, `{"code":"bad_request","message":"request rejected"}`, http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Headers sets the response headers every JSON response carries.
func Headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
