package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/core"
	"wallet/internal/dto"
	"wallet/internal/log"
)

// handleHealth reports liveness plus a cheap store round trip.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, httpStatus := "ok", http.StatusOK
	checks := map[string]any{}

	if n, err := s.store.Count(ctx, core.KindAccount); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, httpStatus = "unavailable", http.StatusServiceUnavailable
	} else {
		checks["store"] = map[string]any{"status": "ok", "accounts": n}
	}
	checks["notifier"] = map[string]any{"subscribers": s.store.Notifier().Subscribers()}
	if s.limiter != nil {
		checks["rate_limiter"] = map[string]any{
			"active_clients": s.limiter.ActiveClients(),
			"rejected":       s.limiter.Hits(),
		}
	}
	metrics := s.tracer.GetMetrics()
	checks["requests"] = map[string]any{"total": metrics.TotalRequests, "server_errors": metrics.ServerErrors}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
		"checks":    checks,
	})
}

// handleSummary refreshes the home, account and subscription view-models
// together and returns their combined state, so the response reflects
// every write committed before the request.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return s.home.Refresh(ctx) })
	g.Go(func() error { return s.accounts.Refresh(ctx) })
	g.Go(func() error { return s.subscriptions.Refresh(ctx) })
	if err := g.Wait(); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSummary(s.home.State(), s.accounts.State(), s.subscriptions.State()))
}

// handleActivity returns one account's transactions and totals.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("account"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_input", "account is required")
		return
	}
	if err := s.transactions.Refresh(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromActivity(s.transactions.ForAccount(name)))
}

func (s *Server) handleProcessDue(w http.ResponseWriter, r *http.Request) {
	results, err := s.processor.ProcessDue(r.Context(), s.now())
	if err != nil {
		handleError(w, r, err)
		return
	}

	type charge struct {
		SubscriptionID string `json:"subscription_id"`
		Name           string `json:"name"`
		Charges        int    `json:"charges"`
		NextPayment    string `json:"next_payment_date"`
	}
	out := make([]charge, len(results))
	total := 0
	for i, res := range results {
		out[i] = charge{
			SubscriptionID: res.SubscriptionID,
			Name:           res.Name,
			Charges:        res.Charges,
			NextPayment:    res.NextPayment.Format(dto.DateLayout),
		}
		total += res.Charges
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Processed due subscriptions",
		log.FieldOperation, log.OpProcess, log.FieldCount, total)
	writeJSON(w, r, http.StatusOK, map[string]any{"charged": out, "transactions_created": total})
}
