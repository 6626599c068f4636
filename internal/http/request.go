package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"wallet/internal/core"
	"wallet/internal/dto"
	"wallet/internal/storage"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into v. Malformed bodies and
// unknown fields are validation errors for kind.
func decodeJSON(w http.ResponseWriter, r *http.Request, kind core.Kind, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty request body")
		}
		return core.NewValidationError(kind, fmt.Errorf("decode body: %w", err))
	}
	if dec.More() {
		return core.NewValidationError(kind, errors.New("body must contain a single JSON object"))
	}
	return nil
}

// parseAccountOrder reads ?order=created|balance.
func parseAccountOrder(query url.Values) (storage.AccountOrder, error) {
	switch strings.ToLower(strings.TrimSpace(query.Get("order"))) {
	case "", "created":
		return storage.AccountsByCreated, nil
	case "balance":
		return storage.AccountsByBalance, nil
	default:
		return 0, core.NewValidationError(core.KindAccount, fmt.Errorf("unknown order %q: want created or balance", query.Get("order")))
	}
}

// parseTransactionFilter reads ?account=NAME&month=YYYY-MM.
func parseTransactionFilter(query url.Values) (storage.TransactionFilter, error) {
	var f storage.TransactionFilter
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		month, err := dto.ParseMonth(v)
		if err != nil {
			return f, core.NewValidationError(core.KindTransaction, err)
		}
		f = storage.MonthFilter(month)
	}
	f.AccountName = strings.TrimSpace(query.Get("account"))
	return f, nil
}

// parseBool treats an absent parameter as false.
func parseBool(query url.Values, key string) (bool, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: want true or false", key, v)
	}
	return b, nil
}
