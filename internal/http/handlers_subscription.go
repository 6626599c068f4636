package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wallet/internal/core"
	"wallet/internal/dto"
	"wallet/internal/storage"
)

// handleListSubscriptions lists active subscriptions, or all of them with
// ?include_inactive=true. Totals only ever count active ones.
func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	all, err := parseBool(r.URL.Query(), "include_inactive")
	if err != nil {
		handleError(w, r, core.NewValidationError(core.KindSubscription, err))
		return
	}
	subs, err := s.store.ListSubscriptions(r.Context(), storage.SubscriptionFilter{IncludeInactive: all})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSubscriptionList(subs))
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSubscriptionRequest
	if err := decodeJSON(w, r, core.KindSubscription, &req); err != nil {
		handleError(w, r, err)
		return
	}
	sub, err := req.ToSubscription()
	if err != nil {
		handleError(w, r, err)
		return
	}
	created, err := s.store.CreateSubscription(r.Context(), sub)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromSubscription(created))
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.store.GetSubscription(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromSubscription(sub))
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSubscriptionRequest
	if err := decodeJSON(w, r, core.KindSubscription, &req); err != nil {
		handleError(w, r, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		handleError(w, r, err)
		return
	}
	updated, err := s.store.UpdateSubscription(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromSubscription(updated))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSubscription(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
