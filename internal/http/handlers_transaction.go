package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wallet/internal/core"
	"wallet/internal/dto"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	txs, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewTransactionList(filter.AccountName, txs, time.UTC))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := decodeJSON(w, r, core.KindTransaction, &req); err != nil {
		handleError(w, r, err)
		return
	}
	t, err := req.ToTransaction()
	if err != nil {
		handleError(w, r, err)
		return
	}
	created, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromTransaction(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromTransaction(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTransactionRequest
	if err := decodeJSON(w, r, core.KindTransaction, &req); err != nil {
		handleError(w, r, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		handleError(w, r, err)
		return
	}
	updated, err := s.store.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromTransaction(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
