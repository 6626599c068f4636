package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"wallet/internal/core"
	"wallet/internal/dto"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	order, err := parseAccountOrder(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}
	accounts, err := s.store.ListAccounts(r.Context(), order)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewAccountList(accounts))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(w, r, core.KindAccount, &req); err != nil {
		handleError(w, r, err)
		return
	}
	a, err := req.ToAccount()
	if err != nil {
		handleError(w, r, err)
		return
	}
	created, err := s.store.CreateAccount(r.Context(), a)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromAccount(created))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromAccount(a))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAccountRequest
	if err := decodeJSON(w, r, core.KindAccount, &req); err != nil {
		handleError(w, r, err)
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		handleError(w, r, err)
		return
	}
	updated, err := s.store.UpdateAccount(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromAccount(updated))
}

// Deleting an unknown id is not an error.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
