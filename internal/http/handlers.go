package http

import (
	"net/http"

	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.svc.Snapshot()).Write(w)
}

type recalcResponse struct {
	Accounts int `json:"accounts"`
	Goals    int `json:"goals"`
	Orphans  int `json:"orphans"`
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Recalculate(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityLedger, log.OpRecalc, 0).
		Body(recalcResponse{Accounts: stats.Accounts, Goals: stats.Goals, Orphans: stats.Orphans}).
		Write(w)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in services.AccountInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Name = sanitizeInput(in.Name)
	in.Type = sanitizeInput(in.Type)

	acc, err := s.svc.CreateAccount(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityAccount, log.OpCreate, int64(acc.ID)).
		Body(acc).
		Write(w)
}

type adjustRequest struct {
	Delta float64 `json:"delta"`
}

func (s *Server) handleAdjustAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req adjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	acc, err := s.svc.AdjustAccount(r.Context(), id, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityAccount, log.OpAdjust, int64(acc.ID)).
		Body(acc).
		Write(w)
}

type cascadeResponse struct {
	Incomes   int `json:"incomes"`
	Expenses  int `json:"expenses"`
	Capital   int `json:"capital"`
	Transfers int `json:"transfers"`
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.svc.DeleteAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityAccount, log.OpDelete, int64(id)).
		Body(cascadeResponse{Incomes: res.Incomes, Expenses: res.Expenses, Capital: res.Capital, Transfers: res.Transfers}).
		Write(w)
}
