package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleUpsertIncome(w http.ResponseWriter, r *http.Request) {
	var in core.Income
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Category = sanitizeInput(in.Category)

	saved, err := s.svc.UpsertIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityIncome, log.OpUpdate, int64(saved.ID)).
		Body(saved).
		Write(w)
}

func (s *Server) handleUpsertExpense(w http.ResponseWriter, r *http.Request) {
	var in core.Expense
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Category = sanitizeInput(in.Category)
	in.Subcategory = sanitizeInput(in.Subcategory)

	saved, err := s.svc.UpsertExpense(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityExpense, log.OpUpdate, int64(saved.ID)).
		Body(saved).
		Write(w)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var in core.Transfer
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Note = sanitizeInput(in.Note)

	tr, err := s.svc.CreateTransfer(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityTransfer, log.OpCreate, int64(tr.ID)).
		Body(tr).
		Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, services.EntityIncome, s.svc.DeleteIncome)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, services.EntityExpense, s.svc.DeleteExpense)
}

func (s *Server) handleDeleteTransfer(w http.ResponseWriter, r *http.Request) {
	s.deleteRecord(w, r, services.EntityTransfer, s.svc.DeleteTransfer)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, entity string, del func(context.Context, core.ID) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusNoContent).
		Changed(entity, log.OpDelete, int64(id)).
		Write(w)
}
