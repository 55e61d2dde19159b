package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch services.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntitySettings, log.OpUpdate, 0).
		Body(st).
		Write(w)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.svc.Presets()).Write(w)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.writePresets(w, r, log.OpCreate, func(ctx context.Context) (core.Presets, error) {
		return s.svc.AddCategory(ctx, sanitizeInput(req.Name))
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	category := pathName(r, "category")
	s.writePresets(w, r, log.OpDelete, func(ctx context.Context) (core.Presets, error) {
		return s.svc.DeleteCategory(ctx, category)
	})
}

func (s *Server) handleAddSubcategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	category := pathName(r, "category")
	s.writePresets(w, r, log.OpCreate, func(ctx context.Context) (core.Presets, error) {
		return s.svc.AddSubcategory(ctx, category, sanitizeInput(req.Name))
	})
}

func (s *Server) handleDeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	category, sub := pathName(r, "category"), pathName(r, "sub")
	s.writePresets(w, r, log.OpDelete, func(ctx context.Context) (core.Presets, error) {
		return s.svc.DeleteSubcategory(ctx, category, sub)
	})
}

func (s *Server) writePresets(w http.ResponseWriter, r *http.Request, op string, edit func(context.Context) (core.Presets, error)) {
	p, err := edit(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityPresets, op, 0).
		Body(p).
		Write(w)
}
