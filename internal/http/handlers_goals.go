package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type goalRequest struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
	Saved  float64 `json:"saved"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.CreateGoal(r.Context(), sanitizeInput(req.Name), req.Target, req.Saved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityGoal, log.OpCreate, int64(g.ID)).
		Body(g).
		Write(w)
}

type contributionRequest struct {
	AccountID core.ID   `json:"accountId"`
	Amount    float64   `json:"amount"`
	Date      core.Date `json:"date"`
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req contributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.svc.ContributeToGoal(r.Context(), goalID, req.AccountID, req.Amount, req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityGoal, log.OpContribute, int64(goalID)).
		Body(e).
		Write(w)
}

type archiveRequest struct {
	CompletedAt time.Time `json:"completedAt"`
}

// handleArchiveGoal archives a goal. The body is optional; without it the
// goal is stamped with the current time.
func (s *Server) handleArchiveGoal(w http.ResponseWriter, r *http.Request) {
	goalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req archiveRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := s.svc.MoveGoalToArchive(r.Context(), goalID, req.CompletedAt); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusNoContent).
		Changed(services.EntityGoal, log.OpArchive, int64(goalID)).
		Write(w)
}

type capitalRequest struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	AccountID core.ID `json:"accountId"`
}

func (s *Server) handleAddCapital(w http.ResponseWriter, r *http.Request) {
	var req capitalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := s.svc.AddCapital(r.Context(), sanitizeInput(req.Name), req.Amount, req.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityCapital, log.OpCreate, int64(entry.ID)).
		Body(entry).
		Write(w)
}

type creditRequest struct {
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
	Payments int       `json:"payments"`
	Start    core.Date `json:"start"`
}

func (s *Server) handleAddCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	credit, err := s.svc.AddCredit(r.Context(), sanitizeInput(req.Name), req.Amount, req.Payments, req.Start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityCredit, log.OpCreate, int64(credit.ID)).
		Body(credit).
		Write(w)
}

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var in core.Asset
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Name = sanitizeInput(in.Name)
	in.Type = sanitizeInput(in.Type)
	in.Trend = sanitizeInput(in.Trend)

	a, err := s.svc.AddAsset(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Changed(services.EntityAsset, log.OpCreate, int64(a.ID)).
		Body(a).
		Write(w)
}
