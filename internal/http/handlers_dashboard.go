package http

import (
	"net/http"

	"fintrack/internal/log"
)

// cached serves key from the report cache or computes it with build.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, key string, build func() (any, error)) {
	if v, ok := s.cache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Report cache hit", "key", key)
		NewJSONResponse().Header("X-Cache", "hit").Body(v).Write(w)
		return
	}
	v, err := build()
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.cache.Set(key, v)
	NewJSONResponse().Header("X-Cache", "miss").Body(v).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.cached(w, r, "dashboard?"+r.URL.RawQuery, func() (any, error) {
		return s.reporter.Dashboard(s.svc.Snapshot(), f), nil
	})
}

func (s *Server) handleExpenseAnalytics(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.cached(w, r, "analytics?"+r.URL.RawQuery, func() (any, error) {
		return s.reporter.ExpenseAnalytics(s.svc.Snapshot(), f), nil
	})
}

// handleForecast keys the cache by the resolved month and the current
// month, since the average window moves with the clock.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	month := ParseMonth(r.URL.Query())
	s.cached(w, r, "forecast?"+month+"@"+now.UTC().Format("2006-01"), func() (any, error) {
		return s.reporter.Forecast(s.svc.Snapshot(), month, now)
	})
}
