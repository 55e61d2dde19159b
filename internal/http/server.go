package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/currency"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/reports"
	"fintrack/internal/services"
)

type Config struct {
	Addr               string
	RateLimitPerMinute int
	// Cache, when set, should also be registered as a change hook on the
	// service so mutations from any surface flush it.
	Cache  *ReportCache
	Logger *log.Logger
	Now    func() time.Time
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header is believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	svc      *services.LedgerService
	reporter *reports.Reporter
	cache    *ReportCache
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *log.Logger
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, svc *services.LedgerService) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.FromContext(context.Background()).WithComponent(log.ComponentHTTP)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		svc:      svc,
		reporter: reports.New(currency.NewConverter(currency.DefaultRates())),
		cache:    cfg.Cache,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector: security.NewDetector(),
		logger:   cfg.Logger,
		now:      cfg.Now,
	}

	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("POST /api/recalculate", s.handleRecalculate)

	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("POST /api/accounts/{id}/adjust", s.handleAdjustAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("PUT /api/incomes", s.handleUpsertIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)
	mux.HandleFunc("PUT /api/expenses", s.handleUpsertExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /api/transfers", s.handleCreateTransfer)
	mux.HandleFunc("DELETE /api/transfers/{id}", s.handleDeleteTransfer)

	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("POST /api/goals/{id}/contributions", s.handleContribute)
	mux.HandleFunc("POST /api/goals/{id}/archive", s.handleArchiveGoal)
	mux.HandleFunc("POST /api/capital", s.handleAddCapital)
	mux.HandleFunc("POST /api/credits", s.handleAddCredit)
	mux.HandleFunc("POST /api/assets", s.handleAddAsset)

	mux.HandleFunc("PATCH /api/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("POST /api/presets/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/presets/categories/{category}", s.handleDeleteCategory)
	mux.HandleFunc("POST /api/presets/categories/{category}/subcategories", s.handleAddSubcategory)
	mux.HandleFunc("DELETE /api/presets/categories/{category}/subcategories/{sub}", s.handleDeleteSubcategory)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/analytics/expenses", s.handleExpenseAnalytics)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)

	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
}

// middleware wraps the mux, outermost first: logger, trace, security
// headers, probe detection, then rate limiting of writes.
func (s *Server) middleware(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(next)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	traced := trace.NewMiddleware(s.detector.ExtractClientIP).Middleware(headers)
	return log.Middleware(s.logger)(traced)
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
