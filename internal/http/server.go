package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"salarycalc/internal/core"
	"salarycalc/internal/log"
	"salarycalc/internal/middleware/ratelimit"
	"salarycalc/internal/middleware/security"
	"salarycalc/internal/middleware/trace"
	"salarycalc/internal/services"
	appweb "salarycalc/web"
)

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
	HistogramBins      int
	Logger             *log.Logger

	// ReadyCheck, when set, is consulted by /readyz in addition to the
	// dataset and template checks.
	ReadyCheck func(ctx context.Context) error
}

type Server struct {
	http.Server
	templates *template.Template
	salaries  *services.SalaryService
	exports   *services.ExportService
	logger    *log.Logger

	histogramBins int
	readyCheck    func(ctx context.Context) error

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	queries       int64
	csvDownloads  int64
	exportsQueued int64
	uptime        time.Time
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options, salaries *services.SalaryService, exports *services.ExportService) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = core.DefaultHistogramBins
	}
	if exports == nil {
		exports = services.NewExportService(salaries, nil, logger)
	}

	limitConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	detector := security.NewDetector()
	s := &Server{
		salaries:         salaries,
		exports:          exports,
		logger:           logger.WithComponent(log.ComponentHTTP),
		histogramBins:    opts.HistogramBins,
		readyCheck:       opts.ReadyCheck,
		rateLimiter:      ratelimit.NewLimiter(limitConfig),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.WarnContext(context.Background(), "Failed parsing templates",
			log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = security.NewCORS(opts.AllowedOrigins).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = log.Middleware(logger, trace.RequestIDFromRequest)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.WarnContext(context.Background(), "Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.Handle("POST /ui/exports", limited(http.HandlerFunc(s.handleUIExport)))

	mux.HandleFunc("GET /api", s.handleAPIRoot)
	mux.HandleFunc("GET /api/countries", s.handleCountries)
	mux.HandleFunc("GET /api/languages", s.handleLanguages)
	mux.HandleFunc("GET /api/experience-levels", s.handleExperienceLevels)
	mux.HandleFunc("GET /api/salary-data", s.handleSalaryData)
	mux.HandleFunc("GET /api/salary-data.csv", s.handleSalaryCSV)
	mux.HandleFunc("GET /api/salary-stats", s.handleSalaryStats)
	mux.HandleFunc("GET /api/salary-stats/by-category", s.handleSalaryStatsByCategory)
	mux.HandleFunc("GET /api/salary-histogram", s.handleSalaryHistogram)
	mux.Handle("POST /api/exports", limited(http.HandlerFunc(s.handleAPIExport)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

// Shutdown stops the rate limiter and then the HTTP server. It is safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
