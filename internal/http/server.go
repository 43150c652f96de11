package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"moodlog/internal/auth"
	"moodlog/internal/backend"
	"moodlog/internal/cache"
	"moodlog/internal/config"
	"moodlog/internal/core"
	applog "moodlog/internal/log"
	"moodlog/internal/middleware/ratelimit"
	"moodlog/internal/middleware/security"
	"moodlog/internal/middleware/trace"
	"moodlog/internal/quotes"
	appweb "moodlog/web"
)

const (
	maxHistoryDays  = 366
	storeTimeout    = 7 * time.Second
	cleanupInterval = 10 * time.Minute
)

// Options are the server settings taken from config.Config.
type Options struct {
	Addr               string
	Location           *time.Location
	HistoryDays        int
	RateLimitPerMinute int
	CacheUsers         int
	CacheTTL           time.Duration
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
	// TrustedProxies are extra CIDRs whose forwarding headers are believed.
	TrustedProxies []string
	SleepTrend     core.SleepTrend
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:               ":" + cfg.Port,
		Location:           cfg.Location(),
		HistoryDays:        cfg.HistoryDays,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheUsers:         500,
		CacheTTL:           5 * time.Minute,
		SecureCookies:      cfg.SecureCookies,
		TrustedProxies:     cfg.TrustedProxies,
		SleepTrend:         cfg.SleepTrend(),
	}
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *applog.Logger
	events    *applog.StructuredLogger

	store   backend.Backend
	entries *cache.CachedEntries
	auth    *auth.Service
	tokens  *auth.TokenManager
	quotes  *quotes.Catalogue

	location      *time.Location
	historyDays   int
	secureCookies bool
	sleepTrend    core.SleepTrend
	now           func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	cacheManager     *cache.Manager

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	entriesLogged atomic.Int64
	registrations atomic.Int64
	logins        atomic.Int64
	uptime        time.Time
}

// NewServer wires routes, middleware and templates around the backend.
func NewServer(opts Options, store backend.Backend, tokens *auth.TokenManager, catalogue *quotes.Catalogue, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.HistoryDays < core.TrendDays {
		opts.HistoryDays = core.TrendDays
	}
	if opts.CacheUsers <= 0 {
		opts.CacheUsers = 500
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	httpLogger := logger.WithComponent(applog.ComponentHTTP)
	events := applog.NewStructuredLogger(logger)

	s := &Server{
		logger:           httpLogger,
		events:           events,
		store:            store,
		entries:          cache.NewCachedEntries(store, store, opts.CacheUsers, opts.CacheTTL),
		auth:             auth.NewService(store, tokens),
		tokens:           tokens,
		quotes:           catalogue,
		location:         opts.Location,
		historyDays:      opts.HistoryDays,
		secureCookies:    opts.SecureCookies,
		sleepTrend:       opts.SleepTrend,
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: security.NewDetector(),
		cacheManager:     cache.NewManager(),
	}
	s.appMetrics.uptime = time.Now()
	for _, cidr := range opts.TrustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			httpLogger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, events)

	s.cacheManager.Register(s.entries)
	s.cacheManager.StartCleanup(cleanupInterval)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		httpLogger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	s.Server = http.Server{
		Addr:           opts.Addr,
		Handler:        s.routes(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/assets/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /assets/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)
	protected := func(h http.HandlerFunc) http.Handler {
		return limited(s.tokens.Middleware(security.NoStore(h)))
	}

	// Ops
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// Pages and HTMX partials
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /ui/dashboard", protected(s.handleDashboardPartial))
	mux.Handle("/entries", protected(s.handleCreateEntry))

	// Auth
	mux.Handle("POST /api/auth/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	// JSON API
	mux.Handle("GET /api/user", protected(s.handleGetUser))
	mux.Handle("PUT /api/user", protected(s.handleUpdateUser))
	mux.Handle("GET /api/mood", protected(s.handleListEntries))
	mux.Handle("POST /api/mood", protected(s.handleLogMood))
	mux.Handle("GET /api/mood/export.csv", protected(s.handleExportCSV))
	mux.Handle("GET /api/dashboard", protected(s.handleDashboard))
	mux.Handle("GET /api/quotes", protected(s.handleQuote))

	var h http.Handler = mux
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = applog.Middleware(s.logger)(h)
	h = s.traceMiddleware.Middleware(h)
	h = s.securityDetector.Middleware(s.logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return h
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests, try again in a minute").Write(w)
		return
	}
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// today is the current instant in the configured timezone.
func (s *Server) today() time.Time {
	return s.now().In(s.location)
}

// Shutdown stops background goroutines, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
