package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/portfolio/internal/api/http"
	"github.com/GriffinCanCode/portfolio/internal/api/middleware"
	"github.com/GriffinCanCode/portfolio/internal/domain/admin"
	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
	"github.com/GriffinCanCode/portfolio/internal/domain/profile"
	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/domain/terminal"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/config"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/logging"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/portfolio/internal/notify"
	"github.com/GriffinCanCode/portfolio/internal/storage/seed"
	"github.com/GriffinCanCode/portfolio/internal/storage/sqlite"
	"github.com/GriffinCanCode/portfolio/internal/storage/uploads"
	"github.com/GriffinCanCode/portfolio/internal/ws"
)

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	router     *gin.Engine
	http       *http.Server
	db         *sqlite.DB
	dispatcher *notify.Dispatcher
	tracer     *tracing.Tracer
	metrics    *monitoring.Metrics
	logger     *logging.Logger
	config     *config.Config

	closeOnce sync.Once
	closeErr  error
}

// New opens storage, seeds it when configured and builds the router.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	logger.Info("Initializing portfolio server",
		zap.String("addr", cfg.Server.Host+":"+cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
		zap.String("database", cfg.Database.Path),
	)

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Server{
		db:      db,
		metrics: monitoring.NewMetrics(),
		tracer:  tracing.New("portfolio", logger.Component("tracing")),
		logger:  logger,
		config:  cfg,
	}
	if err := s.build(context.Background()); err != nil {
		_ = s.Close(context.Background())
		return nil, err
	}
	logger.Info("Server initialized successfully")
	return s, nil
}

func (s *Server) build(ctx context.Context) error {
	cfg := s.config

	projects := project.NewService(s.db.Projects(), s.logger.Component("projects"))
	if cfg.Database.Seed {
		doc, err := seed.Load(cfg.Database.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed data: %w", err)
		}
		if _, err := seed.NewSeeder(projects, s.logger.Component("seed")).Seed(ctx, doc); err != nil {
			return fmt.Errorf("seed projects: %w", err)
		}
	}

	admins := admin.NewService(s.db.Admins(), admin.Config{
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.TokenTTL,
	}, s.logger.Component("admin"))
	if _, err := admins.EnsureAccount(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Email.AdminEmail); err != nil {
		return fmt.Errorf("ensure admin account: %w", err)
	}
	if cfg.IsProduction() && cfg.Auth.JWTSecret == config.Default().Auth.JWTSecret {
		s.logger.Warn("JWT secret is the development default")
	}

	s.dispatcher = notify.NewDispatcher(s.sender(), notify.DispatcherConfig{
		AdminEmail: cfg.Email.AdminEmail,
		Workers:    cfg.Email.Workers,
		QueueSize:  cfg.Email.QueueSize,
		OnOutcome:  s.metrics.RecordEmail,
	}, s.logger.Component("notify"))
	contacts := contact.NewService(s.db.Contacts(), s.dispatcher, s.logger.Component("contact"))

	store, err := uploads.NewStore(uploads.Config{
		Dir:       cfg.Upload.Dir,
		URLPrefix: cfg.Upload.URLPrefix,
		MaxSize:   cfg.Upload.MaxFileSize,
	}, s.logger.Component("uploads"))
	if err != nil {
		return err
	}

	prof := profile.Default()
	if cfg.Terminal.ProfileFile != "" {
		if prof, err = profile.Load(cfg.Terminal.ProfileFile); err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Projects:     projects,
		Contacts:     contacts,
		Admins:       admins,
		Uploads:      store,
		DB:           s.db,
		Metrics:      s.metrics,
		Logger:       s.logger.Component("http"),
		Version:      cfg.Server.Version,
		EmailEnabled: cfg.Email.Enabled,
	})
	wsHandler := ws.NewHandler(ws.Config{
		Profile:        prof,
		Projects:       terminal.ProjectSourceFunc(projects.Published),
		DefaultTheme:   terminal.Theme(cfg.Terminal.DefaultTheme),
		ExitDelay:      cfg.Terminal.ExitDelay,
		AllowedOrigins: cfg.Origins(),
		Metrics:        s.metrics,
		Logger:         s.logger.Component("ws"),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(s.logger.Component("recovery")))
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.RequestLogger(s.logger.Component("access"), "/api/health", "/metrics"))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Origins())))
	router.Use(middleware.Gzip(gzip.DefaultCompression, cfg.Upload.URLPrefix, "/api/terminal", "/metrics"))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(s.rateLimitConfig()))
	}

	router.GET("/", handlers.Root)
	handlers.Register(router.Group("/api"))
	router.GET("/api/terminal", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.Static(cfg.Upload.URLPrefix, store.Dir())
	router.NoRoute(handlers.NotFound)

	s.router = router
	s.http = &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
	return nil
}

func (s *Server) sender() notify.Sender {
	e := s.config.Email
	if !e.Enabled || e.Username == "" || e.Password == "" {
		s.logger.Info("SMTP disabled, notifications are logged only")
		return notify.LogSender{Logger: s.logger.Component("mail")}
	}
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     e.Host,
		Port:     e.Port,
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
	})
}

func (s *Server) rateLimitConfig() middleware.RateLimitConfig {
	rl := s.config.RateLimit
	out := middleware.DefaultRateLimitConfig()
	out.Global.Limit, out.Global.Window = rl.Requests, rl.Window
	for i := range out.Rules {
		r := &out.Rules[i]
		switch r.Name {
		case "contact":
			r.Limit, r.Window = rl.ContactRequests, rl.ContactWindow
		case "upload":
			r.Limit, r.Window = rl.UploadRequests, rl.UploadWindow
		case "login":
			r.Limit, r.Window = rl.LoginRequests, rl.LoginWindow
		}
	}
	out.Exempt = append(out.Exempt, s.config.Upload.URLPrefix)
	out.OnLimited = s.metrics.RecordRateLimited
	s.logger.Info("Rate limiting enabled",
		zap.Int("requests", rl.Requests),
		zap.Duration("window", rl.Window),
	)
	return out
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's metrics registry.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return multierr.Append(err, s.Close(context.Background()))
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	return multierr.Append(err, s.Close(shutdownCtx))
}

// Close drains queued notifications, flushes spans and closes the
// database. It is safe to call more than once.
func (s *Server) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		if s.dispatcher != nil {
			s.closeErr = multierr.Append(s.closeErr, s.dispatcher.Close(ctx))
		}
		s.tracer.Close()
		s.closeErr = multierr.Append(s.closeErr, s.db.Close())
		_ = s.logger.Sync()
	})
	return s.closeErr
}
