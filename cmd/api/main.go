package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"honeypot-lab/internal/api"
	"honeypot-lab/internal/api/handlers"
	"honeypot-lab/internal/config"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/domain/services/detection"
	"honeypot-lab/internal/domain/services/ledger"
	grpcserver "honeypot-lab/internal/grpc/honeypot"
	"honeypot-lab/internal/infrastructure/cache"
	"honeypot-lab/internal/infrastructure/database"
	"honeypot-lab/internal/infrastructure/database/repository"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: search ., ./config, /etc/honeypot-lab)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := newLogger(cfg)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting honeypot")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := make(map[string]func(context.Context) error)

	// Event journal
	journal, db, err := initJournal(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize event journal")
	}
	defer func() {
		if err := journal.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event journal")
		}
		if db != nil {
			db.Close()
		}
	}()
	if db != nil {
		checks["postgres"] = db.Ping
	}

	// Optional Redis
	var redisCache *cache.RedisCache
	var intelStore services.IntelStore
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without intel index and rate limiting")
		} else {
			defer redisCache.Close()
			intelStore = services.NewIntelIndex(redisCache, services.DefaultIntelTTL)
			checks["redis"] = redisCache.Ping
		}
	}

	// Optional verdict stream
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing with local verdict feed only")
			natsPublisher = nil
		} else {
			defer natsPublisher.Close()
			checks["nats"] = func(context.Context) error {
				if !natsPublisher.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			}
		}
	}

	// Verdicts fan out to NATS and to websocket operators
	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()
	wsHub := streaming.NewWebSocketHub(eventBus, log)
	go wsHub.Run(ctx)

	// Detection pipeline
	statistical := detection.LoadStatisticalScorer(cfg.Detection.ModelPath, log)
	engine := detection.NewEngine(detection.NewRuleScorer(), statistical, log)

	service := services.NewHoneypotService(services.HoneypotDeps{
		Engine:     engine,
		Extractor:  detection.NewExtractor(),
		Replies:    detection.NewReplyPolicy(),
		Ledger:     ledger.New(journal, cfg.Persona, log),
		IntelStore: intelStore,
		Publisher:  eventBus,
		Logger:     log,
	})
	log.Info().
		Bool("classifier", statistical.Available()).
		Bool("intel_index", intelStore != nil).
		Bool("nats", natsPublisher != nil).
		Str("persona", cfg.Persona.Name).
		Msg("honeypot service initialized")

	// Initialize handlers
	httpChecks := make(map[string]handlers.HealthCheck, len(checks))
	grpcChecks := make(map[string]grpcserver.Check, len(checks))
	for name, check := range checks {
		httpChecks[name] = check
		grpcChecks[name] = check
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Service: service,
		Hub:     wsHub,
		Checks:  httpChecks,
		Version: cfg.App.Version,
		Logger:  log,
	})

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC health server
	grpcListener, err := net.Listen("tcp", cfg.Server.GRPCAddr())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthServer := grpcserver.NewHealthServer(grpcChecks, grpcserver.DefaultCheckInterval, log)
	healthServer.Register(grpcServer)
	go healthServer.Run(ctx)

	go func() {
		log.Info().Str("addr", grpcListener.Addr().String()).Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Int("sessions", service.SessionCount()).Msg("shutdown complete")
}

// newLogger builds the logger from config; production always logs JSON
func newLogger(cfg *config.Config) *logger.Logger {
	lc := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	if cfg.App.Environment == "production" {
		lc.Format = "json"
	}
	return logger.New(lc)
}

// initJournal opens the configured event journal. The returned pool is non-nil only for the postgres driver.
func initJournal(ctx context.Context, cfg *config.Config, log *logger.Logger) (ledger.Journal, *database.PostgresDB, error) {
	switch cfg.Journal.Driver {
	case config.JournalDriverFile:
		j, err := ledger.OpenFileJournal(cfg.Journal.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", j.Path()).Msg("journaling events to file")
		return j, nil, nil

	case config.JournalDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewEventRepository(db.Pool())
		log.Info().Str("dbname", cfg.Database.DBName).Msg("journaling events to PostgreSQL")
		return repo, db, nil

	default:
		log.Warn().Msg("event journal disabled, conversations are kept in memory only")
		return ledger.NopJournal{}, nil, nil
	}
}
