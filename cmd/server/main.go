package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/analysis"
	"github.com/stemsi/boletim/internal/charts"
	"github.com/stemsi/boletim/internal/config"
	"github.com/stemsi/boletim/internal/database"
	"github.com/stemsi/boletim/internal/errlog"
	"github.com/stemsi/boletim/internal/handler"
	"github.com/stemsi/boletim/internal/logger"
	"github.com/stemsi/boletim/internal/report"
	"github.com/stemsi/boletim/internal/router"
	"github.com/stemsi/boletim/internal/service"
	"github.com/stemsi/boletim/internal/storage"
	"github.com/stemsi/boletim/internal/validator"
	"github.com/stemsi/boletim/internal/web"
	"github.com/stemsi/boletim/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageDriver).
		Msg("Starting Boletim")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Error Log ────────────────────────────────────────────────
	errLog, err := errlog.Open(cfg.LogDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open error log")
	}
	defer errLog.Close()
	log.Info().Str("path", errLog.Path()).Msg("Error log ready")

	// ─── Artifact Storage ──────────────────────────────────────────────
	var store storage.Store
	switch cfg.StorageDriver {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		store = storage.NewRedisStore(rdb, cfg.ArtifactTTL)
	case config.StorageMemory:
		mem := storage.NewMemoryStore(cfg.ArtifactTTL)
		go worker.NewSweepWorker(mem, worker.DefaultSweepInterval, log).Start(ctx)
		store = mem
	default:
		log.Fatal().Str("driver", cfg.StorageDriver).Msg("Unknown STORAGE_DRIVER")
	}

	// ─── Initialize Pipeline & Services ───────────────────────────────
	pipeline := analysis.NewPipeline(
		charts.NewRenderer(),
		report.NewComposer(report.WithRepeatedTableHeader(cfg.RepeatTableHeader)),
		errLog,
		log,
		analysis.WithObserver(func(from, to analysis.Stage) {
			log.Trace().Str("from", string(from)).Str("to", string(to)).Msg("Stage")
		}),
	)
	analysisService := service.NewAnalysisService(pipeline, store, errLog, cfg, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Analysis: handler.NewAnalysisHandler(analysisService, log),
		Download: handler.NewDownloadHandler(analysisService, log),
		System:   handler.NewSystemHandler(store, cfg.StorageDriver, log),
	}

	templates, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, templates, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
