// Command server runs the news API.
//
// Configuration comes from the environment (optionally a .env file). The
// -seed flag, or SEED_PATH, drops and reloads the database from a JSON
// dataset before serving.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-backend/internal/config"
	httpapi "github.com/tbourn/go-news-backend/internal/http"
	"github.com/tbourn/go-news-backend/internal/observability"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = 10 * time.Minute
)

func main() {
	seedFlag := flag.String("seed", "", "reseed the database from this JSON dataset before serving")
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
	}

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, sysutil.FirstNonEmpty(*seedFlag, cfg.SeedPath)); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config, seedPath string) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDatabase(ctx, cfg, seedPath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	go purgeLoop(ctx, db, purgeInterval)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, cfg, version)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("api", cfg.APIBasePath).Str("version", version).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openDatabase connects, migrates and optionally reseeds.
func openDatabase(ctx context.Context, cfg config.Config, seedPath string) (*gorm.DB, error) {
	db, err := repo.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if seedPath == "" {
		return db, nil
	}
	ds, err := repo.LoadDataset(seedPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	if err := repo.Seed(ctx, db, ds); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	log.Info().
		Str("path", seedPath).
		Int("topics", len(ds.Topics)).
		Int("users", len(ds.Users)).
		Int("articles", len(ds.Articles)).
		Int("comments", len(ds.Comments)).
		Msg("database seeded")
	return db, nil
}

// purgeLoop deletes expired idempotency records every interval until ctx ends.
func purgeLoop(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency records")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("idempotency records expired")
			}
		}
	}
}
