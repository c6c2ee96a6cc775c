package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "counsel_locator/internal/adapters/http_server"
	"counsel_locator/internal/adapters/memory"
	"counsel_locator/internal/adapters/observability"
	"counsel_locator/internal/adapters/overpass"
	redisad "counsel_locator/internal/adapters/redis"
	"counsel_locator/internal/app"
	"counsel_locator/internal/domain"
	"counsel_locator/internal/shared"
	mysqlrepo "counsel_locator/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	cache, closeCache := buildCache(cfg)
	defer closeCache()

	opts := []app.Option{
		app.WithCache(cache),
		app.WithDeduplicator(app.NewDeduplicator(cfg.DedupThreshold)),
		app.WithRand(app.NewRand(cfg.RandomSeed)),
	}
	if db := openDirectory(cfg.MySQLDSN); db != nil {
		defer db.Close()
		opts = append(opts, app.WithDirectory(mysqlrepo.New(db)))
	}

	geo := overpass.New(cfg.OverpassURL,
		overpass.WithTimeout(cfg.OverpassTimeout),
		overpass.WithRate(cfg.OverpassRPS),
		overpass.WithUserAgent(cfg.OverpassUserAgent),
	)
	p := app.NewPipeline(geo, pipelineConfig(cfg), opts...)

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{P: p})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("cache", cfg.CacheBackend).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func pipelineConfig(cfg shared.Config) app.PipelineConfig {
	pc := app.DefaultPipelineConfig()
	pc.CacheEnabled = cfg.PipelineCache
	pc.EnrichEnabled = cfg.PipelineEnrich
	pc.FallbackToMock = cfg.PipelineFallback
	pc.CacheTTL = cfg.CacheTTL
	pc.MaxResults = cfg.MaxResults
	pc.KeyPrecision = cfg.CachePrecision
	return pc
}

func buildCache(cfg shared.Config) (domain.ResultCache, func()) {
	if cfg.CacheBackend == "redis" {
		c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL, cfg.CachePrecision)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; entries will miss until it recovers")
		}
		return c, func() { _ = c.Close() }
	}
	c := memory.New(memory.Options{
		TTL:           cfg.CacheTTL,
		MaxSize:       cfg.CacheMaxSize,
		SweepInterval: cfg.CacheSweep,
		Precision:     cfg.CachePrecision,
	})
	return c, c.Close
}

// openDirectory returns nil when the directory is disabled or unreachable.
func openDirectory(dsn string) *sql.DB {
	if dsn == "" {
		return nil
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Error().Err(err).Msg("sql.Open failed; attorney directory disabled")
		return nil
	}
	if err := db.Ping(); err != nil {
		log.Error().Err(err).Msg("db.Ping failed; attorney directory disabled")
		_ = db.Close()
		return nil
	}
	log.Info().Msg("database connection ok")
	return db
}
