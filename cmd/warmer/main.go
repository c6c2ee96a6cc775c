package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"counsel_locator/internal/adapters/observability"
	"counsel_locator/internal/adapters/overpass"
	redisad "counsel_locator/internal/adapters/redis"
	"counsel_locator/internal/app"
	"counsel_locator/internal/domain"
	"counsel_locator/internal/shared"
	mysqlrepo "counsel_locator/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("overpass", cfg.OverpassURL).
		Int("workers", cfg.WarmWorkers).
		Float64("radius_km", cfg.WarmRadiusKm).
		Int("locations", len(shared.WarmLocations)).
		Msg("warmer starting")

	// An in-process cache dies with this binary, so only redis is worth warming.
	var opts []app.Option
	var cache domain.ResultCache
	if cfg.CacheBackend == "redis" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL, cfg.CachePrecision)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		cache = rc
		opts = append(opts, app.WithCache(rc))
	} else {
		log.Warn().Msg("CACHE_BACKEND is not redis; warming the attorney directory only")
	}

	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		opts = append(opts, app.WithDirectory(mysqlrepo.New(db)))
	}
	if cache == nil && cfg.MySQLDSN == "" {
		log.Fatal().Msg("nothing to warm: set CACHE_BACKEND=redis or MYSQL_DSN")
	}

	pc := app.DefaultPipelineConfig()
	pc.CacheEnabled = cache != nil
	pc.EnrichEnabled = cfg.PipelineEnrich
	pc.FallbackToMock = cfg.PipelineFallback
	pc.CacheTTL = cfg.CacheTTL
	pc.MaxResults = cfg.MaxResults
	pc.KeyPrecision = cfg.CachePrecision
	opts = append(opts,
		app.WithDeduplicator(app.NewDeduplicator(cfg.DedupThreshold)),
		app.WithRand(app.NewRand(cfg.RandomSeed)),
	)

	geo := overpass.New(cfg.OverpassURL,
		overpass.WithTimeout(cfg.OverpassTimeout),
		overpass.WithRate(cfg.OverpassRPS),
		overpass.WithUserAgent(cfg.OverpassUserAgent),
	)
	svc := app.NewWarmService(app.NewPipeline(geo, pc, opts...), cache)

	workers := max(cfg.WarmWorkers, 1)
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, loc := range shared.WarmLocations {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(l shared.Location) {
			defer wg.Done()
			defer sem.Release(int64(1))

			res, err := svc.Warm(ctx, l.Lat, l.Lng, cfg.WarmRadiusKm)
			if err != nil {
				log.Warn().Str("location", l.Name).Err(err).Msg("warm failed")
				return
			}
			ev := log.Info()
			if !res.Live {
				ev = log.Warn()
			}
			ev.Str("location", l.Name).Int("count", res.Count).Bool("live", res.Live).Msg("warm done")
		}(loc)
	}

	wg.Wait()
	log.Info().Msg("warm-up completed")
}
