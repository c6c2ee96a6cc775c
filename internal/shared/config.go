package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	HTTPTimeout time.Duration
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	OverpassURL       string
	OverpassTimeout   time.Duration
	OverpassRPS       float64
	OverpassUserAgent string

	CacheBackend   string // memory|redis
	CacheTTL       time.Duration
	CacheMaxSize   int
	CacheSweep     time.Duration
	CachePrecision int

	PipelineCache    bool
	PipelineEnrich   bool
	PipelineFallback bool
	MaxResults       int
	DedupThreshold   float64
	RandomSeed       uint64

	WarmWorkers  int
	WarmRadiusKm float64
}

// Bounds for the per-request geodata timeout.
const (
	minOverpassTimeout = 8 * time.Second
	maxOverpassTimeout = 20 * time.Second
)

// Load reads .env files if present, then the environment.
func Load() Config {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 25)) * time.Second,
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		OverpassURL:       env("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout:   clampDur(time.Duration(atoi("OVERPASS_TIMEOUT_SECONDS", 15))*time.Second, minOverpassTimeout, maxOverpassTimeout),
		OverpassRPS:       floatEnv("OVERPASS_RPS", 2),
		OverpassUserAgent: env("OVERPASS_USER_AGENT", "counsel-locator/1.0"),

		CacheBackend:   strings.ToLower(env("CACHE_BACKEND", "memory")),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 86400)) * time.Second,
		CacheMaxSize:   atoi("CACHE_MAX_SIZE", 1000),
		CacheSweep:     time.Duration(atoi("CACHE_SWEEP_SECONDS", 3600)) * time.Second,
		CachePrecision: atoi("CACHE_KEY_PRECISION", 3),

		PipelineCache:    boolEnv("PIPELINE_CACHE", true),
		PipelineEnrich:   boolEnv("PIPELINE_ENRICH", true),
		PipelineFallback: boolEnv("PIPELINE_FALLBACK_MOCK", true),
		MaxResults:       atoi("PIPELINE_MAX_RESULTS", 50),
		DedupThreshold:   floatEnv("DEDUP_THRESHOLD", 0.8),
		RandomSeed:       uint64(atoi("RANDOM_SEED", 0)),

		WarmWorkers:  atoi("WARM_WORKERS", 4),
		WarmRadiusKm: floatEnv("WARM_RADIUS_KM", 50),
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		log.Warn().Str("backend", c.CacheBackend).Msg("unknown CACHE_BACKEND, using memory")
		c.CacheBackend = "memory"
	}
	if c.MySQLDSN == "" {
		log.Info().Msg("MYSQL_DSN is empty; attorney directory disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func floatEnv(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolEnv(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func clampDur(d, lo, hi time.Duration) time.Duration {
	return max(lo, min(d, hi))
}
