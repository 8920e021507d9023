package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"mxaddress/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Catalog  Catalog
	Geo      Geo
	Redis    RedisConfig
	Resolver Resolver
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string
}

// Catalog locates the postal reference dataset.
type Catalog struct {
	Path     string
	Encoding string
}

// Geo configures the Nominatim and Overpass clients. An empty
// OverpassEndpoints selects the public mirrors.
type Geo struct {
	NominatimURL      string
	OverpassEndpoints []string
	UserAgent         string
	Timeout           time.Duration
	Retries           int
	MaxCandidates     int
	NominatimRate     float64
}

// RedisConfig enables the shared street cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StreetTTL    time.Duration
}

// Resolver tunes address resolution.
type Resolver struct {
	Seed    int64
	Timeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// Unset variables take their defaults; malformed values are reported together.
func FromEnv() (Config, error) {
	p := &envParser{}

	cfg := Config{
		Server: Server{
			Addr:      p.getString("ADDRESS_ADDR", ":8080"),
			LogLevel:  p.getString("LOG_LEVEL", "info"),
			LogFormat: p.getString("LOG_FORMAT", "json"),
		},
		Catalog: Catalog{
			Path:     p.getString("CATALOG_PATH", "sepomex.txt"),
			Encoding: p.getString("CATALOG_ENCODING", "latin1"),
		},
		Geo: Geo{
			NominatimURL:      p.getString("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			OverpassEndpoints: strings.SplitAndTrim(os.Getenv("OVERPASS_ENDPOINTS"), ","),
			UserAgent:         p.getString("GEO_USER_AGENT", "mxaddress/1.0"),
			Timeout:           p.getDuration("GEO_TIMEOUT", 180*time.Second),
			Retries:           p.getInt("GEO_RETRIES", 2),
			MaxCandidates:     p.getInt("GEO_MAX_CANDIDATES", 3000),
			NominatimRate:     p.getFloat("NOMINATIM_RATE", 1),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			StreetTTL:    p.getDuration("STREET_CACHE_TTL", 24*time.Hour),
		},
		Resolver: Resolver{
			Seed:    p.getInt64("RANDOM_SEED", 0),
			Timeout: p.getDuration("RESOLVE_TIMEOUT", 60*time.Second),
		},
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that parse but cannot work together.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("ADDRESS_ADDR must not be empty"))
	}
	switch c.Server.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Server.LogFormat))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("CATALOG_PATH must not be empty"))
	}
	if c.Geo.NominatimURL == "" {
		errs = append(errs, errors.New("NOMINATIM_URL must not be empty"))
	}
	if c.Geo.Timeout <= 0 {
		errs = append(errs, errors.New("GEO_TIMEOUT must be positive"))
	}
	if c.Geo.Retries < 1 {
		errs = append(errs, errors.New("GEO_RETRIES must be at least 1"))
	}
	if c.Geo.MaxCandidates < 1 {
		errs = append(errs, errors.New("GEO_MAX_CANDIDATES must be at least 1"))
	}
	if c.Redis.URL != "" && c.Redis.StreetTTL <= 0 {
		errs = append(errs, errors.New("STREET_CACHE_TTL must be positive when REDIS_URL is set"))
	}
	if c.Resolver.Timeout < 0 {
		errs = append(errs, errors.New("RESOLVE_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

type envParser struct {
	errs []error
}

func (p *envParser) getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (p *envParser) getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *envParser) getInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *envParser) getFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (p *envParser) getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
