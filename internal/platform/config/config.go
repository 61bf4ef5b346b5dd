package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names an optional YAML file. Environment variables override it.
const PathEnv = "PAWHUB_CONFIG_PATH"

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendSQLite = "sqlite"
)

// Config is the web front end configuration.
type Config struct {
	Env     string      `yaml:"env" env:"PAWHUB_ENV" env-default:"development"`
	Server  Server      `yaml:"server"`
	API     API         `yaml:"api"`
	Images  Images      `yaml:"images"`
	Session Session     `yaml:"session"`
	Redis   RedisConfig `yaml:"redis"`
	SQLite  SQLite      `yaml:"sqlite"`
	Listing Listing     `yaml:"listing"`
	Log     Log         `yaml:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr" env:"PAWHUB_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"PAWHUB_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"PAWHUB_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"PAWHUB_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"PAWHUB_REQUEST_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PAWHUB_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"PAWHUB_MAX_BODY_BYTES" env-default:"1048576"`
	TrustedProxies  []string      `yaml:"trusted_proxies" env:"PAWHUB_TRUSTED_PROXIES" env-separator:","`
	SecureCookies   bool          `yaml:"secure_cookies" env:"PAWHUB_SECURE_COOKIES" env-default:"false"`
}

// API locates the remote REST API.
type API struct {
	BaseURL string        `yaml:"base_url" env:"PAWHUB_API_URL" env-default:"http://localhost:8081"`
	Timeout time.Duration `yaml:"timeout" env:"PAWHUB_API_TIMEOUT" env-default:"10s"`
}

// Images controls which remote image hosts may be rendered.
type Images struct {
	AllowedHosts []string `yaml:"allowed_hosts" env:"PAWHUB_IMAGE_HOSTS" env-separator:"," env-default:"images.unsplash.com"`
	Placeholder  string   `yaml:"placeholder" env:"PAWHUB_IMAGE_PLACEHOLDER" env-default:"/static/images/placeholder.svg"`
}

// Session selects where login sessions are persisted.
type Session struct {
	Backend          string        `yaml:"backend" env:"PAWHUB_SESSION_BACKEND" env-default:"memory"`
	KeyPrefix        string        `yaml:"key_prefix" env:"PAWHUB_SESSION_PREFIX" env-default:"pawhub"`
	IdleTTL          time.Duration `yaml:"idle_ttl" env:"PAWHUB_SESSION_IDLE_TTL" env-default:"30m"`
	RehydrateTimeout time.Duration `yaml:"rehydrate_timeout" env:"PAWHUB_SESSION_REHYDRATE_TIMEOUT" env-default:"3s"`
	VisitorCookie    string        `yaml:"visitor_cookie" env:"PAWHUB_VISITOR_COOKIE" env-default:"pawhub_vid"`
	VisitorMaxAge    time.Duration `yaml:"visitor_max_age" env:"PAWHUB_VISITOR_MAX_AGE" env-default:"8760h"`
}

// RedisConfig configures the Redis session backend.
type RedisConfig struct {
	URL          string        `yaml:"url" env:"REDIS_URL"`
	PoolSize     int           `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"10"`
	MinIdleConns int           `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS" env-default:"2"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

// SQLite configures the SQLite session backend.
type SQLite struct {
	Path string `yaml:"path" env:"PAWHUB_SQLITE_PATH" env-default:"pawhub-sessions.db"`
}

// Listing tunes list pages.
type Listing struct {
	PageSize        int           `yaml:"page_size" env:"PAWHUB_PAGE_SIZE" env-default:"6"`
	IdleTTL         time.Duration `yaml:"idle_ttl" env:"PAWHUB_LISTING_IDLE_TTL" env-default:"15m"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"PAWHUB_CLEANUP_INTERVAL" env-default:"1m"`
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level" env:"PAWHUB_LOG_LEVEL" env-default:"info"`
}

// Load reads the YAML file named by PAWHUB_CONFIG_PATH, if any, then the
// environment, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if path := os.Getenv(PathEnv); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be absolute", c.API.BaseURL)
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendSQLite:
	case SessionBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("session backend redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Listing.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MockAPI configures the in-memory stand-in for the remote REST API.
type MockAPI struct {
	Addr          string        `yaml:"addr" env:"MOCKAPI_ADDR" env-default:":8081"`
	JWTSigningKey string        `yaml:"jwt_signing_key" env:"MOCKAPI_JWT_SIGNING_KEY" env-default:"dev-secret-key-change-in-production"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"MOCKAPI_TOKEN_TTL" env-default:"1h"`
	Latency       time.Duration `yaml:"latency" env:"MOCKAPI_LATENCY" env-default:"0s"`
	LogLevel      string        `yaml:"log_level" env:"MOCKAPI_LOG_LEVEL" env-default:"info"`
}

// LoadMockAPI reads the mock API configuration from the environment.
func LoadMockAPI() (*MockAPI, error) {
	var cfg MockAPI
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read mock api config: %w", err)
	}
	return &cfg, nil
}
