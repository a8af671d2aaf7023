package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Bookmark backends selectable through BRIGHTFEED_STORE.
const (
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, event streams excluded

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Bookmarks
	Store          string        // "redis" | "sqlite" | "memory"
	SQLitePath     string        // path to the sqlite database (store=sqlite)
	ResyncInterval time.Duration // interval between resync heartbeats on event streams
	MaxStreams     int           // concurrent event streams per instance (0 = unlimited)
	ToggleBurst    int           // rate limit burst for toggles per client IP
	ToggleRefill   int           // toggles refilled per minute per client IP
	AllowedOrigins []string      // CORS origins for /api/*

	// News
	NewsAPIURL     string        // upstream listing base URL (ex: http://localhost:5001)
	NewsTimeout    time.Duration // timeout for one upstream fetch
	CatalogFile    string        // path to categories.yaml (empty = built-in catalog)
	ReloadInterval time.Duration // interval to refetch upstream news (default: 15m)
	GCInterval     time.Duration // interval to run garbage collection (default: 24h)
	GCThreshold    time.Duration // how long a disabled article survives (default: 7d)

	// Redis
	RedisEnabled          bool          // false when store != redis and no address is set
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the full server configuration from the environment.
func Load() *Config {
	cfg := LoadStorage()

	// Server settings
	cfg.ListenPort = getenv("BRIGHTFEED_LISTEN_PORT", ":8080")
	cfg.ShutdownTimeout = mustDuration("BRIGHTFEED_SHUTDOWN_TIMEOUT", 5*time.Second)
	cfg.RequestTimeout = mustDuration("BRIGHTFEED_REQUEST_TIMEOUT", 10*time.Second)

	// Bookmarks
	cfg.ResyncInterval = mustDuration("BRIGHTFEED_RESYNC_INTERVAL", 30*time.Second)
	cfg.MaxStreams = getenvInt("BRIGHTFEED_MAX_STREAMS", 1000)
	cfg.ToggleBurst = getenvInt("BRIGHTFEED_TOGGLE_BURST", 20)
	cfg.ToggleRefill = getenvInt("BRIGHTFEED_TOGGLE_REFILL_PER_MIN", 60)
	cfg.AllowedOrigins = splitAndTrim(getenv("BRIGHTFEED_ALLOWED_ORIGINS", "http://localhost:3000"))

	// News
	cfg.NewsAPIURL = strings.TrimRight(requireEnv("BRIGHTFEED_NEWS_API_URL"), "/")
	cfg.NewsTimeout = mustDuration("BRIGHTFEED_NEWS_TIMEOUT", 10*time.Second)
	cfg.CatalogFile = getenv("BRIGHTFEED_CATALOG_FILE", "")
	cfg.ReloadInterval = mustDuration("BRIGHTFEED_RELOAD_INTERVAL", 15*time.Minute)
	cfg.GCInterval = mustDuration("BRIGHTFEED_GC_INTERVAL", 24*time.Hour)
	cfg.GCThreshold = mustDuration("BRIGHTFEED_GC_THRESHOLD", 7*24*time.Hour)

	// Access restrictions
	cfg.AllowedHosts = splitAndTrim(getenv("BRIGHTFEED_ALLOWED_HOSTS", ""))
	cfg.AllowedCIDRS = parseAllowedIPs(getenv("BRIGHTFEED_ALLOWED_CIDRS", ""))
	cfg.TrustProxy = mustBool("BRIGHTFEED_TRUST_PROXY", true)

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// LoadStorage reads only logging, bookmark storage and Redis settings.
// Offline commands use it and need no upstream news URL.
func LoadStorage() *Config {
	cfg := &Config{
		// Logging
		LogLevel:  getenv("BRIGHTFEED_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BRIGHTFEED_PRETTY_LOG", true),

		// Bookmarks
		Store:      parseStoreKind(getenv("BRIGHTFEED_STORE", StoreRedis)),
		SQLitePath: getenv("BRIGHTFEED_SQLITE_PATH", "/data/brightfeed.db"),

		// Redis settings
		RedisAddr:             getenv("BRIGHTFEED_REDIS_ADDR", ""),
		RedisUser:             getenv("BRIGHTFEED_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("BRIGHTFEED_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("BRIGHTFEED_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("BRIGHTFEED_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	// Redis backs the redis store; with any other store it is optional and only
	// feeds the cross-instance relay and the listing cache.
	if cfg.Store == StoreRedis {
		cfg.RedisAddr = requireEnv("BRIGHTFEED_REDIS_ADDR")
	}
	cfg.RedisEnabled = cfg.RedisAddr != ""

	if cfg.RedisEnabled && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: BRIGHTFEED_REDIS_PASSWORD is required when BRIGHTFEED_REDIS_PASSWORD_REQUIRED=true")
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// parseStoreKind normalizes the store name and panics on anything unknown.
func parseStoreKind(v string) string {
	kind := strings.ToLower(strings.TrimSpace(v))
	switch kind {
	case StoreRedis, StoreSQLite, StoreMemory:
		return kind
	default:
		panic(fmt.Sprintf("❌ FATAL: BRIGHTFEED_STORE must be one of redis|sqlite|memory, got %q", v))
	}
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
