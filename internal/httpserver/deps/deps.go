package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/events"
	"github.com/MrSnakeDoc/brightfeed/internal/index"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/metrics"
	"github.com/MrSnakeDoc/brightfeed/internal/sources/catalog"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the server
	AllowedCIDRS   []string         // IPs allowed to access readyz/infra/reload
	AllowedOrigins []string         // CORS origins for /api/*
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration    // per-request timeout, streaming routes excluded

	RedisClient *redis.Client // nil when redis is not configured

	Bookmarks      *bookmarks.Store  // the only way handlers touch bookmark collections
	Backend        bookmarks.Backend // for health checks only
	Broker         *events.Broker    // local fan-out of bookmark signals
	ResyncInterval time.Duration     // resync hint interval on event streams
	ToggleBurst    int               // toggle rate limit burst per client IP
	ToggleRefill   int               // toggles refilled per minute per client IP

	NewsIndex     *index.NewsIndex // latest upstream listing
	Catalog       *catalog.Holder  // browsable categories
	ReloadTrigger chan struct{}    // Channel to trigger manual news reload

	Metrics *metrics.Metrics // nil disables /metrics
}

// Now returns TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
