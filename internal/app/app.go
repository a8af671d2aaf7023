package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/config"
	"github.com/MrSnakeDoc/brightfeed/internal/events"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver"
	"github.com/MrSnakeDoc/brightfeed/internal/httpserver/deps"
	"github.com/MrSnakeDoc/brightfeed/internal/index"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/metrics"
	"github.com/MrSnakeDoc/brightfeed/internal/news"
	"github.com/MrSnakeDoc/brightfeed/internal/scheduler"
	"github.com/MrSnakeDoc/brightfeed/internal/sources/catalog"
	redisstore "github.com/MrSnakeDoc/brightfeed/internal/store/redis"
	"github.com/MrSnakeDoc/brightfeed/internal/version"
)

// profileCounter is implemented by backends that can count stored profiles.
type profileCounter interface {
	Profiles(ctx context.Context) (int, error)
}

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	storage  *Storage
	broker   *events.Broker
	relay    *events.RedisRelay
	newsIdx  *index.NewsIndex
	syncer   *scheduler.CacheSyncer
	reloader *scheduler.NewsReloader
	gc       *scheduler.GarbageCollector
	watcher  *scheduler.CatalogWatcher
}

func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	storage, err := OpenStorage(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	broker := events.NewBroker(loggerClient, events.WithMaxClients(cfg.MaxStreams))

	// With redis, toggles on any instance reach every instance's streams.
	var notifier bookmarks.Notifier = events.Local{Broker: broker}
	var relay *events.RedisRelay
	if storage.RedisClient != nil {
		relay = events.NewRedisRelay(storage.RedisClient, broker, loggerClient)
		notifier = relay
	} else {
		loggerClient.Info("redis not configured, bookmark events stay on this instance")
	}

	store := bookmarks.NewStore(storage.Backend, notifier, loggerClient)

	// Catalog: built-in unless a file is configured, then hot-reloaded
	holder := catalog.NewHolder(catalog.Default())
	var watcher *scheduler.CatalogWatcher
	if cfg.CatalogFile != "" {
		loader := catalog.NewLoader(cfg.CatalogFile)
		c, err := loader.Load()
		if err != nil {
			storage.Close(loggerClient)
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		holder.Set(c)
		watcher, err = scheduler.NewCatalogWatcher(loader, holder, loggerClient)
		if err != nil {
			loggerClient.Warn("catalog hot reload disabled", logger.Error(err))
			watcher = nil
		}
	}

	newsIdx := index.NewNewsIndex()
	client := news.NewClient(cfg.NewsAPIURL, cfg.NewsTimeout, loggerClient)

	// Listing cache only exists with redis. Keep the interfaces nil otherwise.
	var listingCache scheduler.ListingCache
	var syncer *scheduler.CacheSyncer
	if storage.RedisStore != nil {
		listingCache = storage.RedisStore
		syncer = scheduler.NewCacheSyncer(storage.RedisStore, newsIdx, loggerClient)
	}

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewNewsReloader(
		client,
		listingCache,
		redisstore.DefaultListingTTL,
		newsIdx,
		m,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	gc := scheduler.NewGarbageCollector(
		newsIdx,
		m,
		loggerClient,
		cfg.GCInterval,
		cfg.GCThreshold,
	)

	m.Gauge("news_articles", "Active articles in the news index.", func() float64 {
		return float64(newsIdx.Count())
	})
	m.Gauge("event_streams", "Open bookmark event streams on this instance.", func() float64 {
		return float64(broker.ClientCount())
	})
	if pc, ok := storage.Backend.(profileCounter); ok {
		m.Gauge("bookmark_profiles", "Profiles with a stored bookmark collection.", func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			n, err := pc.Profiles(ctx)
			if err != nil {
				return -1
			}
			return float64(n)
		})
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: cfg.RequestTimeout,
		RedisClient:    storage.RedisClient,
		Bookmarks:      store,
		Backend:        storage.Backend,
		Broker:         broker,
		ResyncInterval: cfg.ResyncInterval,
		ToggleBurst:    cfg.ToggleBurst,
		ToggleRefill:   cfg.ToggleRefill,
		NewsIndex:      newsIdx,
		Catalog:        holder,
		ReloadTrigger:  reloadTrigger,
		Metrics:        m,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		storage:  storage,
		broker:   broker,
		relay:    relay,
		newsIdx:  newsIdx,
		syncer:   syncer,
		reloader: reloader,
		gc:       gc,
		watcher:  watcher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Brightfeed v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.storage.Close(a.logger)

	stopComponents, err := startComponents(ctx, a.logger, a.components())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")
		return a.shutdown(stopComponents)
	})

	err = g.Wait()
	a.logger.Info("✅ Brightfeed stopped")
	return err
}

// shutdown stops producers before the server so open event streams end
// and Shutdown does not wait on them.
func (a *App) shutdown(stopComponents func()) error {
	stopComponents()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// component is a long-running part of the app started before the server.
type component struct {
	name  string
	start func(ctx context.Context) error
	stop  func() error
}

// components lists what Run starts, in order. The event side comes first so
// reloads and toggles always have a broker to publish to.
func (a *App) components() []component {
	comps := []component{{
		name:  "event broker",
		start: a.broker.Start,
		stop:  a.broker.Stop,
	}}
	if a.relay != nil {
		comps = append(comps, component{
			name:  "event relay",
			start: a.relay.Start,
			stop:  a.relay.Stop,
		})
	}
	comps = append(comps,
		component{
			name: "news reloader",
			start: func(ctx context.Context) error {
				// Serve the cached listing until upstream answers
				if a.syncer != nil {
					if err := a.syncer.Sync(ctx); err != nil {
						a.logger.Warn("failed to warm news index from redis, waiting for upstream",
							logger.Error(err))
					}
				}
				if err := a.reloader.Start(ctx); err != nil {
					return err
				}
				a.logger.Info("news reloader started",
					logger.Duration("interval", a.cfg.ReloadInterval))
				return nil
			},
			stop: func() error { a.reloader.Stop(); return nil },
		},
		component{
			name: "garbage collector",
			start: func(ctx context.Context) error {
				if err := a.gc.Start(ctx); err != nil {
					return err
				}
				a.logger.Info("garbage collector started",
					logger.Duration("interval", a.cfg.GCInterval))
				return nil
			},
			stop: func() error { a.gc.Stop(); return nil },
		},
	)
	if a.watcher != nil {
		comps = append(comps, component{
			name: "catalog watcher",
			start: func(ctx context.Context) error {
				a.watcher.Start(ctx)
				a.logger.Info("catalog watcher started", logger.String("file", a.cfg.CatalogFile))
				return nil
			},
			stop: a.watcher.Stop,
		})
	}
	return comps
}

// startComponents starts comps in order. When one fails, the ones already
// running are stopped in reverse order and the error is returned. On success
// the returned func stops everything in reverse order; it runs at most once.
func startComponents(ctx context.Context, log logger.Logger, comps []component) (func(), error) {
	started := make([]component, 0, len(comps))
	var once sync.Once
	stopAll := func() {
		once.Do(func() {
			for i := len(started) - 1; i >= 0; i-- {
				if err := started[i].stop(); err != nil {
					log.Warn("failed to stop component",
						logger.String("component", started[i].name),
						logger.Error(err))
				}
			}
		})
	}

	for _, c := range comps {
		if err := c.start(ctx); err != nil {
			stopAll()
			return nil, fmt.Errorf("failed to start %s: %w", c.name, err)
		}
		started = append(started, c)
	}
	return stopAll, nil
}
