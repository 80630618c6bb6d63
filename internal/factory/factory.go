package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/munidon/bw-genius/internal/api"
	"github.com/munidon/bw-genius/internal/auth"
	"github.com/munidon/bw-genius/internal/dependencies/random"
	"github.com/munidon/bw-genius/internal/realtime"
	"github.com/munidon/bw-genius/internal/roomsync"
	"github.com/munidon/bw-genius/internal/signal"
	"github.com/munidon/bw-genius/internal/store"
	"github.com/munidon/bw-genius/internal/store/memory"
	redisstore "github.com/munidon/bw-genius/internal/store/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired client components
type App struct {
	Client    *api.Client
	Authority api.Authority
	Provider  auth.Provider
	Store     store.Store

	Clock  clockwork.Clock
	Random random.Random

	Tracker    *roomsync.Tracker
	Engine     *roomsync.Engine
	Poller     *roomsync.Poller
	Subscriber *realtime.Subscriber
	Dispatcher *signal.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// ServerURL is the authority's base URL (required)
	ServerURL string
	// Token is the access token to authenticate with (optional)
	Token string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Clock is the time source (optional)
	// If nil, the real clock is used
	Clock clockwork.Clock
	// StorageType selects the artifact store backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstore.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	var artifacts store.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		artifacts = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstore.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		artifacts = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	client := api.NewClient(cfg.ServerURL, cfg.Token)
	authority := api.NewHTTPAuthority(client)
	provider := auth.NewHTTPProvider(client)
	rnd := random.New()

	dispatcher := signal.New(logger)
	tracker := roomsync.NewTracker(provider, artifacts, authority, logger)
	engine := roomsync.NewEngine(authority, tracker, dispatcher, rnd, logger)
	poller := roomsync.NewPoller(engine, tracker, clk)
	subscriber := realtime.NewSubscriber(feedURL(cfg.ServerURL), client.Token, engine, logger)

	return &App{
		Client:     client,
		Authority:  authority,
		Provider:   provider,
		Store:      artifacts,
		Clock:      clk,
		Random:     rnd,
		Tracker:    tracker,
		Engine:     engine,
		Poller:     poller,
		Subscriber: subscriber,
		Dispatcher: dispatcher,
	}, nil
}

// feedURL derives the websocket change feed endpoint from the base URL
func feedURL(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil {
		return serverURL
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/feed"
	return u.String()
}
