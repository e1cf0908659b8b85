package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/config"
	deliveryhttp "github.com/gdugdh24/partnerfinder/internal/delivery/http"
	"github.com/gdugdh24/partnerfinder/internal/delivery/http/handler"
	"github.com/gdugdh24/partnerfinder/internal/delivery/http/middleware"
	"github.com/gdugdh24/partnerfinder/internal/discovery"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/database"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/lock"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/notify"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/server"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/gdugdh24/partnerfinder/internal/repository/memory"
	"github.com/gdugdh24/partnerfinder/internal/repository/postgres"
	"github.com/gdugdh24/partnerfinder/internal/usecase/feed"
	"github.com/gdugdh24/partnerfinder/internal/usecase/profile"
	"github.com/gdugdh24/partnerfinder/internal/usecase/swipe"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type repositories struct {
	profiles      repository.ProfileRepository
	swipes        repository.SwipeRepository
	matches       repository.MatchRepository
	conversations repository.ConversationRepository
}

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	AMQP      *amqp.Connection
	Hub       *notify.Hub
	Auth      *middleware.AuthMiddleware
	Discovery *discovery.Manager
	Handler   http.Handler
	Server    *server.Server

	repos        repositories
	swipeUseCase *swipe.SwipeUseCase
	log          zerolog.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{Config: cfg, log: log}

	repos, err := c.initRepositories(ctx)
	if err != nil {
		return nil, err
	}
	c.repos = repos

	locker, err := c.initLocker(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	notifier, err := c.initNotifier()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	// Initialize use cases
	profileUseCase := profile.NewProfileUseCase(repos.profiles)
	feedUseCase := feed.NewFeedUseCase(repos.profiles, repos.swipes, repos.matches)
	c.swipeUseCase = swipe.NewSwipeUseCase(
		repos.swipes,
		repos.matches,
		repos.conversations,
		repos.profiles,
		locker,
		notifier,
		cfg.Matching.LockTTL,
		log,
	)

	c.Discovery = discovery.NewManager(
		feedUseCase,
		c.swipeUseCase,
		discoveryConfig(&cfg.Discovery),
		cfg.Discovery.SessionIdleTimeout,
		log,
	)

	// Initialize handlers
	c.Auth = middleware.NewAuthMiddleware(cfg.JWT.AccessSecret)
	router := deliveryhttp.NewRouter(
		handler.NewProfileHandler(profileUseCase),
		handler.NewFeedHandler(feedUseCase),
		handler.NewSwipeHandler(c.swipeUseCase),
		handler.NewMatchHandler(c.swipeUseCase),
		handler.NewDiscoveryHandler(c.Discovery),
		handler.NewWebSocketHandler(c.Hub, log),
		c.Auth,
		log,
	)
	c.Handler = router.Setup()
	c.Server = server.NewServer(&cfg.Server, c.Handler, log)

	return c, nil
}

func (c *Container) initRepositories(ctx context.Context) (repositories, error) {
	switch c.Config.Storage.Type {
	case config.StorageMemory:
		store := memory.NewStore()
		c.log.Warn().Msg("using in-memory storage; data is lost on restart")
		return repositories{
			profiles:      store.Profiles(),
			swipes:        store.Swipes(),
			matches:       store.Matches(),
			conversations: store.Conversations(),
		}, nil
	default:
		db, err := database.NewPostgresDB(ctx, &c.Config.Database, c.log)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return repositories{
			profiles:      postgres.NewProfileRepository(db),
			swipes:        postgres.NewSwipeRepository(db),
			matches:       postgres.NewMatchRepository(db),
			conversations: postgres.NewConversationRepository(db),
		}, nil
	}
}

func (c *Container) initLocker(ctx context.Context) (lock.Locker, error) {
	if c.Config.Matching.LockBackend == config.LockMemory {
		return lock.NewMemoryLocker(), nil
	}

	redisClient, err := database.NewRedisClient(ctx, &c.Config.Redis, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	c.Redis = redisClient
	return lock.NewRedisLocker(redisClient, c.Config.Matching.LockPrefix), nil
}

// initNotifier always pushes to connected websocket clients and additionally
// publishes to the broker when one is configured.
func (c *Container) initNotifier() (notify.Notifier, error) {
	c.Hub = notify.NewHub(c.log)
	notifiers := notify.Multi{c.Hub}

	if c.Config.Broker.AMQPURL == "" {
		return append(notifiers, notify.NewLogNotifier(c.log)), nil
	}

	conn, err := amqp.Dial(c.Config.Broker.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	c.AMQP = conn

	publisher, err := notify.NewAMQPNotifier(conn, c.Config.Broker.Exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize broker notifier: %w", err)
	}
	c.log.Info().Str("exchange", c.Config.Broker.Exchange).Msg("publishing match events")
	return append(notifiers, publisher), nil
}

func discoveryConfig(cfg *config.DiscoveryConfig) discovery.Config {
	gesture := discovery.DefaultGestureConfig()
	gesture.ScreenWidth = cfg.ScreenWidth
	gesture.CommitFraction = cfg.CommitFraction

	return discovery.Config{
		WindowSize:        cfg.WindowSize,
		PendingEmptyDelay: cfg.PendingEmptyDelay,
		MatchEmptyDelay:   cfg.MatchEmptyDelay,
		Gesture:           gesture,
	}
}

// Close stops the discovery sessions, waits for pending notifications and
// closes all connections.
func (c *Container) Close() error {
	if c.Discovery != nil {
		c.Discovery.Close()
	}
	if c.swipeUseCase != nil {
		c.swipeUseCase.WaitNotifications()
	}

	var errs []error
	if c.AMQP != nil {
		if err := c.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close broker connection: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
