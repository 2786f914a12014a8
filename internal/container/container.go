package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devfolio-api/config"
	"github.com/oksasatya/devfolio-api/internal/application"
	repo "github.com/oksasatya/devfolio-api/internal/domain/repository"
	"github.com/oksasatya/devfolio-api/internal/infrastructure/memory"
	"github.com/oksasatya/devfolio-api/internal/infrastructure/postgres"
	"github.com/oksasatya/devfolio-api/internal/infrastructure/search"
	"github.com/oksasatya/devfolio-api/pkg/events"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
)

// Container holds the components built once at startup and handed to the
// router and commands. Optional integrations are nil when disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool     *pgxpool.Pool // nil with the memory store
	Users    repo.UserRepository
	Projects repo.ProjectRepository

	JWT    *helpers.JWTManager
	Index  *search.ProjectIndex
	Rabbit *events.Rabbit

	Auth        *application.AuthService
	ProjectsSvc *application.ProjectService
}

// Stores are the repositories a container is wired around.
type Stores struct {
	Pool     *pgxpool.Pool
	Users    repo.UserRepository
	Projects repo.ProjectRepository
}

// OpenStores opens the backend selected by cfg.StoreDriver. Postgres is
// migrated before use.
func OpenStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Stores, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return Stores{Users: memory.NewUserRepository(), Projects: memory.NewProjectRepository()}, nil
	}

	dsn := cfg.PostgresDSN()
	if err := postgres.RunMigrations(dsn, cfg.MigrationsDir, logger); err != nil {
		return Stores{}, fmt.Errorf("migrate: %w", err)
	}
	pool, err := postgres.NewPool(ctx, dsn, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return Stores{}, fmt.Errorf("postgres: %w", err)
	}
	return Stores{
		Pool:     pool,
		Users:    postgres.NewUserRepository(pool),
		Projects: postgres.NewProjectRepository(pool),
	}, nil
}

// Build opens the stores and the optional integrations, then wires services.
// A failing optional integration is logged and left disabled.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var index *search.ProjectIndex
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogError(logger, "elasticsearch unavailable; search falls back to the store", err, nil)
		} else {
			index = search.NewProjectIndex(es, cfg.ESProjectsIndex)
			if err := index.EnsureIndex(ctx); err != nil {
				helpers.LogError(logger, "ensure projects index failed", err, logrus.Fields{"index": cfg.ESProjectsIndex})
			}
		}
	}

	var rabbit *events.Rabbit
	if cfg.EventsEnabled {
		rabbit, err = events.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable; account events disabled", err, nil)
			rabbit = nil
		}
	}

	return New(cfg, logger, stores, index, rabbit), nil
}

// New wires services around already opened components. index and rabbit may be nil.
func New(cfg *config.Config, logger *logrus.Logger, stores Stores, index *search.ProjectIndex, rabbit *events.Rabbit) *Container {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Pool:     stores.Pool,
		Users:    stores.Users,
		Projects: stores.Projects,
		JWT:      helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Index:    index,
		Rabbit:   rabbit,
	}

	// Typed nils must not leak into the interfaces the services nil-check.
	var pub application.EventPublisher
	if rabbit != nil {
		pub = rabbit
	}
	var idx application.ProjectIndex
	if index != nil {
		idx = index
	}

	c.Auth = application.NewAuthService(c.Users, c.JWT, pub, logger)
	c.ProjectsSvc = application.NewProjectService(c.Projects, idx, logger)
	return c
}

// Close releases pooled connections.
func (c *Container) Close() {
	c.Rabbit.Close()
	if c.Pool != nil {
		c.Pool.Close()
	}
}
