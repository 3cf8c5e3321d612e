// Package app wires configuration, stores, services and HTTP routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stylesync/internal/config"
	"stylesync/internal/database"
	"stylesync/internal/handlers"
	"stylesync/internal/middleware"
	"stylesync/internal/repositories"
	"stylesync/internal/services"
	"stylesync/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App is a ready-to-listen server and the resources it owns.
type App struct {
	Fiber       *fiber.App
	AuthService *services.AuthService

	closers []func(context.Context) error
}

// New opens the configured store and message broker and builds the app.
// Any connection failure is returned; callers treat it as fatal.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	repos, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return mqClient.Close() })
		publisher = mqClient

		if cfg.RabbitMQConsume {
			if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
				a.Close(ctx)
				return nil, fmt.Errorf("failed to start order event consumer: %w", err)
			}
		}
	} else {
		slog.Info("RABBITMQ_URL not set, order events disabled")
	}

	a.Fiber, a.AuthService = NewFiberApp(cfg, repos, publisher)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (repositories.Set, error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		return repositories.NewMemorySet(), nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := database.OpenGORM(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return repositories.Set{}, err
		}
		a.closers = append(a.closers, func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		return repositories.NewGORMSet(db), nil

	default:
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return repositories.Set{}, err
		}
		a.closers = append(a.closers, client.Disconnect)

		db := client.Database(cfg.MongoDatabase)
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return repositories.Set{}, err
		}
		slog.Info("connected to mongo", "database", cfg.MongoDatabase)
		return repositories.NewMongoSet(db), nil
	}
}

// NewFiberApp builds the HTTP app over the given repositories. publisher
// may be nil.
func NewFiberApp(cfg *config.Config, repos repositories.Set, publisher services.EventPublisher) (*fiber.App, *services.AuthService) {
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	productService := services.NewProductService(repos.Products)
	reviewService := services.NewReviewService(repos.Reviews)
	orderService := services.NewOrderService(repos.Orders, publisher)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New(fiber.Config{
		AppName:      "stylesync",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(middleware.Metrics())

	authRequired := middleware.AuthRequired(authService)
	var guard fiber.Handler
	if cfg.AuthRequired {
		guard = authRequired
	}

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	apiV1.Get("/me", authRequired, authHandler.HandleMe)
	productHandler.RegisterRoutes(apiV1, guard)
	reviewHandler.RegisterRoutes(apiV1, guard)
	orderHandler.RegisterRoutes(apiV1, guard)

	app.Get("/", handlers.HandleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app, authService
}

// Close releases the store and broker connections in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
