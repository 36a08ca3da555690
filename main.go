// Package main provides the main entry point for the Applaud demo application
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/applaud-app/applaud/app/handlers"
	"github.com/applaud-app/applaud/app/router"
	"github.com/applaud-app/applaud/app/services"
	"github.com/applaud-app/applaud/app/worker"
	businessflow "github.com/applaud-app/applaud/business_flow"
	"github.com/applaud-app/applaud/config"
	"github.com/applaud-app/applaud/models"
	"github.com/applaud-app/applaud/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Applaud application...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers before closing the server so in-flight
	// increments finish and ack
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// TranslateError turns driver unique-violation errors into
		// gorm.ErrDuplicatedKey, which the counter store's creation race depends on
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.Counter{}, &models.Testimonial{}, &models.Comment{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeQueueBackend initializes the Redis client backing the job queue
func initializeQueueBackend(cfg config.QueueConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeQueueBackend(cfg.Queue)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	counterRepo := repository.NewCounterRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Initialize services
	jobQueue := services.NewRedisJobQueue(rc, cfg.Queue)
	broadcastHub := services.NewBroadcastHub(16)

	stopReclaimer := jobQueue.StartReclaimer(context.Background())
	stopFuncs = append(stopFuncs, stopReclaimer)

	// Initialize flows
	counterFlow := businessflow.NewCounterFlow(counterRepo, jobQueue, int(cfg.Worker.Delay.Seconds()))
	testimonialFlow := businessflow.NewTestimonialFlow(testimonialRepo, commentRepo, db)

	// Initialize handlers
	counterHandler := handlers.NewCounterHandler(counterFlow, broadcastHub)
	testimonialHandler := handlers.NewTestimonialHandler(testimonialFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(cfg, counterHandler, testimonialHandler)

	if cfg.Worker.Enabled {
		incrementWorker := worker.NewIncrementWorker(
			jobQueue,
			counterRepo,
			broadcastHub,
			cfg.Worker.Delay,
			cfg.Worker.Concurrency,
			cfg.Logging.Dir,
		)
		stopWorker := incrementWorker.Start(context.Background())
		stopFuncs = append(stopFuncs, stopWorker)
		log.Printf("Increment worker started with concurrency %d, delay %s", cfg.Worker.Concurrency, cfg.Worker.Delay)
	}

	application := &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
