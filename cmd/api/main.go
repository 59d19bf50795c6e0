package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/Raman247365/Note-app/internal/auth"
	"github.com/Raman247365/Note-app/internal/config"
	"github.com/Raman247365/Note-app/internal/database"
	"github.com/Raman247365/Note-app/internal/email"
	httpServer "github.com/Raman247365/Note-app/internal/http"
	"github.com/Raman247365/Note-app/internal/logging"
	"github.com/Raman247365/Note-app/internal/note"
	"github.com/Raman247365/Note-app/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration. A missing token secret aborts startup here.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Pending signups live in Redis when one is configured; otherwise they
	// stay in process memory and are lost on restart.
	var pendingStore auth.PendingSignupStore
	if cfg.Redis.Enabled() {
		redisClient, err := initRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		pendingStore = auth.NewRedisPendingSignupStore(redisClient)
		logger.Info("pending signups stored in redis", "addr", cfg.Redis.Address())
	} else {
		pendingStore = auth.NewMemoryPendingSignupStore()
		logger.Info("pending signups stored in memory, in-flight signups will not survive a restart")
	}

	// Initialize token service
	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize repositories
	userRepo := user.NewRepository(db)
	noteRepo := note.NewRepository(db)

	// Initialize email service
	mailer := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
	)
	if !mailer.IsConfigured() {
		logger.Warn("SMTP not configured, OTP codes will be logged in development mode")
	}

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		pendingStore,
		tokenService,
		mailer,
		auth.NewGoogleVerifier(),
		logger,
		cfg.Google.ClientID,
		cfg.Auth.TokenDuration,
		!cfg.Server.IsDevelopment(), // isProduction
	)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(authService, logger)
	authMiddleware := auth.NewMiddleware(tokenService)
	noteHandler := note.NewHandler(noteRepo, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, noteHandler, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// newTokenService builds the session token implementation selected by config.
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenScheme {
	case config.TokenSchemePaseto:
		return auth.NewPasetoService(cfg.TokenSecret)
	default:
		return auth.NewJWTService(cfg.TokenSecret)
	}
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
