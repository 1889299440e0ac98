package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"tasklist/backend/config"
	"tasklist/backend/database"
	"tasklist/backend/logger"
	"tasklist/backend/middleware"
	"tasklist/backend/routes"
	"tasklist/backend/services"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var configFile string

	root := &cobra.Command{
		Use:           "tasklist",
		Short:         "Per-user to-do list API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (yaml, toml or json)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(configFile)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(configFile)
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func load(configFile string) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout), nil
}

func migrate(configFile string) error {
	cfg, log, err := load(configFile)
	if err != nil {
		return err
	}

	db, err := database.Setup(cfg, log)
	if err != nil {
		return err
	}
	db.Close()
	return nil
}

func serve(configFile string) error {
	cfg, log, err := load(configFile)
	if err != nil {
		return err
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Setup(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	authService := services.NewAuthService(
		services.NewGormUserStore(db),
		cfg.JWTSecret,
		cfg.JWTExpirationHours,
		cfg.JWTRefreshExpirationHours,
	)
	taskService := services.NewTaskService(services.NewGormTaskStore(db))

	opts := routes.RouterOptions{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		DB:             db,
		AuthService:    authService,
		TaskService:    taskService,
	}

	var redisClient *redis.Client
	if cfg.RateLimitEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr(),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).WithField("redis", cfg.RedisAddr()).Warn("Redis is unreachable, rate limiting will let requests through")
		}
		cancel()

		limiter := middleware.NewRedisRateLimiter(redisClient, "tasklist:ratelimit:")
		window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
		opts.AuthRateLimit = middleware.RateLimitMiddleware(limiter, cfg.RateLimitRequests, window, log)
		log.WithFields(logrus.Fields{
			"limit":  cfg.RateLimitRequests,
			"window": window.String(),
		}).Info("Rate limiting enabled on /api/auth")
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           routes.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.AppPort).Info("API server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"tasklist-api": func(ctx context.Context) error {
				log.Info("Shutting down server...")
				err := server.Shutdown(ctx)
				if redisClient != nil {
					if cerr := redisClient.Close(); cerr != nil {
						log.WithError(cerr).Error("Failed to close Redis connection")
					}
				}
				db.Close()
				return err
			},
		},
	)

	if exitCode := <-wait; exitCode != 0 {
		return fmt.Errorf("shutdown finished with exit code %d", exitCode)
	}
	log.Info("Server stopped")
	return nil
}
