package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"recipe-llm/internal/config"
	"recipe-llm/internal/db"
	"recipe-llm/internal/email"
	apihttp "recipe-llm/internal/http"
	"recipe-llm/internal/llm"
	"recipe-llm/internal/repository"
	"recipe-llm/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		userRepo   repository.UserRepository
		recipeRepo repository.RecipeRepository
		ping       apihttp.PingFunc
	)
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err))
		}
		defer conn.Close()
		userRepo = repository.NewSQLiteUserRepository(conn)
		recipeRepo = repository.NewSQLiteRecipeRepository(conn)
		ping = conn.PingContext
	default:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		recipeRepo = repository.NewPgRecipeRepository(pool)
		ping = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	}
	logger.Info("store ready", zap.String("driver", cfg.StoreDriver))

	llmClient, embedder := llm.NewFromConfig(cfg, logger)
	logger.Info("llm configured",
		zap.String("provider", cfg.LLMProvider),
		zap.Bool("api_key_configured", cfg.LLMAPIKey != ""),
		zap.Bool("embeddings", embedder != nil),
	)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	revocations := service.NewMemoryRevocationStore()
	loginLimiter := service.NewMemoryLoginRateLimiter(cfg.LoginRateWindow(), cfg.LoginRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		} else {
			revocations = service.NewRedisRevocationStore(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow(), cfg.LoginRateLimit)
		}
		cancel()
	}

	jwtSvc, err := service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL(),
		service.WithIssuer(cfg.JWTIssuer),
		service.WithRevocationStore(revocations),
		service.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("jwt", zap.Error(err))
	}

	userSvc := service.NewUserService(logger, userRepo, cfg.BcryptCost)
	recipeSvc := service.NewRecipeService(logger, recipeRepo, userRepo, llmClient, embedder, emailSender)

	router := apihttp.NewRouter(
		logger,
		cfg.AllowedOrigins(),
		jwtSvc,
		apihttp.NewSystemHandler(logger, ping),
		apihttp.NewUserHandler(logger, userSvc, jwtSvc, loginLimiter),
		apihttp.NewRecipeHandler(logger, recipeSvc),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
