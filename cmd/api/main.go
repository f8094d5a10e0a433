package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"accounts-api/internal/config"
	"accounts-api/internal/db"
	"accounts-api/internal/email"
	apihttp "accounts-api/internal/http"
	"accounts-api/internal/i18n"
	"accounts-api/internal/repository"
	"accounts-api/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.DBDebug {
		// El tracer de queries emite a nivel debug.
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	catalog := i18n.NewCatalog(cfg.Locales, cfg.DefaultLocale)

	// Sin DATABASE_URL el servicio arranca igual; las operaciones que
	// requieren almacenamiento responden 503.
	var (
		pool        *pgxpool.Pool
		accountRepo repository.AccountRepository
		profileRepo repository.ProfileRepository
		pinger      func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		pool, err = db.NewPool(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}

		go db.NewSupervisor(pool, logger, 5*time.Second).Run(ctx)

		accountRepo = repository.NewPgAccountRepository(pool)
		profileRepo = repository.NewPgProfileRepository(pool)
		pinger = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	} else {
		logger.Warn("database not configured; registration disabled")
	}

	emailSender := email.Sender(nil)
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		limiter     service.SignupRateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisSignupRateLimiter(redisClient, time.Minute, 10)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewSignupRateLimiter(time.Minute, 10)
	}

	tokenServ := service.NewTokenServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	regServ := service.NewRegistrationService(logger, accountRepo, profileRepo, emailSender, catalog)
	accountHandler := apihttp.NewAccountHandler(logger, regServ, tokenServ, limiter, catalog)
	router := apihttp.NewRouter(logger, cfg, catalog, accountHandler, tokenServ, pinger)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("root_url", cfg.AppRootURL),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
