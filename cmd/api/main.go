package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"harmony-match/internal/config"
	"harmony-match/internal/db"
	"harmony-match/internal/email"
	apihttp "harmony-match/internal/http"
	"harmony-match/internal/repository"
	"harmony-match/internal/service"

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
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	vectorRepo := repository.NewPgVectorRepository(pool)
	outcomeRepo := repository.NewPgOutcomeRepository(pool)
	clusterRepo := repository.NewPgClusterRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	weightsStore := service.NewMemoryWeightsStore()
	var feedbackLimiter service.FeedbackRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			weightsStore = service.NewRedisWeightsStore(redisClient, 0)
			feedbackLimiter = service.NewRedisFeedbackRateLimiter(
				redisClient,
				time.Duration(cfg.FeedbackRateLimitSec)*time.Second,
				cfg.FeedbackRateLimitMax,
			)
		}
		cancel()
	}

	patterns := service.DefaultPatternTable()
	if cfg.PatternTablePath != "" {
		loaded, err := service.LoadPatternTable(cfg.PatternTablePath)
		if err != nil {
			logger.Fatal("pattern table load", zap.String("path", cfg.PatternTablePath), zap.Error(err))
		}
		patterns = loaded
	}

	extractor := service.NewFeedbackExtractor(patterns, logger)
	reconciler := service.NewUpdateReconciler(logger)
	validator := service.NewConsistencyValidator(logger)
	clusterAssigner := service.NewClusterAssigner(clusterRepo, logger)
	scorer := service.NewCompatibilityScorer(weightsStore, cfg.WeightLearningRate, logger)

	profileSvc := service.NewProfileService(vectorRepo, extractor, reconciler, validator, clusterAssigner, logger)
	matchSvc := service.NewMatchService(vectorRepo, outcomeRepo, userRepo, scorer, clusterAssigner, emailSender, logger)
	userSvc := service.NewUserService(logger, userRepo)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	profileHandler := apihttp.NewProfileHandler(logger, profileSvc, clusterAssigner, feedbackLimiter)
	harmonyHandler := apihttp.NewHarmonyHandler(logger, profileSvc, matchSvc, scorer)
	matchHandler := apihttp.NewMatchHandler(logger, profileSvc, matchSvc)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, profileHandler, harmonyHandler, matchHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
