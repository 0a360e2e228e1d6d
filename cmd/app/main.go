package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"poap_quiz_backend/internal/api"
	"poap_quiz_backend/internal/repository"
	"poap_quiz_backend/internal/service"
	"poap_quiz_backend/pkg/logger"
	"poap_quiz_backend/pkg/poap"
	"poap_quiz_backend/pkg/ratelimit"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Migrate(context.Background()); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	poapClient := poap.New(cfg.Poap.BaseURL, cfg.Poap.APIKey)

	quizService := service.NewQuizService(repo, service.QuizConfig{
		TokenTTL:                 time.Duration(cfg.Quiz.TokenTTLMinutes) * time.Minute,
		MinTimePerQuestion:       cfg.Quiz.MinTimePerQuestion,
		DefaultPassingPercentage: cfg.Quiz.DefaultPassingPercentage,
	})
	rewardService := service.NewRewardService(repo, service.RewardConfig{
		StrictConsistency:        cfg.Claim.StrictConsistency,
		DefaultPassingPercentage: cfg.Quiz.DefaultPassingPercentage,
	})
	dropService := service.NewDropService(repo, poapClient)
	registryService := service.NewRegistryService(repo)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	feedbackLimiter := ratelimit.PerIP(cfg.Feedback.RequestsPerMinute, time.Minute)

	a := router.Group("/api/v1")
	api.NewProtocolRoutes(a, registryService)
	api.NewQuizRoutes(a, quizService, feedbackLimiter)
	api.NewRewardRoutes(a, rewardService)
	api.NewAdminRoutes(a, registryService, dropService, cfg.Admin.Secret)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
