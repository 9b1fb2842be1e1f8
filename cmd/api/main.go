package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/domain/dedup"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/auth"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/config"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/logging"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

func main() {
	cfg := config.LoadOrEnv()

	logger := logging.NewLogger(cfg.Observability.Logging)

	if cfg.Auth.JWTSecret == "" {
		logger.Error("JWT secret is not configured, set auth.jwt_secret or PENNYFLOW_JWT_SECRET")
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "path", cfg.Storage.DatabasePath)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.ExpiryHours)

	dedupCfg := dedup.DefaultConfig()
	dedupCfg.WindowDays = cfg.Duplicates.WindowDays
	dedupCfg.AmountTolerance = cfg.Duplicates.AmountTolerance
	dedupCfg.Threshold = cfg.Duplicates.Threshold
	scorer := dedup.NewScorer(dedupCfg)

	svcs := api.Services{
		Auth:       service.NewAuthService(store, tokens, logger),
		Uploads:    service.NewUploadService(store, cfg.Upload, logger),
		Processing: service.NewProcessingService(store, cfg, logger),
		Staging:    service.NewStagingService(store, logger),
		Duplicates: service.NewDuplicateService(store, scorer, logger),
		Training:   service.NewTrainingService(store, logger),
		Tokens:     tokens,
		Repo:       store,
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(cfg.Server, svcs, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("starting API server", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
