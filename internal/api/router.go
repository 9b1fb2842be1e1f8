package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vargak/pennyflow-backend/internal/api/handlers"
	"github.com/vargak/pennyflow-backend/internal/api/middleware"
	"github.com/vargak/pennyflow-backend/internal/application/service"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/auth"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/config"
	"github.com/vargak/pennyflow-backend/internal/infrastructure/storage"
)

// Services bundles everything the router needs
type Services struct {
	Auth       *service.AuthService
	Uploads    *service.UploadService
	Processing *service.ProcessingService
	Staging    *service.StagingService
	Duplicates *service.DuplicateService
	Training   *service.TrainingService
	Tokens     *auth.Manager
	Repo       storage.Repository
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(cfg config.ServerConfig, svcs Services, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(logger))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handlers.Health)

	authHandler := handlers.NewAuthHandler(svcs.Auth, svcs.Repo)

	public := router.Group("/api/auth")
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
	}

	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth(svcs.Tokens))
	{
		protected.GET("/auth/me", authHandler.Me)

		filesHandler := handlers.NewFilesHandler(svcs.Uploads)
		protected.POST("/files", filesHandler.Upload)
		protected.GET("/files", filesHandler.List)
		protected.GET("/files/:id/schema", filesHandler.GetSchema)

		sessionsHandler := handlers.NewSessionsHandler(svcs.Processing)
		protected.POST("/sessions", sessionsHandler.Start)
		protected.GET("/sessions", sessionsHandler.List)
		protected.GET("/sessions/:id", sessionsHandler.Get)

		stagedHandler := handlers.NewStagedHandler(svcs.Staging)
		protected.GET("/staged", stagedHandler.List)
		protected.PATCH("/staged/:id", stagedHandler.Update)
		protected.POST("/staged/:id/approve", stagedHandler.Approve)
		protected.POST("/staged/:id/reject", stagedHandler.Reject)
		protected.POST("/staged/bulk-review", stagedHandler.BulkReview)
		protected.POST("/staged/auto-approve", stagedHandler.AutoApprove)

		txHandler := handlers.NewTransactionsHandler(svcs.Repo)
		protected.GET("/transactions", txHandler.List)
		protected.POST("/transactions", txHandler.Create)
		protected.GET("/transactions/stats", txHandler.Stats)
		protected.GET("/transactions/:id", txHandler.Get)
		protected.PUT("/transactions/:id", txHandler.Update)
		protected.DELETE("/transactions/:id", txHandler.DeleteOne)
		protected.PATCH("/transactions/:id/category", txHandler.UpdateCategory)
		protected.POST("/transactions/bulk-update", txHandler.BulkUpdate)
		protected.POST("/transactions/delete", txHandler.Delete)

		dupHandler := handlers.NewDuplicatesHandler(svcs.Duplicates)
		protected.POST("/duplicates/scan", dupHandler.Scan)
		protected.GET("/duplicates", dupHandler.List)
		protected.GET("/duplicates/stats", dupHandler.Stats)
		protected.GET("/duplicates/:id", dupHandler.Get)
		protected.POST("/duplicates/:id/resolve", dupHandler.Resolve)

		trainingHandler := handlers.NewTrainingHandler(svcs.Training)
		protected.POST("/training", trainingHandler.Create)
		protected.POST("/training/from-file/:id", trainingHandler.CreateFromUpload)
		protected.GET("/training", trainingHandler.List)
		protected.GET("/training/:id", trainingHandler.Get)
		protected.DELETE("/training/:id", trainingHandler.Delete)
	}

	return router
}
