package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"unipick/backend/internal/cache"
	"unipick/backend/internal/config"
	"unipick/backend/internal/handler"
	"unipick/backend/internal/middleware"
	"unipick/backend/internal/repository"
	"unipick/backend/internal/service"
)

type Server struct {
	router     *gin.Engine
	db         *sqlx.DB
	cfg        *config.Config
	logger     *zap.Logger
	classifier service.Classifier
	notifier   service.FavoriteNotifier
	cache      *cache.Cache
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, classifier service.Classifier, notifier service.FavoriteNotifier, c *cache.Cache) *Server {
	router := gin.Default()
	router.Use(middleware.RequestID())

	s := &Server{
		router:     router,
		db:         db,
		cfg:        cfg,
		logger:     logger,
		classifier: classifier,
		notifier:   notifier,
		cache:      c,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Repositories
	moderationRepo := repository.NewModerationRepository(s.db, s.logger)
	itemRepo := repository.NewItemRepository(s.db, s.logger)
	profileRepo := repository.NewProfileRepository(s.db, s.logger)

	// Services
	moderationService := service.NewModerationService(s.classifier, moderationRepo, s.cache, s.logger)
	itemService := service.NewItemService(itemRepo, moderationService, s.cache, s.notifier, s.logger)
	profileService := service.NewProfileService(profileRepo, moderationService, s.logger)

	// Handlers
	moderationHandler := handler.NewModerationHandler(moderationService, s.logger)
	itemHandler := handler.NewItemHandler(itemService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)

	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := s.cfg.Auth.JWTSecret

	api := s.router.Group("/api/v1")

	// Public routes. OptionalAuth lets owners see their own drafts.
	public := api.Group("")
	public.Use(middleware.OptionalAuth(secret, s.logger))
	{
		public.GET("/items", itemHandler.List)
		public.GET("/items/:id", itemHandler.Get)
		public.POST("/items/:id/view", itemHandler.RecordView)
		public.GET("/items/:id/stats", itemHandler.GetStats)
		public.GET("/profiles/:id", profileHandler.GetPublic)
	}

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(secret, s.logger))
	{
		authed.POST("/items", itemHandler.Create)
		authed.PUT("/items/:id", itemHandler.Update)
		authed.DELETE("/items/:id", itemHandler.Delete)
		authed.POST("/items/:id/revert", itemHandler.Revert)
		authed.POST("/items/:id/favorite", itemHandler.ToggleFavorite)
		authed.GET("/items/user/favorites", itemHandler.ListFavorites)
		authed.GET("/items/user/view-history", itemHandler.ListViewHistory)

		authed.GET("/profiles/me", profileHandler.GetMe)
		authed.PUT("/profiles/me", profileHandler.UpdateMe)
		authed.POST("/profiles/me/revert", profileHandler.Revert)
	}

	// Admin moderation routes
	admin := api.Group("/moderation/admin")
	admin.Use(middleware.AuthMiddleware(secret, s.logger))
	admin.Use(middleware.RequireAdmin(profileRepo, s.logger))
	{
		admin.GET("/review-queue", moderationHandler.GetReviewQueue)
		admin.POST("/review", moderationHandler.Review)
		admin.GET("/stats", moderationHandler.GetStats)
		admin.GET("/logs/:id", moderationHandler.GetLogDetail)
	}
}

func (s *Server) Run(port string) {
	s.logger.Info("Server starting", zap.String("port", port))
	if err := s.router.Run(":" + port); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
