package router

import (
	"github.com/gin-gonic/gin"

	"github.com/techgeo/backend/internal/config"
	"github.com/techgeo/backend/internal/http/handlers"
	"github.com/techgeo/backend/internal/http/middleware"
	"github.com/techgeo/backend/internal/service"
)

// SetupRouter собирает все маршруты API.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	bidHandler *handlers.BidHandler,
	submissionHandler *handlers.SubmissionHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	membershipHandler *handlers.MembershipHandler,
	adminHandler *handlers.AdminHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Auth-эндпоинты под жёстким rate limit против перебора.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		protected.GET("/profile", profileHandler.Me)
		protected.GET("/profile/dashboard", profileHandler.Dashboard)

		protected.POST("/membership/joining-fee", membershipHandler.ConfirmJoiningFee)
		protected.POST("/membership/premium", membershipHandler.UpgradePremium)

		protected.POST("/bids", bidHandler.Create)
		protected.GET("/bids/my", bidHandler.ListMy)

		protected.POST("/submissions", submissionHandler.Create)
		protected.GET("/submissions/my", submissionHandler.ListMy)

		protected.POST("/withdrawals", withdrawalHandler.Request)
	}

	// Админские маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminMiddleware())
	{
		admin.GET("/bids", adminHandler.ListBids)
		admin.POST("/bids/:id/review", middleware.UUIDValidator("id"), adminHandler.ReviewBid)

		admin.GET("/submissions", adminHandler.ListSubmissions)
		admin.POST("/submissions/:id/start-review", middleware.UUIDValidator("id"), adminHandler.StartSubmissionReview)
		admin.POST("/submissions/:id/review", middleware.UUIDValidator("id"), adminHandler.ReviewSubmission)

		admin.GET("/withdrawals", adminHandler.ListWithdrawals)
		admin.POST("/withdrawals/:id/settle", middleware.UUIDValidator("id"), adminHandler.SettleWithdrawal)

		admin.GET("/profits", adminHandler.Profits)
	}

	return r
}
