package router

import (
	"net/http"
	"time"

	"satstream/config"
	"satstream/internal/handler"
	"satstream/internal/ledger"
	"satstream/internal/middleware"
	"satstream/internal/repository"
	"satstream/internal/service"
	"satstream/internal/ws"
	"satstream/pkg/breez"
	"satstream/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, node *breez.Client, media cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	streamRepo := repository.NewStreamRepository(db)

	// Realtime relay: the ledger publishes tip events into the hub.
	hub := ws.NewHub()

	// Services
	ledgerSvc := ledger.NewService(db, node, hub, cfg.Ledger.StaleWithdrawalAfter)
	authSvc := service.NewAuthService(cfg, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, ledgerSvc, node)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	postHandler := handler.NewPostHandler(postRepo, ledgerSvc, media)
	streamHandler := handler.NewStreamHandler(streamRepo)
	walletHandler := handler.NewWalletHandler(ledgerSvc)
	adminHandler := handler.NewAdminHandler(ledgerSvc, userRepo)

	authMw := middleware.AuthRequired(&cfg.JWT, userRepo)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.GET("/profile", authMw, authHandler.Profile)
		}

		posts := api.Group("/posts", authMw)
		{
			posts.POST("", postHandler.Create)
			posts.GET("/feed", postHandler.Feed)
			posts.POST("/:id/react", postHandler.React)
			posts.GET("/:id/reactions", postHandler.Reactions)
		}

		lightning := api.Group("/lightning", authMw)
		{
			lightning.GET("/balance", walletHandler.Balance)
			lightning.GET("/transactions", walletHandler.Transactions)
			lightning.POST("/tip", walletHandler.Tip)
			lightning.POST("/withdraw-request", walletHandler.Withdraw)
		}

		streams := api.Group("/streams", authMw)
		{
			streams.GET("/active", streamHandler.ListActive)
			streams.GET("/:id", streamHandler.Get)
			streams.POST("/create", streamHandler.Create)
			streams.POST("/:id/end", streamHandler.End)
		}

		admin := api.Group("/admin", authMw, adminMw)
		{
			admin.GET("/withdrawal-requests", adminHandler.ListWithdrawals)
			admin.POST("/withdrawal-requests/:id/approve", adminHandler.ApproveWithdrawal)
			admin.POST("/withdrawal-requests/:id/deny", adminHandler.DenyWithdrawal)
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:id/ban", adminHandler.BanUser)
			admin.POST("/users/:id/unban", adminHandler.UnbanUser)
			admin.POST("/users/:id/reward", adminHandler.RewardUser)
		}

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":      "healthy",
				"environment": cfg.Server.Env,
				"timestamp":   time.Now().UTC().Format(time.RFC3339),
			})
		})
	}

	r.GET("/ws", ws.UpgradeRelay(&cfg.JWT, hub, streamRepo))

	return r
}
