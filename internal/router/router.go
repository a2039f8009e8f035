// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tradeforge/tradeforge-backend/internal/codegen"
	"github.com/tradeforge/tradeforge-backend/internal/config"
	"github.com/tradeforge/tradeforge-backend/internal/handlers"
	"github.com/tradeforge/tradeforge-backend/internal/middleware"
	"github.com/tradeforge/tradeforge-backend/internal/services"
	"github.com/tradeforge/tradeforge-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, generator codegen.Generator) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	artifactService := services.NewArtifactService(db, generator, storageService)
	licenseService := services.NewLicenseService(db)
	botService := services.NewBotService(db)
	terminalService := services.NewTerminalService(db)
	paymentService := services.NewPaymentService(db, cfg)
	adminService := services.NewAdminService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	artifactHandler := handlers.NewArtifactHandler(artifactService, licenseService)
	licenseHandler := handlers.NewLicenseHandler(licenseService)
	botHandler := handlers.NewBotHandler(botService)
	terminalHandler := handlers.NewTerminalHandler(terminalService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.GeneralRateLimit())
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Artifact routes
		artifacts := v1.Group("/artifacts")
		artifacts.Use(middleware.AuthRequired())
		{
			artifacts.POST("/generate", middleware.GenerateRateLimit(), artifactHandler.GenerateArtifact)
			artifacts.GET("", artifactHandler.ListArtifacts)
			artifacts.GET("/:id", artifactHandler.GetArtifact)
			artifacts.DELETE("/:id", artifactHandler.DeleteArtifact)
			artifacts.GET("/:id/analytics", artifactHandler.GetArtifactAnalytics)
			artifacts.POST("/:id/license-key", artifactHandler.IssueLicenseKey)
		}

		// License routes
		licenses := v1.Group("/licenses")
		licenses.Use(middleware.AuthRequired())
		{
			licenses.POST("/assign", licenseHandler.AssignLicense)
			licenses.GET("/assignments/:id", licenseHandler.GetAssignment)
			licenses.POST("/assignments/:id/usage", licenseHandler.RecordUsage)
		}

		// Bot control routes (dashboard)
		bot := v1.Group("/bot")
		bot.Use(middleware.AuthRequired())
		{
			bot.POST("/toggle", botHandler.ToggleBot)
			bot.GET("/status/:artifact_id", botHandler.GetBotStatus)
		}

		// Terminal-facing routes. The execution agent authenticates with the
		// artifact's license key, never a user token.
		terminal := v1.Group("/terminal")
		{
			agent := terminal.Group("")
			agent.Use(middleware.PollRateLimit(), middleware.LicenseKeyRequired())
			{
				agent.GET("/bot/status/:artifact_id", botHandler.PollBotStatus)
				agent.POST("/assignments/:id/usage", licenseHandler.RecordUsageForAgent)
			}

			// Terminal account management (dashboard)
			accounts := terminal.Group("")
			accounts.Use(middleware.AuthRequired())
			{
				accounts.POST("/connect", terminalHandler.ConnectAccount)
				accounts.GET("/accounts", terminalHandler.ListAccounts)
				accounts.DELETE("/accounts/:id", terminalHandler.DisconnectAccount)
			}
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
			payments.GET("/history", paymentHandler.GetPaymentHistory)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/users", adminHandler.GetUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		}
	}

	return r
}
