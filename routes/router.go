package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/piggy-wanger/keep-fit/config"
	"github.com/piggy-wanger/keep-fit/controllers"
	"github.com/piggy-wanger/keep-fit/middleware"
	"github.com/piggy-wanger/keep-fit/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	checkInController := controllers.NewCheckInController(db)
	healthController := controllers.NewHealthController(db)
	trainingController := controllers.NewTrainingController(db)
	equipmentController := controllers.NewEquipmentController(db)
	achievementController := controllers.NewAchievementController(db)
	socialController := controllers.NewSocialController(db)
	aiController := controllers.NewAIController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public user profile
	api.GET("/users/:id", authController.GetUserPublic)

	// Public equipment catalog
	api.GET("/equipment", equipmentController.List)
	api.GET("/equipment/categories", equipmentController.Categories)
	api.GET("/equipment/:id", equipmentController.Get)

	// Public stats endpoint
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/checkins/types", checkInController.ListTypes)
	protected.POST("/checkins", checkInController.Create)
	protected.DELETE("/checkins/:type", checkInController.Cancel)
	protected.GET("/checkins/today", checkInController.Today)
	protected.GET("/checkins/records", checkInController.Records)
	protected.GET("/checkins/calendar", checkInController.Calendar)
	protected.GET("/checkins/stats", checkInController.Stats)

	protected.POST("/health/records", healthController.CreateRecord)
	protected.GET("/health/records", healthController.ListRecords)
	protected.PUT("/health/records/:id", healthController.UpdateRecord)
	protected.DELETE("/health/records/:id", healthController.DeleteRecord)
	protected.GET("/health/thresholds", healthController.GetThresholds)
	protected.PUT("/health/thresholds", healthController.UpdateThresholds)
	protected.GET("/health/stats", healthController.Stats)

	protected.POST("/training/plans", trainingController.CreatePlan)
	protected.GET("/training/plans", trainingController.ListPlans)
	protected.GET("/training/plans/:id", trainingController.GetPlan)
	protected.PUT("/training/plans/:id", trainingController.UpdatePlan)
	protected.PATCH("/training/plans/:id/activate", trainingController.ActivatePlan)
	protected.DELETE("/training/plans/:id", trainingController.DeletePlan)
	protected.POST("/training/logs", trainingController.CreateLog)
	protected.GET("/training/logs", trainingController.ListLogs)
	protected.DELETE("/training/logs/:id", trainingController.DeleteLog)
	protected.GET("/training/stats", trainingController.Stats)

	protected.GET("/equipment/mine", equipmentController.ListMine)
	protected.POST("/equipment/mine/:id", equipmentController.Add)
	protected.DELETE("/equipment/mine/:id", equipmentController.Remove)

	protected.GET("/achievements", achievementController.List)
	protected.GET("/achievements/categories", achievementController.Categories)
	protected.GET("/achievements/stats", achievementController.Stats)
	protected.POST("/achievements/check", achievementController.Check)

	protected.POST("/partner/request", socialController.RequestPartner)
	protected.GET("/partner", socialController.GetPartner)
	protected.POST("/partner/:id/accept", socialController.AcceptPartner)
	protected.POST("/partner/:id/reject", socialController.RejectPartner)
	protected.DELETE("/partner/:id/request", socialController.CancelPartnerRequest)
	protected.DELETE("/partner/:id", socialController.DissolvePartner)
	protected.GET("/partner/checkins", socialController.PartnerCheckIns)

	protected.POST("/groups", socialController.CreateGroup)
	protected.GET("/groups/mine", socialController.GetGroup)
	protected.POST("/groups/join", socialController.JoinGroup)
	protected.POST("/groups/leave", socialController.LeaveGroup)
	protected.DELETE("/groups/mine", socialController.DissolveGroup)
	protected.GET("/groups/members", socialController.GroupMembers)
	protected.GET("/groups/checkins", socialController.GroupCheckIns)

	protected.GET("/ai/providers", aiController.ListProviders)
	protected.POST("/ai/configs", aiController.CreateConfig)
	protected.GET("/ai/configs", aiController.ListConfigs)
	protected.GET("/ai/configs/:id", aiController.GetConfig)
	protected.PUT("/ai/configs/:id", aiController.UpdateConfig)
	protected.DELETE("/ai/configs/:id", aiController.DeleteConfig)
	protected.PATCH("/ai/configs/:id/default", aiController.SetDefaultConfig)
	protected.POST("/ai/chat", aiController.Chat)
	protected.POST("/ai/chat/stream", aiController.ChatStream)
	protected.POST("/ai/suggest", aiController.Suggest)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
