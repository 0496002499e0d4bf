package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/feedback-server/config"
	"github.com/vnkhanh/feedback-server/controllers"
	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/realtime"
	"github.com/vnkhanh/feedback-server/services"
	"github.com/vnkhanh/feedback-server/utils"
)

const limiterTTL = 5 * time.Minute

// Deps are the shared services the routes dispatch to.
type Deps struct {
	DB            *gorm.DB
	Hub           *realtime.Hub
	Auth          *services.AuthService
	Forms         *services.FormService
	Public        *services.PublicService
	Responses     *services.ResponseService
	Dashboard     *services.DashboardService
	Notifications *services.NotificationService
	Exports       *services.ExportService

	SubmitLimiter     *middleware.IPRateLimiter
	FormCreateLimiter *middleware.IPRateLimiter
}

// NewDeps wires every service on top of db.
func NewDeps(db *gorm.DB, cfg config.Config, hub *realtime.Hub, store utils.FileStore) Deps {
	return Deps{
		DB:            db,
		Hub:           hub,
		Auth:          services.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.TTL, cfg.Google.ClientID),
		Forms:         services.NewFormService(db, cfg.Server.PublicOrigin, hub),
		Public:        services.NewPublicService(db, hub),
		Responses:     services.NewResponseService(db),
		Dashboard:     services.NewDashboardService(db),
		Notifications: services.NewNotificationService(db),
		Exports:       services.NewExportService(db, store),

		SubmitLimiter:     middleware.NewIPRateLimiter(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.SubmitBurst, limiterTTL),
		FormCreateLimiter: middleware.NewIPRateLimiter(cfg.RateLimit.FormCreatePerMinute, cfg.RateLimit.FormCreateBurst, limiterTTL),
	}
}

// Close stops the limiters' background cleanup.
func (d Deps) Close() {
	d.SubmitLimiter.Stop()
	d.FormCreateLimiter.Stop()
}

func SetupRoutes(r *gin.Engine, d Deps) {
	health := controllers.NewHealthController(d.DB)
	authCtl := controllers.NewAuthController(d.Auth)
	formCtl := controllers.NewFormController(d.Forms)
	responseCtl := controllers.NewResponseController(d.Responses)
	publicCtl := controllers.NewPublicController(d.Public)
	dashboardCtl := controllers.NewDashboardController(d.Dashboard)
	noteCtl := controllers.NewNotificationController(d.Notifications, d.Hub)
	exportCtl := controllers.NewExportController(d.Exports)

	r.GET("/health", health.Health)

	r.GET("/ws/notifications/", middleware.AuthJWTQuery(d.Auth), middleware.RequireAdmin(), noteCtl.Stream)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login/", authCtl.Login)
			auth.POST("/google/login/", authCtl.GoogleLogin)
			auth.POST("/logout/", middleware.AuthJWT(d.Auth), authCtl.Logout)
			auth.GET("/user/", middleware.AuthJWT(d.Auth), authCtl.CurrentUser)
		}

		public := api.Group("/public")
		{
			public.GET("/forms/", publicCtl.ListForms)
			public.GET("/feedback/:id/", publicCtl.GetForm)
			public.POST("/feedback/:id/", middleware.RateLimitByIP(d.SubmitLimiter), publicCtl.Submit)
		}

		admin := api.Group("/")
		admin.Use(middleware.AuthJWT(d.Auth), middleware.RequireAdmin())
		{
			admin.GET("/forms/", formCtl.List)
			admin.POST("/forms/", middleware.RateLimitByIP(d.FormCreateLimiter), formCtl.Create)

			form := admin.Group("/forms/:id")
			form.Use(middleware.CheckFormOwner(d.Forms))
			{
				form.GET("/", formCtl.Get)
				form.PUT("/", formCtl.Replace)
				form.PATCH("/", formCtl.Update)
				form.DELETE("/", formCtl.Delete)
				form.GET("/analytics/", formCtl.Analytics)
				form.GET("/question_analytics/", formCtl.QuestionAnalytics)
				form.GET("/share_link/", formCtl.ShareLink)
				form.POST("/export/", exportCtl.Create)
			}
			admin.GET("/exports/:job_id/", exportCtl.Get)

			admin.GET("/responses/", responseCtl.List)
			admin.GET("/responses/:id/", responseCtl.Get)

			admin.GET("/notifications/", noteCtl.List)
			admin.GET("/notifications/unread_count/", noteCtl.UnreadCount)
			admin.POST("/notifications/mark_all_as_read/", noteCtl.MarkAllRead)
			admin.POST("/notifications/:id/mark_as_read/", noteCtl.MarkRead)

			admin.GET("/dashboard/", dashboardCtl.Dashboard)
			admin.GET("/stats/", dashboardCtl.Stats)
			admin.GET("/form-types/", formCtl.FormTypes)
		}
	}
}
