package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/feedback-server/config"
	"github.com/vnkhanh/feedback-server/middleware"
	"github.com/vnkhanh/feedback-server/realtime"
	"github.com/vnkhanh/feedback-server/routes"
	"github.com/vnkhanh/feedback-server/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLogLevel(cfg.Server.LogLevel)

	if cfg.JWT.Secret == "" {
		utils.Log.Fatal("JWT_SECRET must be set")
	}

	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		utils.Log.WithError(err).Fatal("database unavailable")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var store utils.FileStore = utils.LocalFileStore{Dir: cfg.Export.Dir}
	if cfg.Export.SupabaseURL != "" && cfg.Export.SupabaseKey != "" {
		store = utils.NewSupabaseStore(cfg.Export.SupabaseURL, cfg.Export.SupabaseKey, cfg.Export.SupabaseBucket, "exports")
		utils.Log.WithField("bucket", cfg.Export.SupabaseBucket).Info("exports go to supabase storage")
	}

	deps := routes.NewDeps(db, cfg, hub, store)
	defer deps.Close()
	if err := deps.Auth.SeedAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		utils.Log.WithError(err).Fatal("could not seed admin")
	}

	if cfg.Server.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Log.WithError(err).Fatal("trusted proxies")
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Feedback server is running")
	})
	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		utils.Log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	utils.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Log.WithError(err).Error("graceful shutdown failed")
	}
}
