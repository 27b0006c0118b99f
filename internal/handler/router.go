package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-console/internal/console"
	internalmiddleware "github.com/noah-isme/campus-admin-console/internal/middleware"
	"github.com/noah-isme/campus-admin-console/internal/service"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-admin-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-admin-console/pkg/middleware/requestid"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Console        *console.Console
	Tokens         internalmiddleware.TokenParser
	Events         ChangeListener
	Metrics        *service.MetricsService
	DB             Pinger
	Logger         *zap.Logger
	APIPrefix      string
	AllowedOrigins []string
	// MediaDir is served under /media when set.
	MediaDir string
	Docs     bool
}

// NewRouter builds the gin engine with every console route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(cfg.Metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	health := NewMetricsHandler(cfg.Metrics, cfg.DB)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if cfg.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if cfg.MediaDir != "" {
		r.Static("/media", cfg.MediaDir)
	}

	admin := prefix + "/admin"
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusTemporaryRedirect, admin) })
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	c := cfg.Console
	requireAdmin := internalmiddleware.AdminSession(cfg.Tokens, c.Gate)
	api := r.Group(prefix)

	auth := NewAuthHandler(c.Gate, cfg.Tokens)
	api.POST("/auth/login", auth.Login)
	api.GET("/auth/session", auth.Session)
	api.POST("/auth/logout", requireAdmin, auth.Logout)
	api.PUT("/auth/profile", requireAdmin, auth.UpdateProfile)

	g := api.Group("/admin", requireAdmin)
	dash := NewDashboardHandler(c)
	g.GET("", dash.Overview)
	g.GET("/dashboard", dash.Stats)
	g.GET("/test-tables", dash.TestTables)

	NewResourceHandler(c.Students, StudentExport, cfg.Events).Register(g)
	NewResourceHandler(c.Instructors, InstructorExport, cfg.Events).Register(g)
	NewResourceHandler(c.Staff, StaffExport, cfg.Events).Register(g)
	NewResourceHandler(c.Courses, CourseExport, cfg.Events).Register(g)
	NewResourceHandler(c.Classes, ClassExport, cfg.Events).Register(g)
	NewResourceHandler(c.Gallery, GalleryExport, cfg.Events).Register(g)
	NewResourceHandler(c.Announcements, AnnouncementExport, cfg.Events).Register(g)
	NewResourceHandler(c.KidsCamp, KidsCampExport, cfg.Events).Register(g)
	NewResourceHandler(c.Settings, SettingExport, cfg.Events).Register(g)
	NewSecurityHandler(c.Security).Register(g)
	NewFunctionsHandler(c.Functions, cfg.Events).Register(g)
	NewSocialServiceHandler(c.SocialService, cfg.Events).Register(g)

	return r
}
