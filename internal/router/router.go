package router

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/boletim/internal/config"
	"github.com/stemsi/boletim/internal/handler"
	"github.com/stemsi/boletim/internal/middleware"
	"github.com/stemsi/boletim/internal/model"
	"github.com/stemsi/boletim/internal/response"
)

// multipartOverhead leaves room for the form boundaries around the file.
const multipartOverhead = 1 << 20

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Analysis *handler.AnalysisHandler
	Download *handler.DownloadHandler
	System   *handler.SystemHandler
}

// SetupRouter configures the HTML pages, downloads and JSON API.
// ctx bounds the background goroutines of the rate limiter.
func SetupRouter(
	ctx context.Context,
	handlers *Handlers,
	templates *template.Template,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.SetHTMLTemplate(templates)
	router.MaxMultipartMemory = 8 << 20

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli(middleware.BrotliConfig{Quality: cfg.BrotliQuality}))

	router.GET("/health", handlers.System.Health)

	session := middleware.Session(middleware.SessionConfig{
		CookieName: cfg.SessionCookieName,
		MaxAge:     int(cfg.ArtifactTTL / time.Second),
		Secure:     cfg.SessionCookieHTTPS,
	})
	uploadLimiter := middleware.NewRateLimiter(ctx, cfg.UploadRate, time.Minute)
	bodyLimit := limitBody(cfg.MaxUploadBytes)

	// ─── 1. HTML Pages (Session) ───────────────────────────────────────
	pages := router.Group("/")
	pages.Use(session, middleware.NoStore())
	{
		pages.GET("/", handlers.Analysis.ShowForm)
		pages.POST("/", uploadLimiter.Middleware(), bodyLimit, handlers.Analysis.Upload)
	}

	// ─── 2. Downloads (Session) ────────────────────────────────────────
	downloads := router.Group("/download")
	downloads.Use(session, middleware.NoStore())
	{
		for _, a := range model.Artifacts {
			downloads.GET("/"+string(a)+"/", handlers.Download.Download(a))
		}
	}

	// ─── 3. JSON API (CORS, Session) ───────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour

	api := router.Group("/api/v1")
	api.Use(cors.New(corsConfig), session)
	{
		api.POST("/analyses", uploadLimiter.Middleware(), bodyLimit, handlers.Analysis.CreateAnalysis)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}

// limitBody caps the request body at the upload limit plus form overhead.
func limitBody(maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxUpload > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload+multipartOverhead)
		}
		c.Next()
	}
}
