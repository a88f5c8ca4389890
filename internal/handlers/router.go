package handlers

import (
	"fmt"
	"net/http"

	"github.com/contractui/api/internal/catalog"
	"github.com/contractui/api/internal/config"
	"github.com/contractui/api/internal/middleware"
	"github.com/contractui/api/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps carries everything the HTTP layer needs
type RouterDeps struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Generator Generator
	Registry  *prometheus.Registry
	Logger    *zap.Logger
}

// NewRouter builds the gin engine with views, middleware and routes
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	metrics := middleware.NewMetrics(deps.Registry)
	flasher := middleware.NewFlasher(deps.Config.SecretKey, deps.Config.IsProduction())

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(metrics.Middleware())

	router.StaticFS("/static", http.FS(static))

	healthHandler := NewHealthHandler(deps.Config, deps.Catalog)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	contractHandler := NewContractHandler(deps.Config, deps.Catalog, deps.Generator, flasher, metrics, deps.Logger)
	router.GET("/", contractHandler.Index)
	router.POST("/generate", contractHandler.Generate)
	router.POST("/download-docx", contractHandler.DownloadDOCX)
	router.POST("/download-pdf", contractHandler.DownloadPDF)

	router.NoRoute(middleware.NotFound)

	return router, nil
}
