package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/contractui/api/internal/catalog"
	"github.com/contractui/api/internal/config"
	"github.com/gin-gonic/gin"
)

// Service identity reported by the health endpoints
const (
	ServiceName    = "contractui"
	ServiceVersion = "0.1.0"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	client  *http.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config, cat *catalog.Catalog) *HealthHandler {
	return &HealthHandler{
		cfg:     cfg,
		catalog: cat,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

// Health returns basic health status
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

// DeepHealth returns health status with dependency checks
func (h *HealthHandler) DeepHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deps := make(map[string]string)
	allHealthy := true

	if h.cfg.HasCredential() {
		deps["credential"] = "configured"
	} else {
		deps["credential"] = "missing"
		allHealthy = false
	}

	deps["catalog"] = "default " + h.catalog.Default()

	if h.cfg.OpenRouterURL != "" {
		if h.checkUpstream(ctx) {
			deps["openrouter"] = "healthy"
		} else {
			deps["openrouter"] = "unhealthy"
			allHealthy = false
		}
	} else {
		deps["openrouter"] = "not configured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:       status,
		Service:      ServiceName,
		Version:      ServiceVersion,
		Dependencies: deps,
	})
}

// checkUpstream probes the models listing next to the completion endpoint
func (h *HealthHandler) checkUpstream(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL(h.cfg.OpenRouterURL), nil)
	if err != nil {
		return false
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func modelsURL(completionURL string) string {
	base := strings.TrimSuffix(strings.TrimRight(completionURL, "/"), "/chat/completions")
	return base + "/models"
}
