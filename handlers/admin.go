package handlers

import (
	"net/http"

	pricingRepo "fundihub/database/repository/pricing"
	"fundihub/models"
	"fundihub/services/pricing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler manages pricing configuration versions.
type AdminHandler struct {
	ConfigRepo pricingRepo.PricingConfigRepository
	Resolver   *pricing.CachedConfigResolver
}

// NewAdminHandler returns an admin handler.
func NewAdminHandler(repo pricingRepo.PricingConfigRepository, resolver *pricing.CachedConfigResolver) *AdminHandler {
	return &AdminHandler{ConfigRepo: repo, Resolver: resolver}
}

// GetActiveConfigHandler returns the currently active pricing config.
func (h *AdminHandler) GetActiveConfigHandler(c *gin.Context) {
	logger := getLogger(c)
	cfg, err := h.Resolver.ActiveConfig(c.Request.Context())
	if err != nil {
		logger.Error("no active pricing config", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "no active pricing configuration"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// ListConfigsHandler returns all config versions, newest first.
func (h *AdminHandler) ListConfigsHandler(c *gin.Context) {
	logger := getLogger(c)
	configs, err := h.ConfigRepo.List()
	if err != nil {
		logger.Error("failed to list pricing configs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pricing configs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// CreateConfigVersionHandler inserts a new inactive config version. Edits
// never mutate history; activation is a separate step.
func (h *AdminHandler) CreateConfigVersionHandler(c *gin.Context) {
	logger := getLogger(c)
	var cfg models.PricingConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ConfigRepo.CreateVersion(&cfg); err != nil {
		logger.Error("failed to create pricing config version", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

// ActivateConfigHandler swaps the active flag to the given version and drops
// the cached copy.
func (h *AdminHandler) ActivateConfigHandler(c *gin.Context) {
	logger := getLogger(c)
	id := c.Param("configID")

	if err := h.ConfigRepo.Activate(id); err != nil {
		logger.Error("failed to activate pricing config", zap.String("configId", id), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.Resolver.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "activated", "configId": id})
}
