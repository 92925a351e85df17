package handlers

import (
	"net/http"

	"fundihub/services/pricing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PricingHandler exposes the pricing operations over HTTP.
type PricingHandler struct {
	Svc pricing.Service
}

// NewPricingHandler returns a pricing handler backed by the given service.
func NewPricingHandler(svc pricing.Service) *PricingHandler {
	return &PricingHandler{Svc: svc}
}

// quoteStatus maps a pricing failure to an HTTP status. User-correctable
// failures are 400s; missing config or broken invariants are 500s.
func quoteStatus(err *pricing.Error) int {
	if err.UserError() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// CalculatePriceHandler runs a full price calculation.
func (h *PricingHandler) CalculatePriceHandler(c *gin.Context) {
	logger := getLogger(c)
	var req pricing.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result := h.Svc.CalculatePrice(c.Request.Context(), req)
	if !result.Success {
		logger.Warn("price calculation failed",
			zap.String("code", result.Err.Code), zap.String("category", req.Category))
		c.JSON(quoteStatus(result.Err), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetEstimateHandler quotes without a bound technician.
func (h *PricingHandler) GetEstimateHandler(c *gin.Context) {
	logger := getLogger(c)
	var req pricing.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result := h.Svc.GetEstimate(c.Request.Context(), req)
	if !result.Success {
		logger.Warn("estimate failed", zap.String("code", result.Err.Code))
		c.JSON(quoteStatus(result.Err), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ComparePricesHandler quotes each candidate technician and ranks by total.
func (h *PricingHandler) ComparePricesHandler(c *gin.Context) {
	logger := getLogger(c)
	var input struct {
		Request       pricing.QuoteRequest `json:"request"`
		TechnicianIDs []string             `json:"technicianIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	comparison, err := h.Svc.CompareTechnicianPrices(c.Request.Context(), input.Request, input.TechnicianIDs)
	if err != nil {
		logger.Warn("price comparison failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparison)
}
