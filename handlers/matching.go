package handlers

import (
	"net/http"
	"time"

	"fundihub/models"
	"fundihub/services/booking"
	"fundihub/services/matching"
	"fundihub/services/pricing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MatchingHandler exposes technician search and the match lifecycle.
type MatchingHandler struct {
	Matching matching.Service
	Booking  booking.Service
}

// NewMatchingHandler returns a matching handler.
func NewMatchingHandler(matchingSvc matching.Service, bookingSvc booking.Service) *MatchingHandler {
	return &MatchingHandler{Matching: matchingSvc, Booking: bookingSvc}
}

// FindTechniciansHandler runs a search and returns the ranked candidates.
func (h *MatchingHandler) FindTechniciansHandler(c *gin.Context) {
	logger := getLogger(c)
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if userID := c.GetString("userID"); userID != "" {
		req.CustomerID = userID
	}

	match, err := h.Matching.FindTechnicians(c.Request.Context(), req)
	if err != nil {
		logger.Error("technician search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to find technicians"})
		return
	}
	c.JSON(http.StatusOK, match)
}

// ViewMatchHandler returns a match, transitioning it to viewed.
func (h *MatchingHandler) ViewMatchHandler(c *gin.Context) {
	logger := getLogger(c)
	matchID := c.Param("matchID")

	match, err := h.Matching.ViewMatch(c.Request.Context(), matchID)
	if err != nil {
		logger.Warn("match not found", zap.String("matchId", matchID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	c.JSON(http.StatusOK, match)
}

// RejectMatchHandler finalizes a match as rejected.
func (h *MatchingHandler) RejectMatchHandler(c *gin.Context) {
	logger := getLogger(c)
	matchID := c.Param("matchID")

	if err := h.Matching.RejectMatch(c.Request.Context(), matchID); err != nil {
		logger.Warn("match rejection failed", zap.String("matchId", matchID), zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.MatchRejected})
}

// AcceptMatchHandler accepts a candidate and creates the booking. The
// response is the customer view, which withholds the technician until the
// booking fee is held.
func (h *MatchingHandler) AcceptMatchHandler(c *gin.Context) {
	logger := getLogger(c)
	matchID := c.Param("matchID")
	var input struct {
		TechnicianID string    `json:"technicianId" binding:"required"`
		ScheduledAt  time.Time `json:"scheduledAt"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := h.Booking.AcceptMatch(c.Request.Context(), matchID, input.TechnicianID, input.ScheduledAt)
	if err != nil {
		logger.Error("match acceptance failed", zap.String("matchId", matchID), zap.Error(err))
		if perr, ok := err.(*pricing.Error); ok && !perr.UserError() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": perr.Message, "code": perr.Code})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": created.CustomerView()})
}
