package routes

import (
	"net/http"
	"time"

	"fundihub/handlers"
	"fundihub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handler sets wired in main.
type HandlerBundle struct {
	Pricing  *handlers.PricingHandler
	Matching *handlers.MatchingHandler
	Booking  *handlers.BookingHandler
	Admin    *handlers.AdminHandler
}

// RegisterPricingRoutes registers quoting endpoints.
func RegisterPricingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/pricing")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/calculate", hb.Pricing.CalculatePriceHandler)
		api.POST("/estimate", hb.Pricing.GetEstimateHandler)
		api.POST("/compare", hb.Pricing.ComparePricesHandler)
	}
}

// RegisterMatchingRoutes registers technician matching endpoints.
func RegisterMatchingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/matches")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/find", hb.Matching.FindTechniciansHandler)
		api.GET("/:matchID", hb.Matching.ViewMatchHandler)
		api.POST("/:matchID/reject", hb.Matching.RejectMatchHandler)
		api.POST("/:matchID/accept", hb.Matching.AcceptMatchHandler)
	}
}

// RegisterBookingRoutes registers booking and fee escrow endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.Booking.ListBookingsHandler)
		api.GET("/:bookingID", hb.Booking.GetBookingHandler)
		api.POST("/:bookingID/fee/intent", hb.Booking.CreateFeeIntentHandler)
		api.POST("/:bookingID/fee/confirm", hb.Booking.ConfirmFeeHandler)
		api.POST("/:bookingID/complete", hb.Booking.CompleteBookingHandler)
		api.POST("/:bookingID/fee/refund", hb.Booking.RefundFeeHandler)
	}
}

// RegisterAdminRoutes registers pricing config management endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin/pricing-configs")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnlyMiddleware())
		api.GET("/active", hb.Admin.GetActiveConfigHandler)
		api.GET("", hb.Admin.ListConfigsHandler)
		api.POST("", hb.Admin.CreateConfigVersionHandler)
		api.POST("/:configID/activate", hb.Admin.ActivateConfigHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm FundiHub"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterPricingRoutes(r, hb)
	RegisterMatchingRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
