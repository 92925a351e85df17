package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundihub/config"
	"fundihub/cron"
	"fundihub/database"
	bookingRepoPkg "fundihub/database/repository/booking"
	matchingRepoPkg "fundihub/database/repository/matching"
	pricingRepoPkg "fundihub/database/repository/pricing"
	userRepoPkg "fundihub/database/repository/user"
	"fundihub/handlers"
	"fundihub/middleware"
	"fundihub/routes"
	"fundihub/services/booking"
	"fundihub/services/matching"
	"fundihub/services/pricing"
	"fundihub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitMatchCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	configRepo := pricingRepoPkg.NewMongoPricingConfigRepo()
	matchRepo := matchingRepoPkg.NewCachedMatchingRepo(
		matchingRepoPkg.NewMongoMatchingRepo(), utils.GetMatchCacheClient(), time.Hour)
	bookRepo := bookingRepoPkg.NewMongoBookingRepo()

	if err := userRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure user indexes: %v", err)
	}

	// services.
	resolver := &pricing.CachedConfigResolver{
		Repo:   configRepo,
		Cache:  utils.GetCacheClient(),
		TTL:    5 * time.Minute,
		Logger: logger,
	}
	pricingService := &pricing.DefaultService{
		Calc:   &pricing.Calculator{Resolver: resolver},
		Users:  userRepo,
		Logger: logger,
	}

	taskClient := cron.NewTaskClient()
	defer taskClient.Close()

	matchingService := &matching.DefaultService{
		Users:           userRepo,
		Matches:         matchRepo,
		Scorer:          &matching.Scorer{Pricing: pricingService},
		Tasks:           taskClient,
		Logger:          logger,
		DefaultRadiusKm: config.AppConfig.MatchSearchRadiusKm,
		TopN:            config.AppConfig.MatchTopN,
		MatchTTL:        time.Duration(config.AppConfig.MatchTTLMinutes) * time.Minute,
	}

	bookingService := &booking.DefaultService{
		Matches:  matchRepo,
		Bookings: bookRepo,
		Pricing:  pricingService,
		Payments: booking.NewStripePaymentHandler(logger),
		Tasks:    taskClient,
		Logger:   logger,
	}

	cron.InitWorker(matchingService, bookingService)

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Pricing:  handlers.NewPricingHandler(pricingService),
		Matching: handlers.NewMatchingHandler(matchingService, bookingService),
		Booking:  handlers.NewBookingHandler(bookingService),
		Admin:    handlers.NewAdminHandler(configRepo, resolver),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
