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
	"github.com/stripe/stripe-go/v76"

	"github.com/srikanth-zersys/divedream-sub002/config"
	"github.com/srikanth-zersys/divedream-sub002/cron"
	"github.com/srikanth-zersys/divedream-sub002/database"
	bookingRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/booking"
	discountRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/discount"
	memberRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/member"
	productRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/product"
	quoteRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/quote"
	scheduleRepo "github.com/srikanth-zersys/divedream-sub002/database/repository/schedule"
	"github.com/srikanth-zersys/divedream-sub002/handlers"
	"github.com/srikanth-zersys/divedream-sub002/middleware"
	"github.com/srikanth-zersys/divedream-sub002/routes"
	"github.com/srikanth-zersys/divedream-sub002/services/booking"
	"github.com/srikanth-zersys/divedream-sub002/services/discount"
	"github.com/srikanth-zersys/divedream-sub002/services/notification"
	"github.com/srikanth-zersys/divedream-sub002/services/payment"
	"github.com/srikanth-zersys/divedream-sub002/services/quote"
	"github.com/srikanth-zersys/divedream-sub002/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	schedules := scheduleRepo.NewMongoScheduleRepo()
	products := productRepo.NewMongoProductRepo()
	members := memberRepo.NewMongoMemberRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	discounts := discountRepo.NewMongoDiscountRepo()
	quotes := quoteRepo.NewMongoQuoteRepo()

	// services.
	notifier := &notification.LogNotifier{Logger: logger}

	holdTTL := time.Duration(config.AppConfig.HoldTTLMinutes) * time.Minute
	capacityManager := booking.NewCapacityManager(schedules, holdTTL, logger)

	discountValidator := discount.NewValidator(discounts, schedules)

	paymentTimeout := time.Duration(config.AppConfig.PaymentTimeoutSeconds) * time.Second
	orchestrator := payment.NewOrchestrator(bookings, payment.NewStripeProvider(), notifier, paymentTimeout, logger)

	checkoutService := &booking.DefaultCheckoutService{
		Schedules: schedules,
		Products:  products,
		Members:   members,
		Bookings:  bookings,
		Capacity:  capacityManager,
		Discounts: discountValidator,
		Payments:  orchestrator,
		Notifier:  notifier,
		Logger:    logger,
	}

	lifecycleService := &booking.DefaultLifecycleService{
		Bookings:  bookings,
		Schedules: schedules,
		Capacity:  capacityManager,
		Notifier:  notifier,
		Logger:    logger,
	}

	availabilityService := &booking.DefaultAvailabilityService{
		Schedules:   schedules,
		Products:    products,
		CacheClient: utils.GetCacheClient(),
		CacheTTL:    time.Duration(config.AppConfig.AvailabilityCacheTTL) * time.Second,
		Logger:      logger,
	}

	quoteService := &quote.DefaultService{
		Quotes:   quotes,
		Capacity: capacityManager,
		Notifier: notifier,
		Logger:   logger,
	}

	// handlers.
	bookingHandler := handlers.NewBookingHandler(checkoutService, lifecycleService, availabilityService, bookings, logger)
	paymentHandler := handlers.NewPaymentHandler(orchestrator, logger)
	discountHandler := handlers.NewDiscountHandler(discountValidator)
	quoteHandler := handlers.NewQuoteHandler(quoteService)

	routes.RegisterRoutes(router, bookingHandler, paymentHandler, discountHandler, quoteHandler)

	// Background reclamation of abandoned checkout holds.
	cron.InitHoldSweepWorker(capacityManager, logger)

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
