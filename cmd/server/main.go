package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmahub-service/config"
	"pharmahub-service/internal/api"
	"pharmahub-service/internal/auth"
	"pharmahub-service/internal/broker"
	"pharmahub-service/internal/payment"
	"pharmahub-service/internal/redisclient"
	"pharmahub-service/internal/service"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"
	"pharmahub-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting PharmaHub service", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint, cfg.Server.Env)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(context.Background(), cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayment)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	if cfg.Stripe.SecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is not set; payment intents will fail")
	}
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey)

	var tx service.Transactor
	if cfg.Mongo.Transactions {
		tx = db
	}

	tokens := auth.NewManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	roleResolver := service.NewRoleResolver(db)
	paymentService := service.NewPaymentService(db, db, tx, redisClient, eventPublisher, gateway, service.PaymentOptions{
		Currency:       cfg.Stripe.Currency,
		LockTTL:        cfg.Business.CheckoutLockTTL,
		IdempotencyTTL: cfg.Business.IdempotencyTTL,
		Transactional:  cfg.Mongo.Transactions,
	})
	cartReconciler := service.NewCartReconciler(db, db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	cleanupConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPayment, cfg.Kafka.ConsumerGroup)
	cleanupWorker := worker.NewCartCleanupWorker(cleanupConsumer, cartReconciler)
	go func() {
		if err := cleanupWorker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Cart cleanup worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	handler := api.NewHandler(api.Services{
		Tokens:         tokens,
		Roles:          roleResolver,
		Users:          service.NewUserService(db),
		Medicines:      service.NewMedicineService(db),
		Carts:          service.NewCartService(db, db),
		Payments:       paymentService,
		Dashboard:      service.NewDashboardService(db),
		Advertisements: service.NewAdvertisementService(db, db),
	},
		api.ReadinessCheck{Name: "mongodb", Ping: db.Ping},
		api.ReadinessCheck{Name: "redis", Ping: redisClient.Ping},
	)
	handler.SetupRoutes(router, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if err := cleanupWorker.Stop(); err != nil {
		log.Printf("Error stopping cart cleanup worker: %v", err)
	}

	log.Println("Server exited")
}
