package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nestmart/config"
	"nestmart/cron"
	"nestmart/database"
	listingRepo "nestmart/database/repository/listing"
	recordsRepo "nestmart/database/repository/records"
	"nestmart/handlers"
	"nestmart/middleware"
	"nestmart/routes"
	"nestmart/services/gateway"
	"nestmart/services/payment"
	"nestmart/services/storage"
	"nestmart/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("main: failed to build logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	db := mongoClient.Database(cfg.DatabaseName)

	redisClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// repositories.
	listings := listingRepo.NewMongoListingRepo(db, logger)
	products := recordsRepo.NewMongoDocumentRepo(db, "products")
	properties := recordsRepo.NewMongoDocumentRepo(db, listingRepo.CollectionName)
	blogs := recordsRepo.NewMongoDocumentRepo(db, "blogs")
	reviews := recordsRepo.NewMongoDocumentRepo(db, "reviews")
	users := recordsRepo.NewMongoDocumentRepo(db, "users")

	// services.
	var gw gateway.Gateway
	switch cfg.PaymentGateway {
	case "stripe":
		gw = gateway.NewStripe(cfg.StripeKey, nil)
	default:
		gw = gateway.NewSSLCommerz(cfg.StoreID, cfg.StorePassword, cfg.IsLive)
	}
	coordinator := payment.NewCoordinator(listings, gw, logger, payment.Settings{
		ServerURL: cfg.ServerURL,
		Currency:  cfg.PaymentCurrency,
	})
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	var storageSvc storage.StorageService
	if cfg.CloudinaryEnabled() {
		cld, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, logger)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		storageSvc = cld
	} else {
		logger.Warn("cloudinary credentials missing; uploads disabled")
	}

	// IPN queue and worker.
	queueOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queue := asynq.NewClient(queueOpts)
	worker := cron.NewIPNWorker(queueOpts, coordinator, logger)
	if err := worker.Start(); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	health := utils.NewHealthMonitor(mongoClient, redisClient)
	health.Start(ctx, time.Minute)

	paymentHandler := handlers.NewPaymentHandler(coordinator, queue, cfg.ClientURL)
	paymentHandler.StripeWebhookSecret = cfg.StripeWebhookSecret

	handlerBundle := &handlers.HandlerBundle{
		Tokens:     tokens,
		Auth:       handlers.NewAuthHandler(tokens),
		Payment:    paymentHandler,
		Products:   handlers.NewRecordsHandler(products),
		Properties: handlers.NewPropertiesHandler(properties),
		Blogs:      handlers.NewRecordsHandler(blogs),
		Reviews:    handlers.NewRecordsHandler(reviews),
		Users:      handlers.NewUserHandler(users),
		Stats: &handlers.StatsHandler{
			Products:   products,
			Properties: properties,
			Blogs:      blogs,
			Reviews:    reviews,
			Users:      users,
			Cache:      redisClient,
		},
		Storage: handlers.NewStorageHandler(storageSvc),
		Health:  &handlers.HealthHandler{Monitor: health},
	}

	// Create the Gin router.
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Sugar().Fatalf("main: trusted proxies: %v", err)
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.NewRateLimiter(cfg.MaxRequestsPerMin, logger).Middleware())

	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	worker.Shutdown()
	if err := queue.Close(); err != nil {
		logger.Warn("main: closing queue client", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("main: closing redis", zap.Error(err))
	}
	if err := database.Disconnect(mongoClient); err != nil {
		logger.Warn("main: closing mongo", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
