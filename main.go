package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caresaviour/config"
	"caresaviour/cron"
	"caresaviour/database"
	"caresaviour/database/repository"
	"caresaviour/handlers"
	"caresaviour/middleware"
	"caresaviour/realtime"
	"caresaviour/routes"
	"caresaviour/services/booking"
	"caresaviour/services/notification"
	"caresaviour/services/tasks"
	"caresaviour/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	utils.StartHealthMonitor(rootCtx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient)

	// repositories.
	bookingRepo := repository.NewMongoBookingRepo()
	vendorRepo := repository.NewMongoVendorRepo()
	notificationRepo := repository.NewMongoNotificationRepo()
	userRepo := repository.NewMongoUserRepo()

	// realtime: local hub, bridged over Redis pub/sub when it is reachable.
	hub := realtime.NewHub()
	go hub.Run(rootCtx)
	var emitter realtime.Emitter = hub
	if cache := utils.GetCacheClient(); cache != nil {
		bridge := realtime.NewRedisBridge(cache, config.AppConfig.RealtimeChannel, hub)
		go bridge.Run(rootCtx)
		emitter = bridge
	} else {
		logger.Warn("main: realtime events limited to this instance")
	}

	// push delivery.
	var pushEnqueuer notification.PushEnqueuer
	var pushWorker *asynq.Server
	var queueClient *asynq.Client
	fcmClient, err := utils.InitFCM(rootCtx)
	if err != nil {
		logger.Sugar().Errorf("main: firebase init failed, push delivery disabled: %v", err)
	}
	if fcmClient != nil {
		sender, err := notification.NewFCMPushSender(userRepo, vendorRepo, fcmClient)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to build push sender: %v", err)
		}
		queueClient = asynq.NewClient(cron.QueueRedisOpt())
		pushEnqueuer = tasks.NewAsynqPushEnqueuer(queueClient)
		pushWorker = cron.InitPushWorker(sender)
	}

	// services.
	notificationService, err := notification.NewDefaultNotificationService(notificationRepo, emitter, pushEnqueuer)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	matchingService := &booking.DefaultMatchingService{
		VendorRepo:   vendorRepo,
		RadiusMeters: config.AppConfig.DispatchRadiusMeters,
	}

	bookingService, err := booking.NewDefaultBookingService(
		bookingRepo,
		matchingService,
		notificationService,
		userRepo,
		vendorRepo,
		config.AppConfig.DispatchRadiusMeters,
		config.AppConfig.DefaultCurrency,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := &handlers.HandlerBundle{
		AuthCache:     utils.GetAuthCacheClient(),
		Booking:       handlers.NewBookingHandler(bookingService, matchingService, logger),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Realtime:      handlers.NewRealtimeHandler(hub),
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
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	// Websocket connections are hijacked and not covered by Shutdown.
	stop()
	if pushWorker != nil {
		pushWorker.Shutdown()
	}
	if queueClient != nil {
		_ = queueClient.Close()
	}
	utils.CloseRedis()
	database.CloseDB(ctx)

	logger.Sugar().Info("main: server stopped gracefully")
}
