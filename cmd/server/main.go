package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appnotification "github.com/cf1/backend/internal/application/notification"
	"github.com/cf1/backend/internal/domain/notification"
	"github.com/cf1/backend/internal/domain/shared"
	"github.com/cf1/backend/internal/infrastructure/auth"
	"github.com/cf1/backend/internal/infrastructure/cache"
	"github.com/cf1/backend/internal/infrastructure/config"
	"github.com/cf1/backend/internal/infrastructure/event"
	"github.com/cf1/backend/internal/infrastructure/logger"
	"github.com/cf1/backend/internal/infrastructure/persistence"
	"github.com/cf1/backend/internal/infrastructure/transport"
	"github.com/cf1/backend/internal/interfaces/http/handler"
	"github.com/cf1/backend/internal/interfaces/http/middleware"
	"github.com/cf1/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CF1 Notification Engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to run schema migration", zap.Error(err))
	}

	// Initialize repositories
	triggerRepo := persistence.NewGormTriggerRepository(db.DB)
	recipientRepo := persistence.NewGormRecipientRepository(db.DB)
	proposalRepo := persistence.NewGormProposalRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// The schedule and milestone stores are rebuilt from triggers at boot,
	// so they live in process memory. The delivery ledger is durable when
	// configured, otherwise it is in-memory too.
	scheduleStore := cache.NewInMemoryScheduleStore()
	milestoneStore := cache.NewInMemoryMilestoneStore()

	var ledger notification.DeliveryLedger
	if cfg.Notifier.DurableLedger {
		ledger = persistence.NewGormDeliveryRepository(db.DB)
	} else {
		ledger = cache.NewInMemoryDeliveryLedger()
	}

	// Seed the platform-default triggers on first boot
	if err := persistence.EnsurePlatformDefaults(context.Background(), triggerRepo, log); err != nil {
		log.Fatal("Failed to seed platform default triggers", zap.Error(err))
	}

	// Optional Redis for in-app live announcements and idempotency keys
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, live announcements disabled", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Scheduler events feed the dashboard activity feed; the idempotency
	// wrapper keeps outbox redelivery from duplicating feed entries.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		idempotencyStore = cache.NewRedisIdempotencyStoreWithClient(redisClient, "")
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	activityFeed := appnotification.NewActivityFeedHandler(appnotification.DefaultActivityFeedSize, log)
	eventBus.Subscribe(event.NewIdempotentHandler(activityFeed, idempotencyStore, log,
		event.WithIdempotencyMetrics(event.GlobalIdempotencyMetrics),
	))

	log.Info("Event handlers registered",
		zap.Strings("activity_feed_events", activityFeed.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// With a durable ledger the scheduler publishes through the outbox
	// table and a processor forwards entries to the bus, so events survive
	// restarts. Otherwise events go straight to the in-process bus.
	var schedulerPublisher shared.EventPublisher = eventBus
	if cfg.Notifier.DurableLedger {
		schedulerPublisher = event.NewOutboxPublisher(eventSerializer, db.DB)

		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Initialize delivery transports
	inbox := transport.NewInMemoryInbox()
	emailTransport := transport.NewSMTPTransport(transport.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	smsTransport := transport.NewSMSTransport(transport.SMSConfig{
		BaseURL:  cfg.SMS.BaseURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
		Timeout:  cfg.SMS.Timeout,
	}, log)
	inAppTransport := transport.NewInAppTransport(inbox, redisClient, log)

	transports := appnotification.NewTransportRegistry(emailTransport, inAppTransport, smsTransport)
	dispatcher := appnotification.NewDispatcher(transports, appnotification.DispatcherConfig{
		SendTimeout: cfg.Notifier.SendTimeout,
	}, log)

	// Initialize the scheduler service
	schedulerService := appnotification.NewSchedulerService(
		triggerRepo,
		scheduleStore,
		ledger,
		proposalRepo,
		recipientRepo,
		milestoneStore,
		dispatcher,
		schedulerPublisher,
		log,
		appnotification.SchedulerConfig{CheckInterval: cfg.Notifier.CheckInterval},
	)

	if cfg.Notifier.Enabled {
		if err := schedulerService.Start(context.Background()); err != nil {
			log.Fatal("Failed to start notification scheduler", zap.Error(err))
		}
		log.Info("Notification scheduler started",
			zap.Duration("check_interval", cfg.Notifier.CheckInterval),
		)
	}

	// JWT service for API authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	triggerHandler := handler.NewTriggerHandler(triggerRepo, log)
	notificationHandler := handler.NewNotificationHandler(schedulerService, triggerRepo, log)
	proposalEventHandler := handler.NewProposalEventHandler(schedulerService, log)
	inboxHandler := handler.NewInboxHandler(inbox)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Notification domain (scheduler control, delivery history, inbox)
	notificationRoutes := router.NewDomainGroup("notifications", "/notifications")
	notificationRoutes.GET("/scheduler/status", notificationHandler.SchedulerStatus)
	notificationRoutes.POST("/scheduler/start", notificationHandler.StartScheduler)
	notificationRoutes.POST("/scheduler/stop", notificationHandler.StopScheduler)
	notificationRoutes.GET("/deliveries", notificationHandler.ListDeliveries)
	notificationRoutes.POST("/deliveries/:id/resend", notificationHandler.ResendDelivery)
	notificationRoutes.POST("/test", notificationHandler.SendTest)

	inboxRoutes := notificationRoutes.Group("inbox", "/inbox")
	inboxRoutes.GET("/:recipientID", inboxHandler.ListMessages)
	inboxRoutes.GET("/:recipientID/unread", inboxHandler.UnreadCount)
	inboxRoutes.POST("/:recipientID/messages/:messageID/read", inboxHandler.MarkRead)

	// Trigger configuration
	triggerRoutes := router.NewDomainGroup("triggers", "/triggers")
	triggerRoutes.GET("", triggerHandler.ListTriggers)
	triggerRoutes.POST("", triggerHandler.CreateTrigger)
	triggerRoutes.GET("/:id", triggerHandler.GetTrigger)
	triggerRoutes.PATCH("/:id", triggerHandler.UpdateTrigger)
	triggerRoutes.DELETE("/:id", triggerHandler.DeleteTrigger)

	// Proposal lifecycle notifications from the platform
	proposalRoutes := router.NewDomainGroup("proposals", "/proposals")
	proposalRoutes.POST("/:id/events", proposalEventHandler.PostEvent)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(notificationRoutes).
		Register(triggerRoutes).
		Register(proposalRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := schedulerService.Stop(ctx); err != nil {
		log.Error("Error stopping notification scheduler", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["db_pool"] = gin.H{
				"open":   stats.OpenConnections,
				"in_use": stats.InUse,
				"idle":   stats.Idle,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
