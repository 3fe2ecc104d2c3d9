package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acai-store/cache"
	"acai-store/config"
	"acai-store/consumers"
	"acai-store/controllers"
	"acai-store/database"
	"acai-store/drafts"
	"acai-store/notify"
	"acai-store/rabbitmq"
	"acai-store/services"
	"acai-store/store"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()

	// Database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	st := store.New(db)
	defer st.Close()

	// Redis
	ctx := context.Background()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Printf("Redis ping succeeded")

	// RabbitMQ
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()
	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	whatsapp := notify.NewWhatsAppSender(cfg.ShopWhatsAppPhone, nil)
	if err := consumers.NewNotificationConsumer(whatsapp, st).Start(rmq, cfg); err != nil {
		log.Fatalf("Failed to start notification consumer: %v", err)
	}

	catalog := services.NewCatalogService(st, cache.NewRedisCache(redisClient, cfg.CatalogTTL, cfg.CategoryTTL))
	checkout := services.NewCheckoutService(st, rmq, whatsapp, cfg.PendingReminderDelay)
	orders := services.NewOrderService(st, rmq)
	draftService := services.NewDraftService(catalog, drafts.NewRedisStore(redisClient, cfg.DraftTTL))

	router := controllers.NewRouter(controllers.Handlers{
		Catalog:      controllers.NewCatalogController(catalog),
		Orders:       controllers.NewOrderController(checkout, whatsapp),
		Drafts:       controllers.NewDraftController(draftService),
		Auth:         controllers.NewAuthController(st, cfg.JWTSecret, cfg.JWTTTL),
		AdminCatalog: controllers.NewAdminCatalogController(st, catalog),
		AdminOrders:  controllers.NewAdminOrderController(st, orders),
		DB:           st,
		JWTSecret:    cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Acai store starting on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down acai store...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Acai store stopped")
}
