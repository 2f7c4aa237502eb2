package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chatterbox/backend/internal/api/handler"
	"chatterbox/backend/internal/cache"
	"chatterbox/backend/internal/chat"
	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/notify"
	"chatterbox/backend/internal/realtime"
	"chatterbox/backend/internal/storage"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := config.Getenv("DATABASE_DSN",
		"host=localhost user=user password=password dbname=chatterbox port=5432 sslmode=disable")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	opts, err := redis.ParseURL(config.Getenv("REDIS_URL", "redis://localhost:6379/0"))
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MessageReceipt{},
		&models.MessageReaction{},
		&models.Attachment{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Chatterbox Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, rdb := setupDependencies()

	store := storage.NewService(db)
	messageCache := cache.NewMessageCache(cache.NewStore(rdb, config.KeyPrefix), config.CacheTTL())
	publisher := realtime.NewPublisher(rdb)
	chatService := chat.NewService(store, messageCache, publisher)

	hub := realtime.NewHub(rdb)
	go hub.Run()

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		notifier, err := notify.New(token, rdb, store)
		if err != nil {
			log.Fatalf("Failed to start Telegram notifier: %v", err)
		}
		go notifier.Run(context.Background())
	}

	r := gin.Default()
	h := handler.NewHandler(chatService, store, hub, []byte(jwtSecret))

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	authed := r.Group("/", h.AuthRequired())
	authed.GET("/auth/me", h.Me)
	authed.POST("/conversations", h.CreateConversation)
	authed.GET("/conversations/:id/messages", h.GetConversationMessages)
	authed.POST("/messages", h.SendMessage)
	authed.POST("/messages/read", h.MarkMessagesRead)
	authed.GET("/messages/unread/count", h.GetUnreadCount)
	authed.GET("/hub", h.ServeSSE)
	authed.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           config.Getenv("LISTEN_ADDR", ":8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // streaming endpoints hold the response open
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
