package main

import (
	stdctx "context"
	"fmt"
	"log"
	"net/http"
	"time"

	"commons-hub/internal/config"
	"commons-hub/internal/database"
	"commons-hub/internal/engine"
	"commons-hub/internal/handlers"
	"commons-hub/internal/middleware"
	"commons-hub/internal/utils"
	"commons-hub/internal/voice"
	"commons-hub/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.SetSecret(cfg.JWTSecret)
	metrics := utils.NewMetricsCollector()

	// MongoDB is optional. Without it the actors run purely in memory,
	// which is enough for local development.
	var db *database.MongoDB
	if cfg.MongoURI != "" {
		db, err = database.NewMongoDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 30*time.Second)
		if err := db.EnsureIndexes(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure MongoDB indexes: %v", err)
		}
		cancel()
		defer func() {
			ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 10*time.Second)
			defer cancel()
			if err := db.Close(ctx); err != nil {
				log.Printf("Error closing MongoDB connection: %v", err)
			}
		}()
	} else {
		log.Println("MONGODB_URI not set, running without persistence")
	}

	// WebSocket hub for push delivery
	hub := websocket.NewHub()
	go hub.Run()

	// Actor system and engine
	system := actor.NewActorSystem()
	hubEngine := engine.NewEngine(system, db, hub, metrics, cfg.Server.RequestTimeout)

	stopSweeper := hubEngine.StartSweeper(cfg.SweepInterval)
	defer stopSweeper()

	voiceClient := voice.NewClient(cfg.Voice)
	if !voiceClient.Enabled() {
		log.Println("VOICE_SERVICE_URL not set, outbound calls disabled")
	}

	server := handlers.NewServer(system, hubEngine, metrics, db, hub, voiceClient)
	server.RequestTimeout = cfg.Server.RequestTimeout

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/auth/register", server.HandleRegister())
	mux.HandleFunc("/auth/login", server.HandleLogin())
	mux.HandleFunc("/webhook/voice", server.HandleVoiceWebhook())
	mux.HandleFunc("/ws", server.HandleWebSocket())

	// Authenticated routes
	mux.HandleFunc("/profile", server.HandleProfile())
	mux.HandleFunc("/messages", server.HandleMessages())
	mux.HandleFunc("/conversations", server.HandleStartConversation())
	mux.HandleFunc("/conversations/open", server.HandleOpenConversation())
	mux.HandleFunc("/conversations/read", server.HandleMarkConversationRead())
	mux.HandleFunc("/notifications", server.HandleNotifications())
	mux.HandleFunc("/notifications/unread", server.HandleUnreadNotificationCount())
	mux.HandleFunc("/notifications/read", server.HandleMarkNotificationRead())
	mux.HandleFunc("/notifications/delete", server.HandleDeleteNotification())
	mux.HandleFunc("/notifications/broadcast", server.HandleBroadcast())
	mux.HandleFunc("/issues", server.HandleIssues())
	mux.HandleFunc("/issues/get", server.HandleGetIssue())
	mux.HandleFunc("/issues/status", server.HandleUpdateIssueStatus())
	mux.HandleFunc("/announcements", server.HandleAnnouncements())
	mux.HandleFunc("/events", server.HandleEvents())
	mux.HandleFunc("/calls/initiate", server.HandleInitiateCall())
	mux.HandleFunc("/stats", server.HandleStats())

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(middleware.AuthMiddleware(mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
