package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gameion/internal/config"
	"gameion/internal/model"
	"gameion/internal/repository"
	"gameion/internal/service"
	"gameion/internal/store"
	"gameion/internal/transport/rest"
	"gameion/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Key-value store: Redis when configured, in-memory otherwise.
	var kv store.KV
	if cfg.RedisAddr != "" {
		addr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")
		kv = store.NewRedisKV(rdb)
	} else {
		log.Println("REDIS_ADDR not set, using in-memory store")
		kv = store.NewMemoryKV()
	}

	// Result archive: optional, only when MongoDB is configured.
	var resultRepo repository.ResultRepo
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			log.Fatal("Failed to ping MongoDB:", err)
		}
		log.Println("Connected to MongoDB")

		resultRepo = repository.NewResultRepo(mongoClient.Database(cfg.MongoDB))
	} else {
		log.Println("MONGO_URI not set, result archive disabled")
	}

	// Initialize stores
	roomStore := store.NewRoomStore(kv)
	sessionStore := store.NewSessionStore(kv)
	bowlingStore := store.NewBowlingStore(kv)

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize services
	authSvc := service.NewAuthService(cfg.HostKey, cfg.JWTSecret)
	roomSvc := service.NewRoomService(roomStore, sessionStore)
	lobbySvc := service.NewLobbyService(roomStore)
	gameSvc := service.NewGameService(roomStore)
	bowlingSvc := service.NewBowlingService(roomStore, bowlingStore, resultRepo)
	gameSvc.RegisterStarter(model.GameBowling, bowlingSvc)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	roomSvc.SetBroadcaster(wsHub)
	lobbySvc.SetBroadcaster(wsHub)
	gameSvc.SetBroadcaster(wsHub)
	bowlingSvc.SetBroadcaster(wsHub)

	// WebSocket transport
	wsRouter := ws.NewRouter(wsHub, roomSvc, lobbySvc, gameSvc, bowlingSvc)
	wsHandler := ws.NewHandler(wsHub, wsRouter, authSvc)

	// Create router with container
	container := &rest.Container{
		AuthService: authSvc,
		ResultRepo:  resultRepo,
		WSHandler:   wsHandler,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if authSvc.Enabled() {
			log.Println("Host auth: enabled")
		} else {
			log.Println("Host auth: disabled (HOST_KEY not set)")
		}
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/host")
		log.Println("  GET  /v1/rooms/{roomId}/results")
		log.Println("  GET  /health")
		log.Println("  WS   /v1/ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
