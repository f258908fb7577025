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

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/config"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/database"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/handlers"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/middleware"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/repository"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/router"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/services"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/websocket"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/worker"
)

func main() {
	log.Println("Starting AskMyNote backend...")

	cfg := config.Load()
	log.Println("Environment variables loaded")

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("PostgreSQL connected")

	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("Redis connected")

	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	log.Println("Database migrations applied")

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	subjectRepo := repository.NewSubjectRepo(pool)
	fileRepo := repository.NewFileRepo(pool)
	chunkRepo := repository.NewChunkRepo(pool)
	reviewRepo := repository.NewReviewRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// Services
	geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	if geminiService.Enabled() {
		log.Println("Gemini client initialized")
	} else {
		log.Println("No Gemini API key: running in demo mode with local embeddings")
	}

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	youtubeService := services.NewYouTubeService()
	fileExtractService := services.NewFileExtractService()
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)

	gateCfg := retrieval.GateConfig{
		Threshold: cfg.RetrievalThreshold,
		MinChunks: cfg.RetrievalMinChunks,
	}
	retrievalService := services.NewRetrievalService(chunkRepo, geminiService, gateCfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	subjectHandler := handlers.NewSubjectHandler(subjectRepo)
	fileHandler := handlers.NewFileHandler(subjectRepo, fileRepo, chunkRepo, jobRepo, fileExtractService, redisClients.Queue, cfg.StoragePath)
	chatHandler := handlers.NewChatHandler(subjectRepo, retrievalService, geminiService, gateCfg)
	studyHandler := handlers.NewStudyHandler(subjectRepo, retrievalService, geminiService)
	aiLabHandler := handlers.NewAiLabHandler(subjectRepo, retrievalService, retrievalService, geminiService, gateCfg)
	boostHandler := handlers.NewBoostHandler(subjectRepo, retrievalService, geminiService, gateCfg)
	reviewHandler := handlers.NewReviewHandler(subjectRepo, reviewRepo, retrievalService)

	// Ingestion workers
	workerPool := worker.NewPool(
		redisClients.Queue,
		geminiService,
		youtubeService,
		fileExtractService,
		jobRepo,
		fileRepo,
		chunkRepo,
		5,
	)
	workerPool.Start()
	log.Println("Worker pool started (5 goroutines)")

	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("WebSocket hub started")

	r := router.New(
		jwtAuth,
		authHandler,
		subjectHandler,
		fileHandler,
		chatHandler,
		studyHandler,
		aiLabHandler,
		boostHandler,
		reviewHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("AskMyNote backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
