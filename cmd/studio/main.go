package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creative-studio/internal/api"
	"creative-studio/internal/config"
	"creative-studio/internal/database"
	"creative-studio/internal/llm"
	"creative-studio/internal/messaging"
	"creative-studio/internal/session"
	"creative-studio/internal/usage"
)

const (
	expiryInterval = time.Minute
	// Leaves room for the provider call to time out and be reported as a failure.
	requestTimeoutMargin = 10 * time.Second
)

func createQueue(rabbitMQURL string) (messaging.Publisher, messaging.Reciever) {
	if rabbitMQURL == "" {
		slog.Info("RABBITMQ_URL not set, using in-memory usage queue")
		queue := messaging.NewInMemoryQueue()
		return queue, queue
	}

	publisher, err := messaging.NewRabbitMQPublisher(rabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to create rabbitmq publisher: %v", err)
	}

	reciever, err := messaging.NewRabbitMQReceiver(rabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to create rabbitmq receiver: %v", err)
	}

	return publisher, reciever
}

func main() {
	config.LoadEnvFile()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	slog.Info("starting creative studio", "port", cfg.Port, "llm_backend", cfg.LLMBackend, "provider_timeout", cfg.ProviderTimeout, "max_sessions", cfg.MaxSessions)

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}

	publisher, reciever := createQueue(cfg.RabbitMQURL)

	factory, err := llm.NewFactory(cfg.LLMBackend, cfg.OpenAIBaseURL)
	if err != nil {
		log.Fatalf("Failed to create llm factory: %v", err)
	}

	sessions := session.NewCache(cfg.MaxSessions, session.Options{
		Factory:         factory,
		ProviderTimeout: cfg.ProviderTimeout,
		Observer:        usage.NewRecorder(publisher),
	})

	processor := usage.NewProcessor(db, reciever)
	processorDone := make(chan struct{})
	go func() {
		defer close(processorDone)
		processor.Start()
	}()

	expiryCtx, stopExpiry := context.WithCancel(context.Background())
	go sessions.RunExpiry(expiryCtx, expiryInterval, cfg.SessionIdleTTL)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: api.NewRouter(api.NewStudioService(db, sessions), cfg.AllowedOrigins, cfg.ProviderTimeout+requestTimeoutMargin),
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		stopExpiry()
		publisher.Close()
		processor.Stop()
		<-processorDone
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}
	<-stopped

	slog.Info("server stopped")
}
