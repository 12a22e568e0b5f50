package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/ai-chat-agent/conversation/api"
	"github.com/ai-chat-agent/conversation/assistant"
	"github.com/ai-chat-agent/conversation/config"
	"github.com/ai-chat-agent/conversation/postgres"
	"github.com/ai-chat-agent/conversation/redis"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file loaded", "error", err.Error())
	}
	cfg, err := config.LoadServer()
	if err != nil {
		logger.Error("Could not load configuration", "error", err.Error())
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.Addr, "HTTP network address")
	connStr := flag.String("connection-string", cfg.DatabaseURL, "Postgres connection string")
	redisAddr := flag.String("redis-address", cfg.RedisAddr, "Redis endpoint")
	origins := flag.String("cors-origins", strings.Join(cfg.CORSOrigins, ","), "Comma separated list of allowed CORS origins")
	flag.Parse()

	pg, err := postgres.Connect(ctx, *connStr)
	if err != nil {
		logger.Error("Could not connect to PostgreSQL", "error", err.Error())
		os.Exit(1)
	}
	defer pg.Close()
	if err := pg.CreateSchema(ctx); err != nil {
		logger.Error("Could not create schema", "error", err.Error())
		os.Exit(1)
	}

	redis, err := redis.Connect(ctx, *redisAddr)
	if err != nil {
		logger.Error("Could not connect to Redis", "error", err.Error())
		os.Exit(1)
	}
	defer redis.Close()

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Error("Could not listen", "error", err)
		os.Exit(1)
	}

	api := &api.API{
		Logger:         logger,
		DB:             pg,
		Cache:          redis,
		AllowedOrigins: strings.Split(*origins, ","),
	}
	if cfg.LLMAPIKey != "" {
		api.Assistant = assistant.New(assistant.Options{
			APIKey:       cfg.LLMAPIKey,
			BaseURL:      cfg.LLMBaseURL,
			Model:        cfg.LLMModel,
			HistoryLimit: cfg.LLMHistoryLimit,
			Timeout:      cfg.LLMTimeout,
			Logger:       logger,
		})
		logger.Info("Assistant replies enabled", "model", cfg.LLMModel)
	}

	srv := &http.Server{
		Handler: api,
	}

	go func() {
		<-ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	logger.Info("Ready to accept traffic", "address", *addr)
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		logger.Error("Could not start server", "error", err)
		os.Exit(1)
	}
}
