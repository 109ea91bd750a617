package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/modernforum/forum/internal/api"
	"github.com/modernforum/forum/internal/api/middleware"
	"github.com/modernforum/forum/internal/core/service"
	mongodb "github.com/modernforum/forum/internal/infrastructure/db/mongo"
	redisdb "github.com/modernforum/forum/internal/infrastructure/db/redis"
	"github.com/modernforum/forum/internal/infrastructure/http/handlers"
	"github.com/modernforum/forum/internal/infrastructure/realtime"
	"github.com/modernforum/forum/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer disconnectMongo(mongoClient)
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer closeRedis(rdb)
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	repos := mongodb.NewRepositories(db)
	if err := repos.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not ensure indexes, continuing")
	}

	hub := realtime.NewHub(realtime.Options{
		AllowedOrigins: cfg.WebSocket.AllowedOrigins,
		RateBurst:      cfg.WebSocket.RateBurst,
		RateInterval:   cfg.WebSocket.RateInterval,
	}, logger.Component("realtime"))

	authService := service.NewAuthService(repos.Users, logger.Component("auth"))
	forumService := service.NewForumService(repos.Users, repos.Threads, repos.Posts, hub, logger.Component("forum"))
	sessions := middleware.NewSessions(
		redisdb.NewSessionStore(rdb, cfg.SessionTTL),
		cfg.SessionSecret,
		cfg.SessionTTL,
		!cfg.IsDevelopment(),
		logger.Component("session"),
	)

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Forum:    forumService,
		Sessions: sessions,
		Live:     hub,
		Checks:   []handlers.Check{handlers.MongoCheck(db), handlers.RedisCheck(rdb)},
		Log:      logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("forum listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("realtime shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
}

func closeRedis(rdb *goredis.Client) {
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}
