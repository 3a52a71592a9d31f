package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/ducvu/chatserver/internal/adapters/http"
	"github.com/ducvu/chatserver/internal/adapters/ws"
	"github.com/ducvu/chatserver/internal/app"
	"github.com/ducvu/chatserver/internal/auth"
	"github.com/ducvu/chatserver/internal/cache"
	"github.com/ducvu/chatserver/internal/config"
	"github.com/ducvu/chatserver/internal/core"
	"github.com/ducvu/chatserver/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	users := store.NewUsers(db)
	conversations := store.NewConversations(db)
	messages := store.NewMessages(db)

	// The broker sees conversations through the cache when redis is
	// configured, and the bare store otherwise.
	var convStore core.ConversationStore = conversations
	var convCache *cache.Conversations
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, conversation cache disabled")
		} else {
			convCache = cache.NewConversations(conversations, client, cfg.CacheTTL)
			convStore = convCache
			log.Info().Str("addr", cfg.RedisAddr).Msg("conversation cache enabled")
		}
	}

	registry := app.NewConnectionRegistry()
	broker := app.NewBroker(registry, convStore, messages, cfg.JoinTimeout)

	jwtManager := auth.NewJWTManager(cfg.Secret)
	hasher := auth.NewPasswordHasher()

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Users:         &router.UserController{Users: users, JWT: jwtManager, Hasher: hasher},
		Conversations: &router.ConversationController{Conversations: conversations, Users: users, Messages: messages, Cache: convCache},
		Gateway:       ws.NewGateway(broker, cfg),
		JWT:           jwtManager,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("chat server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
