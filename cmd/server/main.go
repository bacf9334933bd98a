// Package main runs a standalone webhook server hosting the bots listed in
// the roster file. It is also the reference wiring for embedding the
// library: store, dispatcher, gateway, HTTP handlers.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/NinetySlide/BotForge/internal/adapters/gateway"
	"github.com/NinetySlide/BotForge/internal/adapters/handler"
	"github.com/NinetySlide/BotForge/internal/adapters/repository"
	"github.com/NinetySlide/BotForge/internal/config"
	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
	"github.com/NinetySlide/BotForge/internal/core/services"
)

const version = "1.0.0"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		slog.Error("failed to initialize context store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx := context.Background()
	bots, err := config.LoadBots(cfg.App.BotsFile)
	if err != nil {
		slog.Error("failed to load bot roster", "file", cfg.App.BotsFile, "error", err)
		os.Exit(1)
	}
	for _, bc := range bots {
		if err := store.Add(ctx, bc); err != nil {
			slog.Error("failed to register bot", "page_id", bc.PageID(), "error", err)
			os.Exit(1)
		}
		slog.Info("bot registered", "page_id", bc.PageID(), "webhook_url", bc.WebhookURL())
	}

	sender := gateway.NewSendGateway()
	dispatcher := services.NewDispatcher(store, echoHandlers(sender))

	mux := http.NewServeMux()
	mux.Handle("/webhook/", handler.NewWebhookHandler(dispatcher))
	mux.Handle("/status", handler.NewStatusHandler(version))

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("server listening", "addr", addr, "bots", len(bots), "store", cfg.App.StoreBackend)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

// echoHandlers wires a minimal demo bot: mark incoming messages as seen and
// echo their text back.
func echoHandlers(sender *gateway.SendGateway) services.Handlers {
	return services.Handlers{
		OnMessage: func(bc *domain.BotContext, msg domain.ReceivedMessage) {
			ctx := context.Background()
			sender.SendAction(ctx, bc, msg.Sender(), domain.ActionMarkSeen)

			text, ok := msg.(*domain.TextMessage)
			if !ok {
				return
			}
			if res, err := sender.SendText(ctx, bc, text.SenderID, text.Text); err != nil {
				slog.Error("echo reply rejected", "error", err)
			} else if !res.OK() {
				slog.Warn("echo reply failed",
					"status", res.Status,
					"error_code", res.Error.Code,
				)
			}
		},
		OnPostback: func(bc *domain.BotContext, pb *domain.Postback) {
			slog.Info("postback received", "page_id", bc.PageID(), "payload", pb.Payload)
		},
	}
}

// buildStore creates the context store selected by STORE_BACKEND and returns
// a cleanup function for its connections.
func buildStore(cfg *config.Config) (ports.ContextStore, func(), error) {
	switch cfg.App.StoreBackend {
	case config.StoreMemory:
		return repository.NewMemoryStore(), func() {}, nil

	case config.StoreRedis:
		rdb, err := connectRedis(cfg.Redis, 5, 2*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(rdb), func() { rdb.Close() }, nil

	case config.StoreMySQL:
		db, err := connectMySQL(cfg.DB, 5, 2*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMySQLStore(db), func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.App.StoreBackend)
}

// connectMySQL opens the database and pings it until it answers. Retries
// cover the window where a containerized database is still starting.
func connectMySQL(cfg config.DBConfig, maxRetries int, retryDelay time.Duration) (*sql.DB, error) {
	var err error
	for i := 1; i <= maxRetries; i++ {
		var db *sql.DB
		db, err = sql.Open("mysql", cfg.GetDSN())
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			db.Close()
		}
		slog.Warn("mysql not reachable yet",
			"attempt", i,
			"max_retries", maxRetries,
			"error", err,
		)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("connect mysql after %d attempts: %w", maxRetries, err)
}

// connectRedis pings the Redis server until it answers.
func connectRedis(cfg config.RedisConfig, maxRetries int, retryDelay time.Duration) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr})

	ctx := context.Background()
	var err error
	for i := 1; i <= maxRetries; i++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			return rdb, nil
		}
		slog.Warn("redis not reachable yet",
			"attempt", i,
			"max_retries", maxRetries,
			"error", err,
		)
		if i < maxRetries {
			time.Sleep(retryDelay)
		}
	}
	rdb.Close()
	return nil, fmt.Errorf("connect redis after %d attempts: %w", maxRetries, err)
}
