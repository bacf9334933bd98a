package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
)

// Ensure RedisStore implements ContextStore
var _ ports.ContextStore = (*RedisStore)(nil)

const (
	redisPageKeyPrefix = "botctx:page:"
	redisURLKeyPrefix  = "botctx:url:"
)

// RedisStore keeps bot contexts in Redis, one JSON document per context,
// written under both a page ID key and a webhook URL key. Suited to
// deployments where several instances share one roster.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// storedContext is the persisted form of a BotContext.
type storedContext struct {
	PageID            string `json:"page_id"`
	PageAccessToken   string `json:"page_access_token"`
	AppSecretKey      string `json:"app_secret_key"`
	VerifyToken       string `json:"verify_token"`
	WebhookURL        string `json:"webhook_url"`
	ValidateCallbacks bool   `json:"validate_callbacks"`
}

func encodeContext(bc *domain.BotContext) ([]byte, error) {
	return json.Marshal(storedContext{
		PageID:            bc.PageID(),
		PageAccessToken:   bc.PageAccessToken(),
		AppSecretKey:      bc.AppSecretKey(),
		VerifyToken:       bc.VerifyToken(),
		WebhookURL:        bc.WebhookURL(),
		ValidateCallbacks: bc.ValidatesCallbacks(),
	})
}

func decodeContext(data []byte) (*domain.BotContext, error) {
	var sc storedContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode stored context: %w", err)
	}
	return domain.NewBotContext(sc.PageID, sc.PageAccessToken, sc.AppSecretKey,
		sc.VerifyToken, sc.WebhookURL, sc.ValidateCallbacks)
}

// Add writes the context under both of its keys.
func (s *RedisStore) Add(ctx context.Context, bc *domain.BotContext) error {
	data, err := encodeContext(bc)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisPageKeyPrefix+bc.PageID(), data, 0)
	pipe.Set(ctx, redisURLKeyPrefix+bc.WebhookURL(), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("failed to store bot context",
			"page_id", bc.PageID(),
			"error", err,
		)
		return fmt.Errorf("store bot context: %w", err)
	}
	return nil
}

// Get returns the context stored under key, trying the page ID namespace
// first and the webhook URL namespace second.
func (s *RedisStore) Get(ctx context.Context, key string) (*domain.BotContext, error) {
	data, err := s.client.Get(ctx, redisPageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		data, err = s.client.Get(ctx, redisURLKeyPrefix+key).Bytes()
	}
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bot context: %w", err)
	}
	return decodeContext(data)
}

// Update replaces the context stored under key, dropping the old entries
// when the replacement carries different keys.
func (s *RedisStore) Update(ctx context.Context, key string, bc *domain.BotContext) error {
	old, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := s.removeKeys(ctx, old); err != nil {
		return err
	}
	return s.Add(ctx, bc)
}

// Remove drops the context stored under key, a no-op when absent.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	old, err := s.Get(ctx, key)
	if errors.Is(err, ports.ErrContextNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.removeKeys(ctx, old)
}

func (s *RedisStore) removeKeys(ctx context.Context, bc *domain.BotContext) error {
	if err := s.client.Del(ctx,
		redisPageKeyPrefix+bc.PageID(),
		redisURLKeyPrefix+bc.WebhookURL(),
	).Err(); err != nil {
		return fmt.Errorf("remove bot context: %w", err)
	}
	return nil
}
