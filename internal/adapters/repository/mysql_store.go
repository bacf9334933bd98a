package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
)

// Ensure MySQLStore implements ContextStore
var _ ports.ContextStore = (*MySQLStore)(nil)

// MySQLStore keeps bot contexts in a MySQL table, for deployments where the
// roster is edited outside the process and must survive restarts.
//
// Expected schema:
//
//	CREATE TABLE bot_contexts (
//	    page_id            VARCHAR(64)  NOT NULL PRIMARY KEY,
//	    access_token       VARCHAR(512) NOT NULL,
//	    app_secret         VARCHAR(128) NOT NULL,
//	    verify_token       VARCHAR(128) NOT NULL,
//	    webhook_url        VARCHAR(512) NOT NULL,
//	    validate_callbacks TINYINT(1)   NOT NULL DEFAULT 1,
//	    UNIQUE KEY idx_webhook_url (webhook_url)
//	);
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a store backed by the given database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Add inserts the context, overwriting a row with the same page ID.
func (s *MySQLStore) Add(ctx context.Context, bc *domain.BotContext) error {
	query := `
		INSERT INTO bot_contexts
			(page_id, access_token, app_secret, verify_token, webhook_url, validate_callbacks)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			access_token = VALUES(access_token),
			app_secret = VALUES(app_secret),
			verify_token = VALUES(verify_token),
			webhook_url = VALUES(webhook_url),
			validate_callbacks = VALUES(validate_callbacks)`

	_, err := s.db.ExecContext(ctx, query,
		bc.PageID(), bc.PageAccessToken(), bc.AppSecretKey(),
		bc.VerifyToken(), bc.WebhookURL(), bc.ValidatesCallbacks())
	if err != nil {
		slog.Error("failed to insert bot context",
			"page_id", bc.PageID(),
			"error", err,
		)
		return fmt.Errorf("insert bot context: %w", err)
	}
	return nil
}

// Get returns the context whose page ID or webhook URL matches key.
func (s *MySQLStore) Get(ctx context.Context, key string) (*domain.BotContext, error) {
	query := `
		SELECT page_id, access_token, app_secret, verify_token, webhook_url, validate_callbacks
		FROM bot_contexts
		WHERE page_id = ? OR webhook_url = ?
		LIMIT 1`

	var (
		pageID, accessToken, appSecret string
		verifyToken, webhookURL        string
		validateCallbacks              bool
	)
	err := s.db.QueryRowContext(ctx, query, key, key).Scan(
		&pageID, &accessToken, &appSecret, &verifyToken, &webhookURL, &validateCallbacks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrContextNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bot context: %w", err)
	}

	return domain.NewBotContext(pageID, accessToken, appSecret, verifyToken, webhookURL, validateCallbacks)
}

// Update replaces the row matching key with the given context.
func (s *MySQLStore) Update(ctx context.Context, key string, bc *domain.BotContext) error {
	query := `
		UPDATE bot_contexts
		SET page_id = ?, access_token = ?, app_secret = ?,
		    verify_token = ?, webhook_url = ?, validate_callbacks = ?
		WHERE page_id = ? OR webhook_url = ?`

	res, err := s.db.ExecContext(ctx, query,
		bc.PageID(), bc.PageAccessToken(), bc.AppSecretKey(),
		bc.VerifyToken(), bc.WebhookURL(), bc.ValidatesCallbacks(),
		key, key)
	if err != nil {
		return fmt.Errorf("update bot context: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.ErrContextNotFound
	}
	return nil
}

// Remove deletes the row matching key, a no-op when absent.
func (s *MySQLStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bot_contexts WHERE page_id = ? OR webhook_url = ?`, key, key)
	if err != nil {
		return fmt.Errorf("remove bot context: %w", err)
	}
	return nil
}
