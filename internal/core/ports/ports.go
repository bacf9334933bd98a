// Package ports defines the interfaces between the core and its external
// collaborators. The core depends on these contracts only; the adapters
// implement them.
package ports

import (
	"context"
	"errors"
	"net/http"

	"github.com/NinetySlide/BotForge/internal/core/domain"
)

// ErrContextNotFound is returned by ContextStore lookups when no bot context
// is registered under the given key.
var ErrContextNotFound = errors.New("bot context not found")

// ContextStore is the process-wide registry mapping external identifiers to
// bot contexts. A context is reachable under both its page ID and its webhook
// URL. Implementations must support safe concurrent reads (one lookup per
// in-flight request) and occasional concurrent writes.
type ContextStore interface {
	// Add registers a context under both of its keys.
	Add(ctx context.Context, bc *domain.BotContext) error

	// Get returns the context registered under key (page ID or webhook
	// URL), or ErrContextNotFound.
	Get(ctx context.Context, key string) (*domain.BotContext, error)

	// Update replaces the context registered under key. If the new context
	// carries different keys, the old entries are dropped.
	Update(ctx context.Context, key string, bc *domain.BotContext) error

	// Remove drops the context registered under key, a no-op when absent.
	Remove(ctx context.Context, key string) error
}

// HTTPTransport executes one outbound HTTP request. Timeout and connection
// policy are the transport's responsibility; the send gateway treats any
// returned error as a network failure. *http.Client satisfies this.
type HTTPTransport interface {
	Do(req *http.Request) (*http.Response, error)
}
