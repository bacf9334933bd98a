package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
)

func newContext(t *testing.T, pageID, webhookURL string) *domain.BotContext {
	t.Helper()
	bc, err := domain.NewBotContext(pageID, "token", "secret", "verify", webhookURL, true)
	require.NoError(t, err)
	return bc
}

func TestMemoryStore_DualKeyLookup(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	bc := newContext(t, "page-1", "https://bots.example.com/webhook/shop")

	require.NoError(t, store.Add(ctx, bc))

	byPage, err := store.Get(ctx, "page-1")
	require.NoError(t, err)
	assert.Same(t, bc, byPage)

	byURL, err := store.Get(ctx, "https://bots.example.com/webhook/shop")
	require.NoError(t, err)
	assert.Same(t, bc, byURL)

	_, err = store.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ports.ErrContextNotFound)
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	old := newContext(t, "page-1", "https://bots.example.com/webhook/old")
	require.NoError(t, store.Add(ctx, old))

	// The replacement carries different keys; the old ones must go away.
	replacement := newContext(t, "page-2", "https://bots.example.com/webhook/new")
	require.NoError(t, store.Update(ctx, "page-1", replacement))

	_, err := store.Get(ctx, "page-1")
	assert.ErrorIs(t, err, ports.ErrContextNotFound)
	_, err = store.Get(ctx, "https://bots.example.com/webhook/old")
	assert.ErrorIs(t, err, ports.ErrContextNotFound)

	got, err := store.Get(ctx, "page-2")
	require.NoError(t, err)
	assert.Same(t, replacement, got)

	// Updating an absent key fails.
	err = store.Update(ctx, "unknown", replacement)
	assert.ErrorIs(t, err, ports.ErrContextNotFound)
}

func TestMemoryStore_Remove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	bc := newContext(t, "page-1", "https://bots.example.com/webhook/shop")

	require.NoError(t, store.Add(ctx, bc))
	require.NoError(t, store.Remove(ctx, "https://bots.example.com/webhook/shop"))

	_, err := store.Get(ctx, "page-1")
	assert.ErrorIs(t, err, ports.ErrContextNotFound)

	// Removing again is a no-op.
	assert.NoError(t, store.Remove(ctx, "page-1"))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			pageID := fmt.Sprintf("page-%d", n)
			url := fmt.Sprintf("https://bots.example.com/webhook/%d", n)
			bc := newContext(t, pageID, url)

			require.NoError(t, store.Add(ctx, bc))
			for j := 0; j < 100; j++ {
				got, err := store.Get(ctx, pageID)
				assert.NoError(t, err)
				assert.Same(t, bc, got)
			}
		}(i)
	}
	wg.Wait()
}
