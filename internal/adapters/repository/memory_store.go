// Package repository implements the bot context stores: an in-process map
// for single-instance deployments and Redis and MySQL backed stores for
// setups where the roster is managed outside the process.
package repository

import (
	"context"
	"sync"

	"github.com/NinetySlide/BotForge/internal/core/domain"
	"github.com/NinetySlide/BotForge/internal/core/ports"
)

// Ensure MemoryStore implements ContextStore
var _ ports.ContextStore = (*MemoryStore)(nil)

// MemoryStore keeps bot contexts in two in-process maps, one per lookup key.
// Both maps point at the same *BotContext, so an entry is always reachable
// under its page ID and its webhook URL.
type MemoryStore struct {
	mu           sync.RWMutex
	byPageID     map[string]*domain.BotContext
	byWebhookURL map[string]*domain.BotContext
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byPageID:     make(map[string]*domain.BotContext),
		byWebhookURL: make(map[string]*domain.BotContext),
	}
}

// Add registers the context under its page ID and webhook URL. Adding a
// context whose keys are already taken overwrites the previous entry.
func (s *MemoryStore) Add(_ context.Context, bc *domain.BotContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPageID[bc.PageID()] = bc
	s.byWebhookURL[bc.WebhookURL()] = bc
	return nil
}

// Get returns the context registered under key, trying page IDs first and
// webhook URLs second.
func (s *MemoryStore) Get(_ context.Context, key string) (*domain.BotContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if bc, ok := s.byPageID[key]; ok {
		return bc, nil
	}
	if bc, ok := s.byWebhookURL[key]; ok {
		return bc, nil
	}
	return nil, ports.ErrContextNotFound
}

// Update replaces the context registered under key. The old entry is dropped
// from both maps before the new one is registered, so stale keys do not
// linger when the replacement carries different identifiers.
func (s *MemoryStore) Update(_ context.Context, key string, bc *domain.BotContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byPageID[key]
	if !ok {
		old, ok = s.byWebhookURL[key]
	}
	if !ok {
		return ports.ErrContextNotFound
	}

	delete(s.byPageID, old.PageID())
	delete(s.byWebhookURL, old.WebhookURL())
	s.byPageID[bc.PageID()] = bc
	s.byWebhookURL[bc.WebhookURL()] = bc
	return nil
}

// Remove drops the context registered under key from both maps. Removing an
// absent key is a no-op.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byPageID[key]
	if !ok {
		old, ok = s.byWebhookURL[key]
	}
	if !ok {
		return nil
	}

	delete(s.byPageID, old.PageID())
	delete(s.byWebhookURL, old.WebhookURL())
	return nil
}
