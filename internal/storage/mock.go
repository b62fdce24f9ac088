package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/guildforge/engine/pkg/guild"
)

// MockStorage is an in-memory implementation of Storage for testing.
// Documents are round-tripped through JSON on save and load so tests
// exercise the same serialization path as the Redis store.
type MockStorage struct {
	mu        sync.RWMutex
	guilds    map[string][]byte
	backups   map[string][]byte
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		guilds:  make(map[string][]byte),
		backups: make(map[string][]byte),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) LoadGuild(ctx context.Context, guildID string) (*guild.Record, error) {
	m.mu.RLock()
	data, ok := m.guilds[guildID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var rec guild.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guild: %w", err)
	}
	rec.Normalize()
	return &rec, nil
}

func (m *MockStorage) SaveGuild(ctx context.Context, rec *guild.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal guild: %w", err)
	}
	m.guilds[rec.ID] = data
	return nil
}

func (m *MockStorage) DeleteGuild(ctx context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guilds, guildID)
	return nil
}

func (m *MockStorage) ListGuildIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.guilds))
	for id := range m.guilds {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MockStorage) BackupGuildRaw(ctx context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.guilds[guildID]
	if !ok {
		return fmt.Errorf("no stored document for guild %s", guildID)
	}
	m.backups[guildID] = append([]byte(nil), data...)
	return nil
}
