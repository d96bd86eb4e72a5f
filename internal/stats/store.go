// Package stats persists the numbers that outlive a session: best streak and lifetime
// baskets per player, and an optional log of every attempt.
package stats

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("stats: player not found")

// Record is what a player keeps between sessions.
type Record struct {
	Best     int `json:"best" redis:"best"`
	Lifetime int `json:"lifetime" redis:"lifetime"`
}

type Store interface {
	// Load returns ErrNotFound for a player with no saved record.
	Load(ctx context.Context, player string) (Record, error)
	Save(ctx context.Context, player string, r Record) error
	Reset(ctx context.Context, player string) error
}

// MemoryStore keeps records for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Load(_ context.Context, player string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[player]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) Save(_ context.Context, player string, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[player] = r
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, player string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, player)
	return nil
}

// LoadOrZero is Load with ErrNotFound mapped to an empty record.
func LoadOrZero(ctx context.Context, s Store, player string) (Record, error) {
	r, err := s.Load(ctx, player)
	if errors.Is(err, ErrNotFound) {
		return Record{}, nil
	}
	return r, err
}
