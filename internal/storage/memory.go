package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"PortfolioTracker/internal/model"
)

// MemoryStore keeps everything in process. Used for tests and ephemeral runs.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	positions []model.Position
	quotes    map[string]model.PriceQuote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, quotes: make(map[string]model.PriceQuote)}
}

func (m *MemoryStore) AddPosition(_ context.Context, p model.Position) (model.Position, error) {
	p, err := prepare(p)
	if err != nil {
		return model.Position{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	m.positions = append(m.positions, p)
	return p, nil
}

func (m *MemoryStore) ImportPositions(_ context.Context, ps []model.Position) (int, error) {
	rows, err := prepareAll(ps)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range rows {
		p.ID = m.nextID
		m.nextID++
		m.positions = append(m.positions, p)
	}
	return len(rows), nil
}

func (m *MemoryStore) ListPositions(_ context.Context) ([]model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Position, len(m.positions))
	copy(out, m.positions)
	return out, nil
}

func (m *MemoryStore) DeletePosition(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.positions {
		if p.ID == id {
			m.positions = append(m.positions[:i], m.positions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (m *MemoryStore) LoadQuotes(_ context.Context) ([]model.PriceQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PriceQuote, 0, len(m.quotes))
	for _, q := range m.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *MemoryStore) SaveQuotes(_ context.Context, quotes []model.PriceQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range quotes {
		m.quotes[q.Symbol] = q
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
