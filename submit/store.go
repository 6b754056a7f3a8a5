package submit

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type MemoryTripStore struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

func NewMemoryTripStore() *MemoryTripStore {
	return &MemoryTripStore{trips: map[string]*Trip{}}
}

func (m *MemoryTripStore) Save(ctx context.Context, trip *Trip) error {
	if trip.ID == "" {
		return fmt.Errorf("trip id is required")
	}
	cp := *trip
	cp.FormData = trip.FormData.Clone()
	m.mu.Lock()
	m.trips[trip.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryTripStore) Get(ctx context.Context, id string) (*Trip, error) {
	m.mu.RLock()
	trip, ok := m.trips[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTripNotFound, id)
	}
	cp := *trip
	cp.FormData = trip.FormData.Clone()
	return &cp, nil
}

// List returns the newest trips first. An empty status matches all.
func (m *MemoryTripStore) List(ctx context.Context, status Status, limit int) ([]*Trip, error) {
	m.mu.RLock()
	out := make([]*Trip, 0, len(m.trips))
	for _, trip := range m.trips {
		if status == "" || trip.Status == status {
			cp := *trip
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
