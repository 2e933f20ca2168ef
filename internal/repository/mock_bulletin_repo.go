package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ricirt/aqi-bulletin/internal/domain"
)

// MockBulletinRepository is a hand-written, in-memory implementation of
// BulletinRepository used in unit tests.
type MockBulletinRepository struct {
	mu        sync.RWMutex
	summaries map[string]*domain.DailySummary // zone + "\x00" + date

	// Optional error overrides, set in tests to simulate failure paths.
	UpsertErr error
	ListErr   error
}

func NewMockBulletinRepository() *MockBulletinRepository {
	return &MockBulletinRepository{summaries: make(map[string]*domain.DailySummary)}
}

func key(zone, date string) string { return zone + "\x00" + date }

func (m *MockBulletinRepository) Upsert(_ context.Context, s *domain.DailySummary) (bool, error) {
	if m.UpsertErr != nil {
		return false, m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := cloneSummary(s)
	k := key(s.Zone, s.Date)
	if _, ok := m.summaries[k]; ok {
		now := time.Now().UTC()
		clone.UpdatedAt = &now
		m.summaries[k] = clone
		return false, nil
	}
	m.summaries[k] = clone
	return true, nil
}

func (m *MockBulletinRepository) GetByDate(_ context.Context, zone, date string) (*domain.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[key(zone, date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSummary(s), nil
}

func (m *MockBulletinRepository) Latest(_ context.Context, zone string) (*domain.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.DailySummary
	for _, s := range m.summaries {
		if s.Zone != zone {
			continue
		}
		if latest == nil || s.PublishedAt.After(latest.PublishedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return cloneSummary(latest), nil
}

func (m *MockBulletinRepository) LatestPerZone(_ context.Context) ([]*domain.DailySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byZone := make(map[string]*domain.DailySummary)
	for _, s := range m.summaries {
		if cur, ok := byZone[s.Zone]; !ok || s.PublishedAt.After(cur.PublishedAt) {
			byZone[s.Zone] = s
		}
	}
	result := make([]*domain.DailySummary, 0, len(byZone))
	for _, s := range byZone {
		result = append(result, cloneSummary(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Zone < result[j].Zone })
	return result, nil
}

func (m *MockBulletinRepository) List(_ context.Context, f domain.BulletinFilter) ([]*domain.DailySummary, int, error) {
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*domain.DailySummary
	for _, s := range m.summaries {
		if f.Zone != nil && s.Zone != *f.Zone {
			continue
		}
		matched = append(matched, cloneSummary(s))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	total := len(matched)
	start := (f.Page - 1) * f.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func cloneSummary(s *domain.DailySummary) *domain.DailySummary {
	clone := *s
	clone.Stations = append([]domain.Station(nil), s.Stations...)
	return &clone
}

// compile-time check that MockBulletinRepository implements BulletinRepository
var _ BulletinRepository = (*MockBulletinRepository)(nil)
