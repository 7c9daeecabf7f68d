// Package testhelpers provides shared test utilities for the classifier
// service.
package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/pubdash/classifier/internal/database"
	"github.com/pubdash/classifier/internal/domain"
)

// MockRuleStore implements the API's RuleStore on an in-memory map.
type MockRuleStore struct {
	mu     sync.RWMutex
	nextID int
	rules  map[int]domain.PatternRule
}

// NewMockRuleStore creates an empty in-memory rule store.
func NewMockRuleStore() *MockRuleStore {
	return &MockRuleStore{nextID: 1, rules: make(map[int]domain.PatternRule)}
}

// Seed loads rules directly, assigning ids (for test setup).
func (m *MockRuleStore) Seed(rules ...domain.PatternRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rule := range rules {
		rule.ID = m.nextID
		m.nextID++
		m.rules[rule.ID] = rule
	}
}

// Create inserts a rule and assigns its id.
func (m *MockRuleStore) Create(_ context.Context, rule *domain.PatternRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rule.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	m.rules[rule.ID] = *rule
	return nil
}

// GetByID retrieves a rule.
func (m *MockRuleStore) GetByID(_ context.Context, id int) (*domain.PatternRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rule, ok := m.rules[id]
	if !ok {
		return nil, database.ErrRuleNotFound
	}
	return &rule, nil
}

// List retrieves rules in id order with optional filters.
func (m *MockRuleStore) List(_ context.Context, tier domain.Tier, enabled *bool) ([]domain.PatternRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.PatternRule, 0, len(m.rules))
	for id := 1; id < m.nextID; id++ {
		rule, ok := m.rules[id]
		if !ok {
			continue
		}
		if tier != "" && rule.Tier != tier {
			continue
		}
		if enabled != nil && rule.Enabled != *enabled {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

// Update rewrites a stored rule.
func (m *MockRuleStore) Update(_ context.Context, rule *domain.PatternRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return database.ErrRuleNotFound
	}
	rule.UpdatedAt = time.Now().UTC()
	m.rules[rule.ID] = *rule
	return nil
}

// Delete removes a rule.
func (m *MockRuleStore) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return database.ErrRuleNotFound
	}
	delete(m.rules, id)
	return nil
}

// MockAuditLog implements the API's AuditLog in memory.
type MockAuditLog struct {
	mu      sync.Mutex
	Batches [][]domain.LabeledRecord
}

// NewMockAuditLog creates an empty audit log.
func NewMockAuditLog() *MockAuditLog {
	return &MockAuditLog{}
}

// RecordBatch appends a labeled batch.
func (m *MockAuditLog) RecordBatch(_ context.Context, labeled []domain.LabeledRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches = append(m.Batches, labeled)
	return nil
}

// CountsSince aggregates all recorded batches, ignoring the window.
func (m *MockAuditLog) CountsSince(_ context.Context, _ time.Time) (map[domain.Category]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[domain.Category]int)
	for _, batch := range m.Batches {
		for _, l := range batch {
			counts[l.Category]++
		}
	}
	return counts, nil
}
