package store

import (
	"context"
	"slices"
	"sync"
)

// Memory is a session-scoped backend that never fails. It serves as the
// mirror behind Fallback and as a standalone store in tests.
type Memory struct {
	mu      sync.Mutex
	choices []Choice
	params  *LifeParameters
	nextID  int64
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// AppendChoice stores c under a freshly generated id.
func (m *Memory) AppendChoice(_ context.Context, c Choice) (Choice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = m.nextID
	m.nextID++
	m.choices = append(m.choices, c)
	return c, nil
}

// LoadChoices returns a copy of the choice log.
func (m *Memory) LoadChoices(_ context.Context) ([]Choice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.choices), nil
}

// ClearChoices empties the log. Ids keep increasing.
func (m *Memory) ClearChoices(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.choices = nil
	return nil
}

// PutLifeParameters replaces the parameter slot.
func (m *Memory) PutLifeParameters(_ context.Context, p LifeParameters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Conditions = slices.Clone(p.Conditions)
	m.params = &p
	return nil
}

// GetLifeParameters returns a copy of the parameter slot, or nil.
func (m *Memory) GetLifeParameters(_ context.Context) (*LifeParameters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.params == nil {
		return nil, nil
	}
	p := *m.params
	p.Conditions = slices.Clone(p.Conditions)
	return &p, nil
}

// mirror records a choice that already carries an id assigned elsewhere.
func (m *Memory) mirror(c Choice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.choices = append(m.choices, c)
	if c.ID >= m.nextID {
		m.nextID = c.ID + 1
	}
}

// replace swaps the whole log for choices loaded elsewhere.
func (m *Memory) replace(choices []Choice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.choices = slices.Clone(choices)
	for _, c := range choices {
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
	}
}
