package logbookrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/familylog/internal/domain/logbook"
	apperrors "github.com/yanqian/familylog/pkg/errors"
)

// MemoryRepository keeps entries and persons in process for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]logbook.Entry
	order   []string
	persons map[string]logbook.Person
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries: make(map[string]logbook.Entry),
		persons: make(map[string]logbook.Person),
	}
}

// AllEntries returns a snapshot ordered by timestamp.
func (r *MemoryRepository) AllEntries(_ context.Context) ([]logbook.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]logbook.Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// AllPersons returns persons sorted by name.
func (r *MemoryRepository) AllPersons(_ context.Context) ([]logbook.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]logbook.Person, 0, len(r.persons))
	for _, p := range r.persons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// AddEntry stores the entry, assigning an id when missing.
func (r *MemoryRepository) AddEntry(_ context.Context, entry logbook.Entry) (logbook.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry = prepareEntry(entry, uuid.NewString())
	if _, exists := r.entries[entry.ID]; !exists {
		r.order = append(r.order, entry.ID)
	}
	r.entries[entry.ID] = entry
	return entry, nil
}

// UpdateEntry replaces an existing entry.
func (r *MemoryRepository) UpdateEntry(_ context.Context, entry logbook.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
	}
	r.entries[entry.ID] = entry
	return nil
}

// AddPerson stores the person, assigning an id when missing.
func (r *MemoryRepository) AddPerson(_ context.Context, person logbook.Person) (logbook.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	r.persons[person.ID] = person
	return person, nil
}

// GetPerson looks a person up by id.
func (r *MemoryRepository) GetPerson(_ context.Context, id string) (logbook.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.persons[id]
	if !ok {
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeNotFound, "person not found", nil)
	}
	return p, nil
}

var _ logbook.Repository = (*MemoryRepository)(nil)
