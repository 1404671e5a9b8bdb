package logbook

import "context"

// Repository persists entries and persons. Reads return snapshots.
type Repository interface {
	AllEntries(ctx context.Context) ([]Entry, error)
	AllPersons(ctx context.Context) ([]Person, error)
	AddEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) error
	AddPerson(ctx context.Context, person Person) (Person, error)
	GetPerson(ctx context.Context, id string) (Person, error)
}
