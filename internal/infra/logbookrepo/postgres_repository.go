package logbookrepo

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/familylog/internal/domain/logbook"
	apperrors "github.com/yanqian/familylog/pkg/errors"
)

//go:embed postgres_schema.sql
var postgresSchema string

// PostgresRepository implements logbook.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the tables when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// AllEntries returns every entry ordered by time.
func (r *PostgresRepository) AllEntries(ctx context.Context) ([]logbook.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT payload
		FROM entries
		ORDER BY entry_time ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []logbook.Entry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		entry, err := decodeEntry(payload)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AllPersons returns every person ordered by name.
func (r *PostgresRepository) AllPersons(ctx context.Context) ([]logbook.Person, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, person_type, date_of_birth, relationship
		FROM persons
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []logbook.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}
	return persons, rows.Err()
}

// AddEntry inserts the entry, assigning an id when missing.
func (r *PostgresRepository) AddEntry(ctx context.Context, entry logbook.Entry) (logbook.Entry, error) {
	entry = prepareEntry(entry, uuid.NewString())
	payload, err := encodeEntry(entry)
	if err != nil {
		return logbook.Entry{}, err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO entries (id, person_id, category, entry_time, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.SubjectID(), string(entry.Category), entry.Timestamp, string(payload))
	if err != nil {
		return logbook.Entry{}, err
	}
	return entry, nil
}

// UpdateEntry replaces the stored document of an existing entry.
func (r *PostgresRepository) UpdateEntry(ctx context.Context, entry logbook.Entry) error {
	payload, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE entries
		SET person_id = $2, category = $3, entry_time = $4, payload = $5, updated_at = now()
		WHERE id = $1
	`, entry.ID, entry.SubjectID(), string(entry.Category), entry.Timestamp, string(payload))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
	}
	return nil
}

// AddPerson inserts the person, assigning an id when missing.
func (r *PostgresRepository) AddPerson(ctx context.Context, person logbook.Person) (logbook.Person, error) {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO persons (id, name, person_type, date_of_birth, relationship)
		VALUES ($1, $2, $3, $4, $5)
	`, person.ID, person.Name, string(person.Type), person.DateOfBirth, person.Relationship)
	if err != nil {
		return logbook.Person{}, err
	}
	return person, nil
}

// GetPerson fetches a person by id.
func (r *PostgresRepository) GetPerson(ctx context.Context, id string) (logbook.Person, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, person_type, date_of_birth, relationship
		FROM persons
		WHERE id = $1
	`, id)
	person, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeNotFound, "person not found", nil)
	}
	return person, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (logbook.Person, error) {
	var (
		person     logbook.Person
		personType string
		dob        *time.Time
	)
	if err := row.Scan(&person.ID, &person.Name, &personType, &dob, &person.Relationship); err != nil {
		return logbook.Person{}, err
	}
	person.Type = logbook.PersonType(personType)
	person.DateOfBirth = dob
	return person, nil
}

var _ logbook.Repository = (*PostgresRepository)(nil)
