package logbookrepo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/yanqian/familylog/internal/domain/logbook"
	apperrors "github.com/yanqian/familylog/pkg/errors"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteRepository stores the logbook in a single file for one-device installs.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at path and applies the schema.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite serialises writers; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// AllEntries returns every entry ordered by time.
func (r *SQLiteRepository) AllEntries(ctx context.Context) ([]logbook.Entry, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT payload FROM entries ORDER BY entry_time ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []logbook.Entry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry, err := decodeEntry([]byte(payload))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AllPersons returns every person ordered by name.
func (r *SQLiteRepository) AllPersons(ctx context.Context) ([]logbook.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, person_type, date_of_birth, relationship FROM persons ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []logbook.Person
	for rows.Next() {
		person, err := scanSQLitePerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, person)
	}
	return persons, rows.Err()
}

// AddEntry inserts the entry, assigning an id when missing.
func (r *SQLiteRepository) AddEntry(ctx context.Context, entry logbook.Entry) (logbook.Entry, error) {
	entry = prepareEntry(entry, uuid.NewString())
	payload, err := encodeEntry(entry)
	if err != nil {
		return logbook.Entry{}, err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO entries (id, person_id, category, entry_time, payload) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.SubjectID(), string(entry.Category), entry.Timestamp.UTC(), string(payload),
	)
	if err != nil {
		return logbook.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return entry, nil
}

// UpdateEntry replaces the stored document of an existing entry.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, entry logbook.Entry) error {
	payload, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE entries SET person_id = ?, category = ?, entry_time = ?, payload = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		entry.SubjectID(), string(entry.Category), entry.Timestamp.UTC(), string(payload), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
	}
	return nil
}

// AddPerson inserts the person, assigning an id when missing.
func (r *SQLiteRepository) AddPerson(ctx context.Context, person logbook.Person) (logbook.Person, error) {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	var dob any
	if person.DateOfBirth != nil {
		dob = person.DateOfBirth.UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO persons (id, name, person_type, date_of_birth, relationship) VALUES (?, ?, ?, ?, ?)",
		person.ID, person.Name, string(person.Type), dob, person.Relationship,
	)
	if err != nil {
		return logbook.Person{}, fmt.Errorf("insert person: %w", err)
	}
	return person, nil
}

// GetPerson fetches a person by id.
func (r *SQLiteRepository) GetPerson(ctx context.Context, id string) (logbook.Person, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, person_type, date_of_birth, relationship FROM persons WHERE id = ?", id)
	person, err := scanSQLitePerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeNotFound, "person not found", nil)
	}
	if err != nil {
		return logbook.Person{}, fmt.Errorf("get person: %w", err)
	}
	return person, nil
}

func scanSQLitePerson(row rowScanner) (logbook.Person, error) {
	var (
		person     logbook.Person
		personType string
		dob        sql.NullTime
	)
	if err := row.Scan(&person.ID, &person.Name, &personType, &dob, &person.Relationship); err != nil {
		return logbook.Person{}, err
	}
	person.Type = logbook.PersonType(personType)
	if dob.Valid {
		t := dob.Time.UTC()
		person.DateOfBirth = &t
	}
	return person, nil
}

var _ logbook.Repository = (*SQLiteRepository)(nil)
