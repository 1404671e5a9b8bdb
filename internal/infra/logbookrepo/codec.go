package logbookrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yanqian/familylog/internal/domain/logbook"
)

// Entries are stored as a JSON document next to a few indexed columns.
func encodeEntry(entry logbook.Entry) ([]byte, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return payload, nil
}

func decodeEntry(payload []byte) (logbook.Entry, error) {
	var entry logbook.Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return logbook.Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	// Rows written before the category set was extended may carry legacy names.
	entry.Category = logbook.ParseCategory(string(entry.Category))
	return entry, nil
}

func prepareEntry(entry logbook.Entry, id string) logbook.Entry {
	if entry.ID == "" {
		entry.ID = id
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Category == "" {
		entry.Category = logbook.CategoryOther
	}
	return entry
}
