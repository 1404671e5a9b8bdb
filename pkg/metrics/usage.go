package metrics

import "time"

// TickStats summarises one reminder evaluation pass.
type TickStats struct {
	StartedAt  time.Time `json:"startedAt"`
	Skipped    bool      `json:"skipped"`
	SkipReason string    `json:"skipReason,omitempty"`
	Entries    int       `json:"entries"`
	Persons    int       `json:"persons"`
	Candidates int       `json:"candidates"`
	Delivered  int       `json:"delivered"`
	Suppressed int       `json:"suppressed"`
	Failed     int       `json:"failed"`
	DurationMs int64     `json:"durationMs"`
}

// IsZero reports whether nothing was evaluated.
func (s TickStats) IsZero() bool {
	return s.Entries == 0 && s.Persons == 0 && s.Candidates == 0
}

// SearchStats counts the per-item outcome of a deal search.
type SearchStats struct {
	Items     int `json:"items"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Deals     int `json:"deals"`
	Kept      int `json:"kept"`
}
