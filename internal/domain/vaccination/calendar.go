package vaccination

import (
	"fmt"
	"strings"
	"time"
)

const (
	bookingDays     = 7
	urgentWindow    = 7 * 24 * time.Hour
	lookaheadMonths = 2
	possibleMonths  = 3
)

// Recommendation is recomputed on every query and never stored.
type Recommendation struct {
	Type            Type      `json:"type"`
	RecommendedDate time.Time `json:"recommendedDate"`
	Urgent          bool      `json:"urgent"`
	Message         string    `json:"message"`
}

// Calendar answers schedule questions for a child. It is read-only after construction.
type Calendar struct {
	schedule []Type
	aliases  []Alias
	loc      *time.Location
	now      func() time.Time
}

// NewCalendar builds a calendar over the Croatian schedule, evaluated in loc.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{
		schedule: defaultSchedule,
		aliases:  defaultAliases,
		loc:      loc,
		now:      time.Now,
	}
}

// NextVaccination recommends the next dose relative to the current time.
func (c *Calendar) NextVaccination(dob time.Time, given []string) *Recommendation {
	return c.NextVaccinationAt(dob, given, c.now())
}

// NextVaccinationAt returns the first overdue dose not covered by given, or else the nearest
// dose due within two months. It returns nil when nothing is outstanding or upcoming.
func (c *Calendar) NextVaccinationAt(dob time.Time, given []string, now time.Time) *Recommendation {
	dob = dob.In(c.loc)
	now = now.In(c.loc)
	age := AgeInMonths(dob, now)

	for _, v := range c.schedule {
		if age < v.AgeMonths || c.covered(v, given) {
			continue
		}
		recommended := c.recommendedDate(dob, v.AgeMonths)
		urgent := !now.Before(recommended.Add(-urgentWindow))
		return &Recommendation{
			Type:            v,
			RecommendedDate: recommended,
			Urgent:          urgent,
			Message:         buildMessage(v, urgent),
		}
	}

	for _, v := range c.schedule {
		until := v.AgeMonths - age
		if until <= 0 || until > lookaheadMonths || c.covered(v, given) {
			continue
		}
		return &Recommendation{
			Type:            v,
			RecommendedDate: c.recommendedDate(dob, v.AgeMonths),
			Urgent:          false,
			Message:         buildMessage(v, false),
		}
	}
	return nil
}

// PossibleForAge lists vaccinations the child is old enough for, or will be within
// three months, one entry per short name.
func (c *Calendar) PossibleForAge(dob time.Time) []Type {
	age := AgeInMonths(dob.In(c.loc), c.now().In(c.loc))
	seen := make(map[string]struct{})
	out := make([]Type, 0, len(c.schedule))
	for _, v := range c.schedule {
		if age < v.AgeMonths-possibleMonths {
			continue
		}
		if _, ok := seen[v.ShortName]; ok {
			continue
		}
		seen[v.ShortName] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ExtractName finds a vaccination mentioned in free text.
func (c *Calendar) ExtractName(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, a := range c.aliases {
		if strings.Contains(lower, a.Keyword) {
			return a.ShortName, true
		}
	}
	return "", false
}

func (c *Calendar) covered(v Type, given []string) bool {
	for _, g := range given {
		if c.matches(g, v.ShortName) {
			return true
		}
	}
	return false
}

// matches is a case-insensitive substring test in either direction plus alias lookup.
// Blank names never match.
func (c *Calendar) matches(given, shortName string) bool {
	g := strings.ToLower(strings.TrimSpace(given))
	if g == "" {
		return false
	}
	s := strings.ToLower(shortName)
	if strings.Contains(g, s) || strings.Contains(s, g) {
		return true
	}
	for _, a := range c.aliases {
		if a.ShortName == shortName && strings.Contains(g, a.Keyword) {
			return true
		}
	}
	return false
}

func (c *Calendar) recommendedDate(dob time.Time, months int) time.Time {
	return addMonthsClamped(dob, months).AddDate(0, 0, bookingDays)
}

// AgeInMonths is the calendar month difference, one less when the day of month
// has not been reached yet.
func AgeInMonths(dob, now time.Time) int {
	months := (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if now.Day() < dob.Day() {
		months--
	}
	return months
}

// addMonthsClamped adds months keeping the wall clock, clamping the day to the
// length of the target month (Jan 31 + 1 month is Feb 28/29).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func buildMessage(v Type, urgent bool) string {
	age := ageText(v.AgeMonths)
	if urgent {
		return fmt.Sprintf("Preporučeno: %s (%s) - Trebalo bi biti primljeno do %s. Naruči se kod pedijatra za termin.",
			v.ShortName, v.Description, age)
	}
	return fmt.Sprintf("Sljedeće cjepivo: %s (%s) - Preporučeno u dobi od %s. Naruči se kod pedijatra za cca %d mjeseci.",
		v.ShortName, v.Description, age, v.AgeMonths)
}

func ageText(months int) string {
	if months < 12 {
		return fmt.Sprintf("%d mjeseci", months)
	}
	years := months / 12
	if years == 1 {
		return "1 godinu"
	}
	return fmt.Sprintf("%d godina", years)
}
