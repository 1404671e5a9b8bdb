package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/familylog/internal/domain/logbook"
)

const (
	medicineEarly = 5 * time.Minute
	medicineLate  = 30 * time.Minute

	defaultBabyName = "Beba"
)

// Evaluator decides which reminders are due. It holds no state between calls.
type Evaluator struct {
	cfg Config
}

// NewEvaluator builds an evaluator with the given feeding windows.
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg.withDefaults()}
}

// Evaluate returns every reminder whose window contains now, in a stable order:
// feeding per person first, then per-entry reminders in entry order.
func (e *Evaluator) Evaluate(now time.Time, entries []logbook.Entry, persons []logbook.Person) []Reminder {
	names := make(map[string]string, len(persons))
	for _, p := range persons {
		names[p.ID] = p.Name
	}

	out := e.feeding(now, entries, persons)
	for _, entry := range entries {
		if r, ok := e.medicine(now, entry, names); ok {
			out = append(out, r)
		}
		out = append(out, e.vaccination(now, entry)...)
		out = append(out, e.appointment(now, entry)...)
	}
	return out
}

func (e *Evaluator) feeding(now time.Time, entries []logbook.Entry, persons []logbook.Person) []Reminder {
	latest := make(map[string]logbook.Entry)
	for _, entry := range entries {
		if !logbook.IsFeedingEntry(entry) {
			continue
		}
		subject := entry.SubjectID()
		if subject == "" {
			continue
		}
		if cur, ok := latest[subject]; !ok || entry.Timestamp.After(cur.Timestamp) {
			latest[subject] = entry
		}
	}

	var out []Reminder
	for _, p := range persons {
		if p.Type != logbook.PersonChild || p.DateOfBirth == nil {
			continue
		}
		if !logbook.CanHaveFeeding(*p.DateOfBirth, now) {
			continue
		}
		last, ok := latest[p.ID]
		if !ok {
			continue
		}
		elapsed := now.Sub(last.Timestamp)
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = defaultBabyName
		}
		body := fmt.Sprintf("%s nije hranjen već %.1f sati. (Ovo je samo informativno)", name, elapsed.Hours())

		switch {
		case elapsed >= e.cfg.FeedingAfter && elapsed <= e.cfg.FeedingUrgentFrom:
			key := fmt.Sprintf("feeding_%s_%s", p.ID, last.ID)
			out = append(out, newReminder(KindFeeding, key, "Vrijeme za hranjenje?", body, p.ID, last.ID, last.Timestamp.Add(e.cfg.FeedingAfter)))
		case elapsed > e.cfg.FeedingUrgentFrom && elapsed <= e.cfg.FeedingGiveUp:
			key := fmt.Sprintf("feeding_urgent_%s_%s", p.ID, last.ID)
			out = append(out, newReminder(KindFeedingUrgent, key, "Vrijeme za hranjenje?", body, p.ID, last.ID, last.Timestamp.Add(e.cfg.FeedingUrgentFrom)))
		}
	}
	return out
}

func (e *Evaluator) medicine(now time.Time, entry logbook.Entry, names map[string]string) (Reminder, bool) {
	next, ok := logbook.NextDose(entry)
	if !ok {
		return Reminder{}, false
	}
	delta := next.Sub(now)
	if delta < -medicineLate || delta > medicineEarly {
		return Reminder{}, false
	}

	key := fmt.Sprintf("medicine_%s_%d", entry.ID, next.Unix())
	title := "Vrijeme za uzimanje lijeka: " + entry.MedicineGiven
	body := fmt.Sprintf("Ne zaboravi uzeti %s", entry.MedicineGiven)
	if name := names[entry.SubjectID()]; name != "" {
		body = fmt.Sprintf("%s bi trebao/la uzeti %s sada", name, entry.MedicineGiven)
	}
	return newReminder(KindMedicine, key, title, body, entry.SubjectID(), entry.ID, next), true
}

func (e *Evaluator) vaccination(now time.Time, entry logbook.Entry) []Reminder {
	if entry.NextVaccinationDate == nil {
		return nil
	}
	due := *entry.NextVaccinationDate
	delta := due.Sub(now)

	// The three windows are independent; a single delta falls into at most one of them.
	var out []Reminder
	if delta > 6*24*time.Hour && delta <= 7*24*time.Hour {
		out = append(out, newReminder(KindVaccination, fmt.Sprintf("vaccination_%s_7days", entry.ID),
			"Cijepljenje za 7 dana", "Sljedeće cijepljenje je za tjedan dana.", entry.SubjectID(), entry.ID, due))
	}
	if delta > 23*time.Hour && delta <= 24*time.Hour {
		out = append(out, newReminder(KindVaccination, fmt.Sprintf("vaccination_%s_1day", entry.ID),
			"Cijepljenje sutra", "Sljedeće cijepljenje je sutra.", entry.SubjectID(), entry.ID, due))
	}
	if delta >= -2*time.Hour && delta <= 2*time.Hour {
		out = append(out, newReminder(KindVaccination, fmt.Sprintf("vaccination_%s_today", entry.ID),
			"Cijepljenje danas", "Sljedeće cijepljenje je danas.", entry.SubjectID(), entry.ID, due))
	}
	return out
}

func (e *Evaluator) appointment(now time.Time, entry logbook.Entry) []Reminder {
	if entry.ReminderDate == nil {
		return nil
	}
	due := *entry.ReminderDate
	delta := due.Sub(now)
	title := strings.TrimSpace(entry.ServiceType)
	if title == "" {
		title = "Podsjetnik"
	}
	text := strings.TrimSpace(entry.RawText)

	var out []Reminder
	if delta > 23*time.Hour && delta <= 24*time.Hour {
		out = append(out, newReminder(KindAppointment, fmt.Sprintf("reminder_%s_1day", entry.ID),
			title, "Sutra: "+text, entry.SubjectID(), entry.ID, due))
	}
	if delta >= -time.Hour && delta <= time.Hour {
		out = append(out, newReminder(KindAppointment, fmt.Sprintf("reminder_%s_today", entry.ID),
			title, "Danas: "+text, entry.SubjectID(), entry.ID, due))
	}
	return out
}

// KeysForEntry lists every key the evaluator may ever emit for the entry's current
// schedule, so callers can cancel them when an entry is edited.
func KeysForEntry(entry logbook.Entry) []string {
	var keys []string
	if next, ok := logbook.NextDose(entry); ok {
		keys = append(keys, fmt.Sprintf("medicine_%s_%d", entry.ID, next.Unix()))
	}
	if entry.NextVaccinationDate != nil {
		for _, suffix := range []string{"7days", "1day", "today"} {
			keys = append(keys, fmt.Sprintf("vaccination_%s_%s", entry.ID, suffix))
		}
	}
	if entry.ReminderDate != nil {
		keys = append(keys,
			fmt.Sprintf("reminder_%s_1day", entry.ID),
			fmt.Sprintf("reminder_%s_today", entry.ID))
	}
	return keys
}
