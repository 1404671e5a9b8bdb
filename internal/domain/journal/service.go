package journal

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/classifier"
	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/domain/shopping"
	"github.com/yanqian/familylog/internal/domain/vaccination"
	apperrors "github.com/yanqian/familylog/pkg/errors"
)

// Service turns notes into stored entries and answers per-person questions.
type Service interface {
	Classify(text string) logbook.ClassifiedMetadata
	ProcessNote(ctx context.Context, req NoteRequest) (NoteResult, error)
	AddMedicine(ctx context.Context, req MedicineRequest) (logbook.Entry, error)
	AddSymptom(ctx context.Context, req SymptomRequest) (NoteResult, error)
	UpdateEntry(ctx context.Context, entry logbook.Entry) error
	ListEntries(ctx context.Context, personID string) ([]logbook.Entry, error)
	AddPerson(ctx context.Context, person logbook.Person) (logbook.Person, error)
	NextVaccinationFor(ctx context.Context, personID string) (*vaccination.Recommendation, error)
}

type service struct {
	repo       logbook.Repository
	classifier *classifier.Classifier
	formatter  *shopping.Formatter
	calendar   *vaccination.Calendar
	advice     advice.Service
	reminders  ReminderCanceller
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the note pipeline. reminders may be nil.
func NewService(
	repo logbook.Repository,
	cls *classifier.Classifier,
	formatter *shopping.Formatter,
	calendar *vaccination.Calendar,
	adviceSvc advice.Service,
	reminders ReminderCanceller,
	logger *slog.Logger,
) Service {
	return &service{
		repo:       repo,
		classifier: cls,
		formatter:  formatter,
		calendar:   calendar,
		advice:     adviceSvc,
		reminders:  reminders,
		logger:     logger.With("component", "journal.service"),
		now:        time.Now,
	}
}

func (s *service) Classify(text string) logbook.ClassifiedMetadata {
	return s.classifier.Classify(text)
}

func (s *service) ProcessNote(ctx context.Context, req NoteRequest) (NoteResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return NoteResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "text is required", nil)
	}
	person, err := s.lookupPerson(ctx, req.PersonID)
	if err != nil {
		return NoteResult{}, err
	}

	ts := s.now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	meta := s.classifier.Classify(text)

	entry := logbook.Entry{
		PersonID:        req.PersonID,
		Timestamp:       ts,
		RawText:         text,
		Category:        meta.Category,
		Tags:            meta.Tags,
		Mood:            meta.Mood,
		Temperature:     meta.Temperature,
		FeedingType:     meta.FeedingType,
		FeedingAmountML: meta.FeedingAmountML,
		ReminderDate:    req.ReminderDate,
		ServiceType:     strings.TrimSpace(req.ServiceType),
		Amount:          req.Amount,
		Currency:        strings.TrimSpace(req.Currency),
	}

	// Only notes the classifier files under SHOPPING are rewritten as lists.
	if meta.Category == logbook.CategoryShopping {
		entry.RawText = s.formatter.ProcessVoiceInput(text)
	}

	if meta.Medicine != "" {
		entry.MedicineGiven = meta.Medicine
		if req.MedicineIntervalHours > 0 {
			next := ts.Add(time.Duration(req.MedicineIntervalHours) * time.Hour)
			entry.NextMedicineTime = &next
			entry.MedicineIntervalHours = req.MedicineIntervalHours
		}
	}

	if name, ok := s.calendar.ExtractName(text); ok {
		entry.Category = logbook.CategoryVaccination
		entry.VaccinationName = name
		if rec, err := s.nextVaccination(ctx, person, name, ts); err != nil {
			return NoteResult{}, err
		} else if rec != nil {
			date := rec.RecommendedDate
			entry.NextVaccinationDate = &date
		}
	}

	var tpl *advice.Template
	if found, ok := s.advice.FindAdvice(text, entry.Category, entry.Symptoms); ok {
		tpl = &found
		entry.AdviceID = found.ID
	}

	stored, err := s.repo.AddEntry(ctx, entry)
	if err != nil {
		return NoteResult{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store entry", err)
	}
	s.logger.Info("note stored", "entryId", stored.ID, "category", stored.Category, "adviceId", stored.AdviceID)
	return NoteResult{Entry: stored, Metadata: meta, Advice: tpl}, nil
}

func (s *service) AddMedicine(ctx context.Context, req MedicineRequest) (logbook.Entry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return logbook.Entry{}, apperrors.Wrap(apperrors.CodeInvalidInput, "medicine name is required", nil)
	}
	if _, err := s.lookupPerson(ctx, req.PersonID); err != nil {
		return logbook.Entry{}, err
	}
	givenAt := s.now()
	if req.GivenAt != nil {
		givenAt = *req.GivenAt
	}
	entry := logbook.NewMedicineEntry(req.PersonID, name, strings.TrimSpace(req.Dosage), givenAt, req.IntervalHours, req.Notes)
	stored, err := s.repo.AddEntry(ctx, entry)
	if err != nil {
		return logbook.Entry{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store medicine entry", err)
	}
	return stored, nil
}

func (s *service) AddSymptom(ctx context.Context, req SymptomRequest) (NoteResult, error) {
	if _, err := s.lookupPerson(ctx, req.PersonID); err != nil {
		return NoteResult{}, err
	}
	at := s.now()
	if req.At != nil {
		at = *req.At
	}
	symptoms := make([]string, 0, len(req.Symptoms))
	for _, sym := range req.Symptoms {
		if sym = strings.TrimSpace(sym); sym != "" {
			symptoms = append(symptoms, sym)
		}
	}
	entry := logbook.NewSymptomEntry(req.PersonID, req.Temperature, symptoms, at, req.Notes)

	var tpl *advice.Template
	if found, ok := s.advice.FindAdvice(entry.RawText, entry.Category, entry.Symptoms); ok {
		tpl = &found
		entry.AdviceID = found.ID
	}
	stored, err := s.repo.AddEntry(ctx, entry)
	if err != nil {
		return NoteResult{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store symptom entry", err)
	}
	meta := logbook.ClassifiedMetadata{Category: stored.Category, Temperature: stored.Temperature}
	return NoteResult{Entry: stored, Metadata: meta, Advice: tpl}, nil
}

// UpdateEntry stores the edited entry and withdraws reminders scheduled from the old version.
func (s *service) UpdateEntry(ctx context.Context, entry logbook.Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "entry id is required", nil)
	}
	entries, err := s.repo.AllEntries(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to load entries", err)
	}
	var previous *logbook.Entry
	for i := range entries {
		if entries[i].ID == entry.ID {
			previous = &entries[i]
			break
		}
	}
	if previous == nil {
		return apperrors.Wrap(apperrors.CodeNotFound, "entry not found", nil)
	}
	if err := s.repo.UpdateEntry(ctx, entry); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to update entry", err)
	}
	if s.reminders != nil {
		if err := s.reminders.Cancel(ctx, *previous); err != nil {
			s.logger.Warn("failed to cancel reminders for edited entry", "entryId", entry.ID, "error", err)
		}
	}
	return nil
}

// ListEntries returns entries newest first, optionally for one person.
func (s *service) ListEntries(ctx context.Context, personID string) ([]logbook.Entry, error) {
	entries, err := s.repo.AllEntries(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load entries", err)
	}
	out := make([]logbook.Entry, 0, len(entries))
	for _, e := range entries {
		if personID != "" && e.SubjectID() != personID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *service) AddPerson(ctx context.Context, person logbook.Person) (logbook.Person, error) {
	person.Name = strings.TrimSpace(person.Name)
	if person.Name == "" {
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeInvalidInput, "name is required", nil)
	}
	switch person.Type {
	case logbook.PersonParent, logbook.PersonChild, logbook.PersonOtherFamily, logbook.PersonPet:
	case "":
		person.Type = logbook.PersonOtherFamily
	default:
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown person type", nil)
	}
	if person.DateOfBirth != nil && person.DateOfBirth.After(s.now()) {
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date of birth is in the future", nil)
	}
	stored, err := s.repo.AddPerson(ctx, person)
	if err != nil {
		return logbook.Person{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store person", err)
	}
	return stored, nil
}

// NextVaccinationFor returns nil when the person has no birth date or nothing is due.
func (s *service) NextVaccinationFor(ctx context.Context, personID string) (*vaccination.Recommendation, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "person id is required", nil)
	}
	person, err := s.lookupPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	return s.nextVaccination(ctx, person, "", s.now())
}

func (s *service) nextVaccination(ctx context.Context, person *logbook.Person, justGiven string, now time.Time) (*vaccination.Recommendation, error) {
	if person == nil || person.DateOfBirth == nil {
		return nil, nil
	}
	given, err := s.givenVaccinations(ctx, person.ID)
	if err != nil {
		return nil, err
	}
	if justGiven != "" {
		given = append(given, justGiven)
	}
	return s.calendar.NextVaccinationAt(*person.DateOfBirth, given, now), nil
}

func (s *service) givenVaccinations(ctx context.Context, personID string) ([]string, error) {
	entries, err := s.repo.AllEntries(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load entries", err)
	}
	var given []string
	for _, e := range entries {
		if e.SubjectID() == personID && e.VaccinationName != "" {
			given = append(given, e.VaccinationName)
		}
	}
	return given, nil
}

// lookupPerson resolves an optional person reference. An empty id yields nil.
func (s *service) lookupPerson(ctx context.Context, personID string) (*logbook.Person, error) {
	if strings.TrimSpace(personID) == "" {
		return nil, nil
	}
	person, err := s.repo.GetPerson(ctx, personID)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load person", err)
	}
	return &person, nil
}
