package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/classifier"
	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/domain/shopping"
	"github.com/yanqian/familylog/internal/domain/vaccination"
	apperrors "github.com/yanqian/familylog/pkg/errors"
	"github.com/yanqian/familylog/pkg/util"
)

var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

type stubRepo struct {
	entries []logbook.Entry
	persons []logbook.Person
	addErr  error
	updated []logbook.Entry
}

func (r *stubRepo) AllEntries(context.Context) ([]logbook.Entry, error) {
	return append([]logbook.Entry(nil), r.entries...), nil
}

func (r *stubRepo) AllPersons(context.Context) ([]logbook.Person, error) {
	return append([]logbook.Person(nil), r.persons...), nil
}

func (r *stubRepo) AddEntry(_ context.Context, e logbook.Entry) (logbook.Entry, error) {
	if r.addErr != nil {
		return logbook.Entry{}, r.addErr
	}
	e.ID = fmt.Sprintf("e%d", len(r.entries)+1)
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *stubRepo) UpdateEntry(_ context.Context, e logbook.Entry) error {
	r.updated = append(r.updated, e)
	return nil
}

func (r *stubRepo) AddPerson(_ context.Context, p logbook.Person) (logbook.Person, error) {
	p.ID = fmt.Sprintf("p%d", len(r.persons)+1)
	r.persons = append(r.persons, p)
	return p, nil
}

func (r *stubRepo) GetPerson(_ context.Context, id string) (logbook.Person, error) {
	for _, p := range r.persons {
		if p.ID == id {
			return p, nil
		}
	}
	return logbook.Person{}, apperrors.Wrap(apperrors.CodeNotFound, "person not found", nil)
}

type stubCanceller struct {
	cancelled []logbook.Entry
}

func (c *stubCanceller) Cancel(_ context.Context, e logbook.Entry) error {
	c.cancelled = append(c.cancelled, e)
	return nil
}

func newTestService(repo *stubRepo, canceller ReminderCanceller) *service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	formatter := shopping.NewFormatter(shopping.DefaultVocabulary())
	adviceSvc := advice.NewService(advice.DefaultConfig(), advice.DefaultCatalog(), formatter, nil, logger)
	svc := NewService(repo, classifier.New(classifier.DefaultRules()), formatter, vaccination.NewCalendar(time.UTC), adviceSvc, canceller, logger).(*service)
	svc.now = func() time.Time { return testNow }
	return svc
}

func neo() logbook.Person {
	return logbook.Person{
		ID:          "p1",
		Name:        "Neo",
		Type:        logbook.PersonChild,
		DateOfBirth: util.Ptr(time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)),
	}
}

func TestProcessNoteHealthAttachesAdvice(t *testing.T) {
	repo := &stubRepo{persons: []logbook.Person{neo()}}
	svc := newTestService(repo, nil)

	res, err := svc.ProcessNote(context.Background(), NoteRequest{PersonID: "p1", Text: "Neo had a light fever tonight"})
	require.NoError(t, err)
	require.Equal(t, logbook.CategoryHealth, res.Entry.Category)
	require.Contains(t, res.Entry.Tags, "fever")
	require.Nil(t, res.Entry.Mood)
	require.Equal(t, testNow, res.Entry.Timestamp)
	require.NotNil(t, res.Advice)
	require.Equal(t, "fever", res.Entry.AdviceID)
	require.Len(t, repo.entries, 1)
}

func TestProcessNoteFormatsShoppingList(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	res, err := svc.ProcessNote(context.Background(), NoteRequest{Text: "treba kupiti mlijeko kruh jaja"})
	require.NoError(t, err)
	require.Equal(t, logbook.CategoryShopping, res.Entry.Category)
	require.Equal(t, "mlijeko, kruh, jaja", res.Entry.RawText)
}

func TestProcessNoteKeepsClassifierCategory(t *testing.T) {
	repo := &stubRepo{persons: []logbook.Person{neo()}}
	svc := newTestService(repo, nil)

	for _, text := range []string{
		"Neo ima temperaturu 38,5, treba kupiti sirup",
		"Neo had fever, we need to buy more syrup",
	} {
		res, err := svc.ProcessNote(context.Background(), NoteRequest{PersonID: "p1", Text: text, MedicineIntervalHours: 6})
		require.NoError(t, err)
		require.Equal(t, logbook.CategoryHealth, res.Entry.Category, text)
		require.Equal(t, text, res.Entry.RawText)
		require.NotEmpty(t, res.Entry.MedicineGiven)
		require.NotNil(t, res.Entry.NextMedicineTime)
		require.Equal(t, testNow.Add(6*time.Hour), *res.Entry.NextMedicineTime)
		require.True(t, logbook.IsMedicineEntry(res.Entry))
		require.Equal(t, "fever", res.Entry.AdviceID)
	}

	text := "Neo se bojao psa u parku"
	res, err := svc.ProcessNote(context.Background(), NoteRequest{PersonID: "p1", Text: text})
	require.NoError(t, err)
	require.Equal(t, svc.Classify(text).Category, res.Entry.Category)
	require.Equal(t, logbook.CategoryOther, res.Entry.Category)
	require.Equal(t, text, res.Entry.RawText)
}

func TestProcessNoteVaccinationSchedulesNext(t *testing.T) {
	repo := &stubRepo{persons: []logbook.Person{neo()}}
	svc := newTestService(repo, nil)

	res, err := svc.ProcessNote(context.Background(), NoteRequest{PersonID: "p1", Text: "Danas primio DTP cjepivo"})
	require.NoError(t, err)
	require.Equal(t, logbook.CategoryVaccination, res.Entry.Category)
	require.Equal(t, "DTP-Hib-IPV", res.Entry.VaccinationName)
	require.NotNil(t, res.Entry.NextVaccinationDate)
	// DTP is covered, so the 2-month pneumococcal dose is next.
	require.Equal(t, time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC), *res.Entry.NextVaccinationDate)
}

func TestProcessNoteMedicineInterval(t *testing.T) {
	repo := &stubRepo{persons: []logbook.Person{neo()}}
	svc := newTestService(repo, nil)

	res, err := svc.ProcessNote(context.Background(), NoteRequest{
		PersonID:              "p1",
		Text:                  "Dala sam paracetamol zbog temperature 38,5",
		MedicineIntervalHours: 6,
	})
	require.NoError(t, err)
	require.Equal(t, "paracetamol", res.Entry.MedicineGiven)
	require.NotNil(t, res.Entry.NextMedicineTime)
	require.Equal(t, testNow.Add(6*time.Hour), *res.Entry.NextMedicineTime)
	require.NotNil(t, res.Entry.Temperature)
	require.InDelta(t, 38.5, *res.Entry.Temperature, 0.001)
}

func TestProcessNoteValidation(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	_, err := svc.ProcessNote(context.Background(), NoteRequest{Text: "   "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.ProcessNote(context.Background(), NoteRequest{PersonID: "missing", Text: "hello"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestProcessNoteStorageFailure(t *testing.T) {
	svc := newTestService(&stubRepo{addErr: errors.New("disk full")}, nil)

	_, err := svc.ProcessNote(context.Background(), NoteRequest{Text: "Auto na servisu"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorage))
}

func TestAddMedicineAndSymptom(t *testing.T) {
	repo := &stubRepo{persons: []logbook.Person{neo()}}
	svc := newTestService(repo, nil)

	med, err := svc.AddMedicine(context.Background(), MedicineRequest{PersonID: "p1", Name: "Nurofen", Dosage: "2.5ml"})
	require.NoError(t, err)
	require.Equal(t, logbook.CategoryMedicine, med.Category)
	require.Equal(t, testNow.Add(6*time.Hour), *med.NextMedicineTime)
	require.Equal(t, "Dao/la Nurofen 2.5ml", med.RawText)

	_, err = svc.AddMedicine(context.Background(), MedicineRequest{PersonID: "p1"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	res, err := svc.AddSymptom(context.Background(), SymptomRequest{
		PersonID:    "p1",
		Temperature: util.Ptr(38.2),
		Symptoms:    []string{"kašalj", " "},
	})
	require.NoError(t, err)
	require.Equal(t, logbook.CategorySymptom, res.Entry.Category)
	require.Equal(t, []string{"kašalj"}, res.Entry.Symptoms)
	require.NotNil(t, res.Advice)
	require.Equal(t, "fever", res.Advice.ID)
}

func TestUpdateEntryCancelsPreviousReminders(t *testing.T) {
	old := logbook.Entry{ID: "e1", RawText: "Servis", ReminderDate: util.Ptr(testNow.Add(24 * time.Hour))}
	repo := &stubRepo{entries: []logbook.Entry{old}}
	canceller := &stubCanceller{}
	svc := newTestService(repo, canceller)

	edited := old
	edited.ReminderDate = util.Ptr(testNow.Add(48 * time.Hour))
	require.NoError(t, svc.UpdateEntry(context.Background(), edited))
	require.Equal(t, []logbook.Entry{edited}, repo.updated)
	require.Len(t, canceller.cancelled, 1)
	require.Equal(t, testNow.Add(24*time.Hour), *canceller.cancelled[0].ReminderDate)

	err := svc.UpdateEntry(context.Background(), logbook.Entry{ID: "nope"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListEntriesNewestFirstPerPerson(t *testing.T) {
	repo := &stubRepo{entries: []logbook.Entry{
		{ID: "a", PersonID: "p1", Timestamp: testNow.Add(-2 * time.Hour)},
		{ID: "b", PersonID: "p2", Timestamp: testNow.Add(-time.Hour)},
		{ID: "c", ChildID: "p1", Timestamp: testNow},
	}}
	svc := newTestService(repo, nil)

	all, err := svc.ListEntries(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := svc.ListEntries(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, "c", mine[0].ID)
}

func TestAddPersonValidation(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	p, err := svc.AddPerson(context.Background(), logbook.Person{Name: " Mia "})
	require.NoError(t, err)
	require.Equal(t, "Mia", p.Name)
	require.Equal(t, logbook.PersonOtherFamily, p.Type)

	_, err = svc.AddPerson(context.Background(), logbook.Person{Name: ""})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.AddPerson(context.Background(), logbook.Person{Name: "X", Type: "ROBOT"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.AddPerson(context.Background(), logbook.Person{Name: "X", DateOfBirth: util.Ptr(testNow.Add(time.Hour))})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestNextVaccinationFor(t *testing.T) {
	noDOB := logbook.Person{ID: "p2", Name: "Ana", Type: logbook.PersonParent}
	repo := &stubRepo{persons: []logbook.Person{neo(), noDOB}}
	svc := newTestService(repo, nil)

	rec, err := svc.NextVaccinationFor(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "DTP-Hib-IPV", rec.Type.ShortName)
	require.True(t, rec.Urgent)

	rec, err = svc.NextVaccinationFor(context.Background(), "p2")
	require.NoError(t, err)
	require.Nil(t, rec)
}
