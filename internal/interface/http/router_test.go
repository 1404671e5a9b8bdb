package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/auth"
	"github.com/yanqian/familylog/internal/domain/classifier"
	"github.com/yanqian/familylog/internal/domain/journal"
	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/domain/shopping"
	"github.com/yanqian/familylog/internal/domain/vaccination"
	"github.com/yanqian/familylog/internal/infra/config"
	"github.com/yanqian/familylog/internal/infra/logbookrepo"
	"github.com/yanqian/familylog/pkg/metrics"
)

const testSecret = "router-test-secret"

type stubTrigger struct {
	ran   bool
	stats metrics.TickStats
	err   error
	calls int
}

func (s *stubTrigger) Trigger(context.Context) (metrics.TickStats, bool, error) {
	s.calls++
	return s.stats, s.ran, s.err
}

type routerUnderTest struct {
	server  *http.Server
	auth    auth.Service
	trigger *stubTrigger
}

func newRouterUnderTest(t *testing.T) *routerUnderTest {
	t.Helper()
	logger := newTestLogger()
	formatter := shopping.NewFormatter(shopping.DefaultVocabulary())
	adviceSvc := advice.NewService(advice.DefaultConfig(), advice.DefaultCatalog(), formatter, nil, logger)
	journalSvc := journal.NewService(
		logbookrepo.NewMemoryRepository(),
		classifier.New(classifier.DefaultRules()),
		formatter,
		vaccination.NewCalendar(time.UTC),
		adviceSvc,
		nil,
		logger,
	)
	authSvc := auth.NewService(auth.Config{Secret: testSecret}, logger)
	trigger := &stubTrigger{ran: true, stats: metrics.TickStats{Delivered: 2}}

	handler := NewHandler(HandlerConfig{DefaultLocation: "Zagreb"}, journalSvc, adviceSvc, formatter, trigger, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return &routerUnderTest{server: NewRouter(cfg, handler, authSvc, logger), auth: authSvc, trigger: trigger}
}

func (r *routerUnderTest) token(t *testing.T, tokenType string) string {
	t.Helper()
	token, err := r.auth.IssueToken("user-1", tokenType, time.Hour)
	require.NoError(t, err)
	return token
}

func (r *routerUnderTest) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	r := newRouterUnderTest(t)

	rec := r.do(http.MethodPost, "/api/v1/notes", `{"text":"x"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthorized", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = r.do(http.MethodPost, "/api/v1/notes", `{"text":"x"}`, "garbage")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r := newRouterUnderTest(t)
	rec := r.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProcessNoteAndListEntries(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/notes", `{"text":"Neo had a light fever tonight"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result journal.NoteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, logbook.CategoryHealth, result.Entry.Category)
	require.NotEmpty(t, result.Entry.ID)
	require.NotNil(t, result.Advice)
	require.Equal(t, "fever", result.Advice.ID)

	rec = r.do(http.MethodGet, "/api/v1/entries", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Entries []logbook.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Entries, 1)
	require.Equal(t, result.Entry.ID, list.Entries[0].ID)
}

func TestRouter_ProcessNoteInvalidInput(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/notes", `{"text":"   "}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "text is required")

	rec = r.do(http.MethodPost, "/api/v1/notes", `{"text":123}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ClassifyNote(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/notes/classify", `{"text":"Neo had a light fever tonight"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var meta logbook.ClassifiedMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	require.Equal(t, logbook.CategoryHealth, meta.Category)

	rec = r.do(http.MethodPost, "/api/v1/notes/classify", `{"text":""}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AdviceNoContent(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/advice", `{"text":"Neo had a light fever tonight","category":"HEALTH"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var tpl advice.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpl))
	require.Equal(t, "fever", tpl.ID)

	rec = r.do(http.MethodPost, "/api/v1/advice", `{"text":"qwerty zxcv"}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_FormatShopping(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/shopping/format", `{"text":"treba kupiti mlijeko kruh jaja"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var got formatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "mlijeko, kruh, jaja", got.Text)
	require.Equal(t, []string{"mlijeko", "kruh", "jaja"}, got.Items)
	require.True(t, got.IsShopping)
}

func TestRouter_ShoppingDealsWithoutSearcher(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/shopping/deals", `{"text":"mlijeko, kruh"}`, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_PersonsAndVaccination(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	dob := time.Now().UTC().AddDate(0, -1, 0).Format(time.RFC3339)
	rec := r.do(http.MethodPost, "/api/v1/persons", `{"name":"Neo","type":"CHILD","dateOfBirth":"`+dob+`"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var person logbook.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &person))
	require.NotEmpty(t, person.ID)

	rec = r.do(http.MethodGet, "/api/v1/persons/"+person.ID+"/vaccinations/next", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var rec2 vaccination.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rec2))
	require.NotEmpty(t, rec2.Type.ShortName)

	rec = r.do(http.MethodGet, "/api/v1/persons/missing/vaccinations/next", "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = r.do(http.MethodPost, "/api/v1/persons", `{"name":""}`, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_MedicineAndSymptom(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPost, "/api/v1/medicines", `{"name":"Paracetamol","dosage":"5ml","intervalHours":6}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry logbook.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	require.Equal(t, logbook.CategoryMedicine, entry.Category)
	require.NotNil(t, entry.NextMedicineTime)

	rec = r.do(http.MethodPost, "/api/v1/symptoms", `{"temperature":38.7,"symptoms":["kašalj"]}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var result journal.NoteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Advice)
	require.Equal(t, "fever", result.Advice.ID)
}

func TestRouter_UpdateEntryNotFound(t *testing.T) {
	r := newRouterUnderTest(t)
	token := r.token(t, auth.TokenTypeAccess)

	rec := r.do(http.MethodPut, "/api/v1/entries/missing", `{"rawText":"x","category":"OTHER"}`, token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DeviceTokenOnlyTicks(t *testing.T) {
	r := newRouterUnderTest(t)
	device := r.token(t, auth.TokenTypeDevice)

	rec := r.do(http.MethodPost, "/api/v1/notes", `{"text":"x"}`, device)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = r.do(http.MethodPost, "/api/v1/reminders/tick", ``, device)
	require.Equal(t, http.StatusOK, rec.Code)
	var got tickResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Ran)
	require.Equal(t, 2, got.Stats.Delivered)

	r.trigger.ran = false
	rec = r.do(http.MethodPost, "/api/v1/reminders/tick", ``, device)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 2, r.trigger.calls)
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}, func() time.Time { return now })

	require.True(t, limiter.allow("access:user-1"))
	require.True(t, limiter.allow("access:user-1"))
	require.False(t, limiter.allow("access:user-1"))
	require.True(t, limiter.allow("access:user-2"))

	now = now.Add(time.Second)
	require.True(t, limiter.allow("access:user-1"))
	require.False(t, limiter.allow("access:user-1"))
}

func TestWithRetryReplaysGatewayFailures(t *testing.T) {
	attempts := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, `{"text":"mlijeko"}`, string(body))
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shopping/deals", bytes.NewBufferString(`{"text":"mlijeko"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, 2, attempts)
}

func TestWithRetrySkipsExcludedAndServerErrors(t *testing.T) {
	attempts := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.URL.Path == "/api/v1/notes" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := withRetry(inner, config.RetryConfig{Enabled: true, MaxAttempts: 3, Exclude: []string{"/api/v1/notes"}}, newTestLogger())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/notes", bytes.NewBufferString(`{}`)))
	require.Equal(t, 1, attempts)

	attempts = 0
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/advice", bytes.NewBufferString(`{}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, attempts)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, body []byte) map[string]map[string]string {
	t.Helper()
	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}
