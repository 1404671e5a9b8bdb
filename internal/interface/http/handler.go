package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/familylog/internal/domain/advice"
	"github.com/yanqian/familylog/internal/domain/journal"
	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/domain/shopping"
	"github.com/yanqian/familylog/pkg/metrics"
)

// ReminderTrigger runs one reminder tick unless one is already in flight.
type ReminderTrigger interface {
	Trigger(ctx context.Context) (metrics.TickStats, bool, error)
}

// HandlerConfig carries request defaults.
type HandlerConfig struct {
	DefaultLocation string
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	cfg       HandlerConfig
	journal   journal.Service
	advice    advice.Service
	formatter *shopping.Formatter
	reminders ReminderTrigger
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg HandlerConfig, journalSvc journal.Service, adviceSvc advice.Service, formatter *shopping.Formatter, reminders ReminderTrigger, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		journal:   journalSvc,
		advice:    adviceSvc,
		formatter: formatter,
		reminders: reminders,
		logger:    logger.With("component", "http.handler"),
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type adviceRequest struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Symptoms []string `json:"symptoms"`
}

type dealsRequest struct {
	Text     string `json:"text"`
	Location string `json:"location"`
}

type formatResponse struct {
	Text       string   `json:"text"`
	Items      []string `json:"items"`
	IsShopping bool     `json:"isShopping"`
}

type tickResponse struct {
	Ran   bool              `json:"ran"`
	Stats metrics.TickStats `json:"stats"`
}

// ProcessNote classifies a transcribed note, attaches advice and stores it.
func (h *Handler) ProcessNote(c *gin.Context) {
	var req journal.NoteRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.journal.ProcessNote(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "note_failed"))
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ClassifyNote returns the metadata a note would be stored with.
func (h *Handler) ClassifyNote(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "text is required", nil))
		return
	}
	c.JSON(http.StatusOK, h.journal.Classify(req.Text))
}

// ListEntries returns entries newest first, optionally filtered by personId.
func (h *Handler) ListEntries(c *gin.Context) {
	entries, err := h.journal.ListEntries(c.Request.Context(), c.Query("personId"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "entries_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// UpdateEntry replaces an entry; reminders of the old version are withdrawn.
func (h *Handler) UpdateEntry(c *gin.Context) {
	var entry logbook.Entry
	if !bindJSON(c, &entry) {
		return
	}
	entry.ID = c.Param("id")
	if err := h.journal.UpdateEntry(c.Request.Context(), entry); err != nil {
		abortWithError(c, fromDomainError(err, "entry_update_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// FindAdvice answers with a template or 204 when nothing applies.
func (h *Handler) FindAdvice(c *gin.Context) {
	var req adviceRequest
	if !bindJSON(c, &req) {
		return
	}
	category := logbook.CategoryOther
	if strings.TrimSpace(req.Category) != "" {
		category = logbook.ParseCategory(req.Category)
	}
	tpl, ok := h.advice.FindAdvice(req.Text, category, req.Symptoms)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// FormatShopping normalises a dictated shopping list.
func (h *Handler) FormatShopping(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	formatted := h.formatter.ProcessVoiceInput(req.Text)
	c.JSON(http.StatusOK, formatResponse{
		Text:       formatted,
		Items:      h.formatter.Items(req.Text),
		IsShopping: h.formatter.HasShoppingIntent(req.Text),
	})
}

// ShoppingDeals looks up promotions for the listed items.
func (h *Handler) ShoppingDeals(c *gin.Context) {
	var req dealsRequest
	if !bindJSON(c, &req) {
		return
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = h.cfg.DefaultLocation
	}
	tpl, err := h.advice.FindShoppingDealsAdvice(c.Request.Context(), req.Text, location)
	if err != nil {
		abortWithError(c, fromDomainError(err, "deal_search_failed"))
		return
	}
	if tpl == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// AddPerson registers a family member.
func (h *Handler) AddPerson(c *gin.Context) {
	var person logbook.Person
	if !bindJSON(c, &person) {
		return
	}
	stored, err := h.journal.AddPerson(c.Request.Context(), person)
	if err != nil {
		abortWithError(c, fromDomainError(err, "person_failed"))
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// NextVaccination returns the next recommended vaccination or 204.
func (h *Handler) NextVaccination(c *gin.Context) {
	rec, err := h.journal.NextVaccinationFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "vaccination_failed"))
		return
	}
	if rec == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AddMedicine logs a dose.
func (h *Handler) AddMedicine(c *gin.Context) {
	var req journal.MedicineRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.journal.AddMedicine(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "medicine_failed"))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// AddSymptom logs a temperature reading or symptoms.
func (h *Handler) AddSymptom(c *gin.Context) {
	var req journal.SymptomRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.journal.AddSymptom(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "symptom_failed"))
		return
	}
	c.JSON(http.StatusCreated, result)
}

// TickReminders runs one reminder pass now. ran=false means a tick was already running.
func (h *Handler) TickReminders(c *gin.Context) {
	stats, ran, err := h.reminders.Trigger(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err, "reminder_tick_failed"))
		return
	}
	status := http.StatusOK
	if !ran {
		status = http.StatusAccepted
	}
	c.JSON(status, tickResponse{Ran: ran, Stats: stats})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return false
	}
	return true
}
