package advice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/familylog/internal/domain/logbook"
	"github.com/yanqian/familylog/internal/domain/shopping"
)

// Service selects advice for notes and builds deal advice for shopping lists.
type Service interface {
	FindAdvice(text string, category logbook.Category, symptoms []string) (Template, bool)
	FindShoppingDealsAdvice(ctx context.Context, text, location string) (*Template, error)
	AdviceByID(id string) (Template, bool)
	DealItems(text string) []string
}

type service struct {
	cfg       Config
	catalog   Catalog
	formatter *shopping.Formatter
	searcher  DealSearcher
	stopWords map[string]struct{}
	logger    *slog.Logger
}

// NewService wires the advice engine. searcher may be nil when deal search is disabled.
func NewService(cfg Config, catalog Catalog, formatter *shopping.Formatter, searcher DealSearcher, logger *slog.Logger) Service {
	cfg = cfg.withDefaults()
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &service{
		cfg:       cfg,
		catalog:   catalog,
		formatter: formatter,
		searcher:  searcher,
		stopWords: stop,
		logger:    logger.With("component", "advice.service"),
	}
}

// handler inspects lowercase text (and symptoms) and may pick a template id.
type handler func(lower string, symptoms []string) string

const (
	idColic        = "colic"
	idFever        = "fever"
	idCrying       = "crying"
	idFeeding      = "feeding"
	idSleepTrouble = "sleep_trouble"
	idSoothing     = "soothing"
	idFlatTire     = "flat_tire"
	idCarService   = "car_service"
	idAutoGeneral  = "auto_general"
	idHouseRepair  = "house_repair"
	idHouseGeneral = "house_general"
	idFinanceBill  = "finance_bill"
	idWorkReminder = "work_reminder"
	idShoppingList = "shopping_list"
	idSmartHome    = "smart_home"
)

// Categories without an entry fall through to the keyword scan.
var categoryHandlers = map[logbook.Category]handler{
	logbook.CategoryHealth:    healthAdvice,
	logbook.CategorySymptom:   healthAdvice,
	logbook.CategoryFeeding:   func(string, []string) string { return idFeeding },
	logbook.CategorySleep:     sleepAdvice,
	logbook.CategoryMood:      moodAdvice,
	logbook.CategoryAuto:      autoAdvice,
	logbook.CategoryHome:      houseAdvice,
	logbook.CategoryFinance:   func(string, []string) string { return idFinanceBill },
	logbook.CategorySmartHome: func(string, []string) string { return idSmartHome },
}

// scanAllowList restricts the keyword scan per category. nil means every template.
var scanAllowList = map[logbook.Category][]string{
	logbook.CategoryOther:    {},
	logbook.CategoryShopping: {idShoppingList},
	logbook.CategoryWork:     {idWorkReminder},
}

func (s *service) FindAdvice(text string, category logbook.Category, symptoms []string) (Template, bool) {
	lower := strings.ToLower(text)

	if h, ok := categoryHandlers[category]; ok {
		if id := h(lower, symptoms); id != "" {
			if t, found := s.catalog.Get(id); found {
				return t, true
			}
		}
	}
	return s.keywordScan(lower, category)
}

func (s *service) keywordScan(lower string, category logbook.Category) (Template, bool) {
	allowed, restricted := scanAllowList[category]
	for _, t := range s.catalog.templates {
		if restricted && !contains(allowed, t.ID) {
			continue
		}
		// work advice is only ever shown for work notes
		if t.ID == idWorkReminder && category != logbook.CategoryWork {
			continue
		}
		if containsAny(lower, t.Keywords) {
			return t.clone(), true
		}
	}
	return Template{}, false
}

func (s *service) AdviceByID(id string) (Template, bool) {
	return s.catalog.Get(id)
}

// healthAdvice checks structured symptoms before the note text. Any symptom that is
// neither temperature nor colic maps to the general fever card.
func healthAdvice(lower string, symptoms []string) string {
	for _, symptom := range symptoms {
		sym := strings.ToLower(strings.TrimSpace(symptom))
		switch {
		case sym == "":
			continue
		case strings.Contains(sym, "temperatur"):
			return idFever
		case strings.Contains(sym, "grč"), strings.Contains(sym, "bol u trbuhu"):
			return idColic
		default:
			return idFever
		}
	}

	switch {
	case containsAny(lower, []string{"grč", "colic"}):
		return idColic
	case containsAny(lower, []string{"temperatur", "fever", "vruć"}):
		return idFever
	case containsAny(lower, []string{"plače", "plač", "crying"}):
		return idCrying
	}
	return ""
}

func sleepAdvice(lower string, _ []string) string {
	if containsAny(lower, []string{"ne spava", "can't sleep", "trouble sleeping"}) {
		return idSleepTrouble
	}
	return ""
}

func moodAdvice(lower string, _ []string) string {
	if containsAny(lower, []string{"uzrujan", "nervozan", "stressed"}) {
		return idSoothing
	}
	return ""
}

func autoAdvice(lower string, _ []string) string {
	switch {
	case containsAny(lower, []string{"guma", "tire", "probušena", "procurila", "flat"}):
		return idFlatTire
	case containsAny(lower, []string{"servis", "service"}):
		return idCarService
	}
	return idAutoGeneral
}

func houseAdvice(lower string, _ []string) string {
	if containsAny(lower, []string{"pokvario", "broken", "broke"}) {
		return idHouseRepair
	}
	return idHouseGeneral
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
