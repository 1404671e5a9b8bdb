package classifier

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/familylog/internal/domain/logbook"
)

//go:embed rules.yaml
var defaultRules []byte

// fixedPriority is the head of the category scan. Rule sets may append
// categories after it but never reorder or drop these.
var fixedPriority = []logbook.Category{
	logbook.CategoryHealth,
	logbook.CategorySleep,
	logbook.CategoryMood,
	logbook.CategoryDevelopment,
	logbook.CategorySchool,
	logbook.CategoryHome,
}

// Rules are the keyword tables driving classification. They are read-only once built.
type Rules struct {
	Categories []CategoryRule `yaml:"categories"`
	Moods      []MoodRule     `yaml:"moods"`
	MaxTags    int            `yaml:"maxTags"`
	Tags       []TagRule      `yaml:"tags"`
	Medicine   MedicineRules  `yaml:"medicine"`
	Feeding    []FeedingRule  `yaml:"feeding"`
}

// CategoryRule maps keywords to a category. Order in Rules.Categories is priority order.
// Keywords hit as substrings; Words only hit as whole words.
type CategoryRule struct {
	Category logbook.Category `yaml:"category"`
	Keywords []string         `yaml:"keywords"`
	Words    []string         `yaml:"words"`
}

// MoodRule maps keywords to a mood.
type MoodRule struct {
	Mood     logbook.Mood `yaml:"mood"`
	Keywords []string     `yaml:"keywords"`
}

// TagRule maps a keyword to a tag.
type TagRule struct {
	Keyword string `yaml:"keyword"`
	Tag     string `yaml:"tag"`
}

// MedicineRules lists the words that introduce a medicine name.
type MedicineRules struct {
	Named   []string `yaml:"named"`
	Generic []string `yaml:"generic"`
}

// FeedingRule maps keywords to a feeding type.
type FeedingRule struct {
	Type     logbook.FeedingType `yaml:"type"`
	Keywords []string            `yaml:"keywords"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() Rules {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("classifier: embedded rules invalid: %v", err))
	}
	return rules
}

// ParseRules decodes and normalizes a YAML rule document.
func ParseRules(raw []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return Rules{}, err
	}
	if err := rules.normalize(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r *Rules) normalize() error {
	if len(r.Categories) == 0 {
		return fmt.Errorf("no category rules")
	}
	for i := range r.Categories {
		parsed := logbook.ParseCategory(string(r.Categories[i].Category))
		if parsed == logbook.CategoryOther && !strings.EqualFold(string(r.Categories[i].Category), string(logbook.CategoryOther)) {
			return fmt.Errorf("unknown category %q", r.Categories[i].Category)
		}
		r.Categories[i].Category = parsed
		r.Categories[i].Keywords = lowerAll(r.Categories[i].Keywords)
		r.Categories[i].Words = lowerAll(r.Categories[i].Words)
	}
	if len(r.Categories) < len(fixedPriority) {
		return fmt.Errorf("category rules must start with %v", fixedPriority)
	}
	for i, want := range fixedPriority {
		if r.Categories[i].Category != want {
			return fmt.Errorf("category rule %d is %s, want %s", i, r.Categories[i].Category, want)
		}
	}
	for i := range r.Moods {
		switch r.Moods[i].Mood {
		case logbook.MoodVeryBad, logbook.MoodBad, logbook.MoodVeryGood, logbook.MoodGood:
		default:
			return fmt.Errorf("unknown mood %q", r.Moods[i].Mood)
		}
		r.Moods[i].Keywords = lowerAll(r.Moods[i].Keywords)
	}
	for i := range r.Tags {
		r.Tags[i].Keyword = strings.ToLower(strings.TrimSpace(r.Tags[i].Keyword))
		r.Tags[i].Tag = strings.ToLower(strings.TrimSpace(r.Tags[i].Tag))
	}
	if r.MaxTags <= 0 {
		r.MaxTags = 3
	}
	r.Medicine.Named = lowerAll(r.Medicine.Named)
	r.Medicine.Generic = lowerAll(r.Medicine.Generic)
	for i := range r.Feeding {
		r.Feeding[i].Keywords = lowerAll(r.Feeding[i].Keywords)
	}
	return nil
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsWord(words map[string]struct{}, wanted []string) bool {
	for _, w := range wanted {
		if _, ok := words[w]; ok {
			return true
		}
	}
	return false
}

func wordSet(lower string) map[string]struct{} {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
