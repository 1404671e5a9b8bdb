package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yanqian/familylog/internal/domain/logbook"
)

const maxMedicineNameRunes = 50

var (
	// Ordered most to least explicit; the bare 3x.y form is only trusted for health notes.
	temperaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:temperatur|temp|fever|vruć)[^0-9]*([0-9]+[.,][0-9]+)`),
		regexp.MustCompile(`([0-9]+[.,][0-9]+)[^0-9]*(?:°|celzij|celzija|celsius)`),
		regexp.MustCompile(`([0-9]+)[^0-9]*(?:°|celzij|celzija|celsius)`),
	}
	bareTemperature = regexp.MustCompile(`(3[0-9][.,][0-9]+)`)
	bottleAmount    = regexp.MustCompile(`([0-9]+)\s*(?:ml|mililitar)`)
	nameSeparators  = regexp.MustCompile(`[\s,.]`)
)

// Classifier maps note text to a category, mood and tags using keyword rules.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules    Rules
	medicine []medicineMatcher
}

type medicineMatcher struct {
	pattern *regexp.Regexp
	keyword string
	named   bool
}

// New builds a classifier over the given rules.
func New(rules Rules) *Classifier {
	matchers := make([]medicineMatcher, 0, len(rules.Medicine.Named)+len(rules.Medicine.Generic))
	for _, kw := range rules.Medicine.Named {
		matchers = append(matchers, medicineMatcher{pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw)), keyword: kw, named: true})
	}
	for _, kw := range rules.Medicine.Generic {
		matchers = append(matchers, medicineMatcher{pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(kw)), keyword: kw})
	}
	return &Classifier{rules: rules, medicine: matchers}
}

// Classify always returns a value; unmatched text is OTHER with no mood.
func (c *Classifier) Classify(text string) logbook.ClassifiedMetadata {
	lower := strings.ToLower(text)
	category := c.category(lower)

	meta := logbook.ClassifiedMetadata{
		Category: category,
		Tags:     c.tags(lower),
		Mood:     c.mood(lower),
		Medicine: c.medicineName(text),
	}
	if temp, ok := extractTemperature(lower, category == logbook.CategoryHealth); ok {
		meta.Temperature = &temp
	}
	if category == logbook.CategoryFeeding {
		meta.FeedingType, meta.FeedingAmountML = c.feeding(lower)
	}
	return meta
}

func (c *Classifier) category(lower string) logbook.Category {
	var words map[string]struct{}
	for _, rule := range c.rules.Categories {
		if containsAny(lower, rule.Keywords) {
			return rule.Category
		}
		if len(rule.Words) == 0 {
			continue
		}
		if words == nil {
			words = wordSet(lower)
		}
		if containsWord(words, rule.Words) {
			return rule.Category
		}
	}
	return logbook.CategoryOther
}

func (c *Classifier) mood(lower string) *logbook.Mood {
	for _, rule := range c.rules.Moods {
		if containsAny(lower, rule.Keywords) {
			mood := rule.Mood
			return &mood
		}
	}
	return nil
}

func (c *Classifier) tags(lower string) []string {
	tags := make([]string, 0, c.rules.MaxTags)
	seen := make(map[string]struct{}, c.rules.MaxTags)
	for _, rule := range c.rules.Tags {
		if len(tags) == c.rules.MaxTags {
			break
		}
		if _, dup := seen[rule.Tag]; dup {
			continue
		}
		if strings.Contains(lower, rule.Keyword) {
			seen[rule.Tag] = struct{}{}
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

func (c *Classifier) medicineName(text string) string {
	for _, m := range c.medicine {
		loc := m.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if m.named {
			return text[loc[0]:loc[1]]
		}
		after := strings.TrimSpace(text[loc[1]:])
		next := nameSeparators.Split(after, 2)[0]
		if utf8.RuneCountInString(next) > 2 {
			return truncateRunes(next, maxMedicineNameRunes)
		}
		return m.keyword
	}
	return ""
}

func (c *Classifier) feeding(lower string) (*logbook.FeedingType, *int) {
	for _, rule := range c.rules.Feeding {
		if !containsAny(lower, rule.Keywords) {
			continue
		}
		feedingType := rule.Type
		if feedingType != logbook.FeedingBottle {
			return &feedingType, nil
		}
		if m := bottleAmount.FindStringSubmatch(lower); m != nil {
			if ml, err := strconv.Atoi(m[1]); err == nil {
				return &feedingType, &ml
			}
		}
		return &feedingType, nil
	}
	return nil, nil
}

func extractTemperature(lower string, allowBare bool) (float64, bool) {
	patterns := temperaturePatterns
	if allowBare {
		patterns = append(patterns[:len(patterns):len(patterns)], bareTemperature)
	}
	for _, p := range patterns {
		m := p.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
