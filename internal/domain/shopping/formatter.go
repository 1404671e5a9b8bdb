package shopping

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	minListWords      = 3
	maxAvgWordLength  = 8.0
	maxPhraseWindow   = 3
	minPhraseWindow   = 2
	itemTrimCutset    = " \t:;.-–"
	wordBoundaryClass = `[^\p{L}\p{N}]`
)

// Formatter turns dictated shopping notes into comma separated item lists.
// It is immutable after construction and safe for concurrent use.
type Formatter struct {
	keywords     *regexp.Regexp
	verbs        *regexp.Regexp
	prepositions map[string]struct{}
	conjunctions map[string]struct{}
	phrases      map[string]struct{}
}

// NewFormatter compiles a vocabulary into a formatter.
func NewFormatter(v Vocabulary) *Formatter {
	return &Formatter{
		keywords:     compileTerms(v.Keywords),
		verbs:        compileTerms(v.Verbs),
		prepositions: toSet(v.Prepositions),
		conjunctions: toSet(v.Conjunctions),
		phrases:      toSet(v.Phrases),
	}
}

// ProcessVoiceInput formats text as a shopping list when it looks like one and
// returns it unchanged otherwise. Formatting its own output is a no-op.
func (f *Formatter) ProcessVoiceInput(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if !f.HasShoppingIntent(text) && !f.LooksLikeList(text) {
		return text
	}
	items := f.Items(text)
	if len(items) == 0 {
		return text
	}
	return strings.Join(items, ", ")
}

// HasShoppingIntent reports whether any trigger keyword appears as a whole word.
func (f *Formatter) HasShoppingIntent(text string) bool {
	return f.keywords != nil && f.keywords.MatchString(text)
}

// LooksLikeList flags keyword-less input made of several short, verb-free tokens.
func (f *Formatter) LooksLikeList(text string) bool {
	if strings.ContainsAny(text, ",\n") {
		return false
	}
	words := strings.Fields(text)
	if len(words) < minListWords {
		return false
	}
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	if float64(total)/float64(len(words)) >= maxAvgWordLength {
		return false
	}
	return f.verbs == nil || !f.verbs.MatchString(text)
}

// Items strips trigger keywords and splits the rest into items.
func (f *Formatter) Items(text string) []string {
	cleaned := f.stripKeywords(text)

	parts := splitParts(cleaned)
	if len(parts) == 1 {
		if words := cleanWords(parts[0]); len(words) >= 2 {
			return f.segment(words)
		}
	}
	return parts
}

func (f *Formatter) stripKeywords(text string) string {
	if f.keywords == nil {
		return text
	}
	for {
		next := f.keywords.ReplaceAllString(text, "${1} ${2}")
		if next == text {
			return text
		}
		text = next
	}
}

// segment regroups space separated words, keeping known phrases and
// preposition constructs ("sok od jabuke") together.
func (f *Formatter) segment(words []string) []string {
	filtered := words[:0:0]
	for _, w := range words {
		if _, ok := f.conjunctions[strings.ToLower(w)]; ok {
			continue
		}
		filtered = append(filtered, w)
	}
	if len(filtered) > 0 {
		words = filtered
	}

	items := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		consumed := f.phraseAt(words, i)
		if consumed == 0 {
			consumed = 1
			if i+1 < len(words) && f.isPreposition(words[i+1]) {
				consumed = 2
				if i+2 < len(words) {
					consumed = 3
				}
			}
		} else if end := i + consumed; end < len(words) && f.isPreposition(words[end-1]) {
			consumed++
		}
		if item := strings.Join(words[i:i+consumed], " "); item != "" {
			items = append(items, item)
		}
		i += consumed
	}
	return items
}

// phraseAt returns the length of the longest known phrase starting at i, or 0.
func (f *Formatter) phraseAt(words []string, i int) int {
	for n := maxPhraseWindow; n >= minPhraseWindow; n-- {
		if i+n > len(words) {
			continue
		}
		candidate := strings.ToLower(strings.Join(words[i:i+n], " "))
		if _, ok := f.phrases[candidate]; ok {
			return n
		}
	}
	return 0
}

func (f *Formatter) isPreposition(word string) bool {
	_, ok := f.prepositions[strings.ToLower(word)]
	return ok
}

func splitParts(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' })
	parts := make([]string, 0, len(raw))
	for _, chunk := range raw {
		if item := normalizeItem(chunk); item != "" {
			parts = append(parts, item)
		}
	}
	return parts
}

func cleanWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if w = strings.Trim(w, itemTrimCutset); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func normalizeItem(s string) string {
	return strings.Join(cleanWords(s), " ")
}

// compileTerms builds a case-insensitive whole-word alternation, longest term first.
// Capture groups 1 and 2 hold the surrounding boundary characters.
func compileTerms(terms []string) *regexp.Regexp {
	sorted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			sorted = append(sorted, t)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	alts := make([]string, len(sorted))
	for i, t := range sorted {
		alts[i] = strings.Join(strings.Fields(regexp.QuoteMeta(t)), `\s+`)
	}
	return regexp.MustCompile(`(?i)(^|` + wordBoundaryClass + `)(?:` + strings.Join(alts, "|") + `)(` + wordBoundaryClass + `|$)`)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
