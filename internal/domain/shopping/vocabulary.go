package shopping

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary holds the locale specific word lists driving the formatter.
type Vocabulary struct {
	Keywords     []string `yaml:"keywords"`
	Verbs        []string `yaml:"verbs"`
	Prepositions []string `yaml:"prepositions"`
	Conjunctions []string `yaml:"conjunctions"`
	Phrases      []string `yaml:"phrases"`
}

// DefaultVocabulary returns the embedded Croatian/English vocabulary.
func DefaultVocabulary() Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("shopping: embedded vocabulary invalid: %v", err))
	}
	return v
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(raw []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return Vocabulary{}, err
	}
	if len(v.Keywords) == 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary has no keywords")
	}
	return v, nil
}
