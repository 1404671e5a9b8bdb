package advice

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the ordered, read-only set of advice templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

type catalogDocument struct {
	Templates []Template `yaml:"templates"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("advice: embedded catalog invalid: %v", err))
	}
	return c
}

// ParseCatalog decodes a YAML catalog document. Template ids must be unique.
func ParseCatalog(raw []byte) (Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Catalog{}, err
	}
	if len(doc.Templates) == 0 {
		return Catalog{}, fmt.Errorf("catalog has no templates")
	}
	c := Catalog{
		templates: make([]Template, 0, len(doc.Templates)),
		byID:      make(map[string]int, len(doc.Templates)),
	}
	for _, t := range doc.Templates {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return Catalog{}, fmt.Errorf("template without id")
		}
		if _, dup := c.byID[t.ID]; dup {
			return Catalog{}, fmt.Errorf("duplicate template id %q", t.ID)
		}
		keywords := make([]string, 0, len(t.Keywords))
		for _, kw := range t.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		t.Keywords = keywords
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// Get returns a copy of the template with the given id.
func (c Catalog) Get(id string) (Template, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[idx].clone(), true
}

// Len reports the number of templates.
func (c Catalog) Len() int {
	return len(c.templates)
}

func (t Template) clone() Template {
	t.Tips = append([]string(nil), t.Tips...)
	t.Keywords = append([]string(nil), t.Keywords...)
	return t
}
