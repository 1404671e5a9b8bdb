package advice

import (
	"context"
	"time"
)

// Template is a static advice card.
type Template struct {
	ID               string   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	ShortDescription string   `json:"shortDescription" yaml:"shortDescription"`
	Tips             []string `json:"tips" yaml:"tips"`
	DoctorWarning    string   `json:"doctorWarning,omitempty" yaml:"doctorWarning"`
	Keywords         []string `json:"keywords,omitempty" yaml:"keywords"`
}

// Deal is a search hit for one product. Deals are never persisted.
type Deal struct {
	ProductName string `json:"productName"`
	StoreName   string `json:"storeName"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
	Price       string `json:"price,omitempty"`
	Discount    string `json:"discount,omitempty"`
}

// DealSearcher looks up current promotions for a product.
type DealSearcher interface {
	SearchDeals(ctx context.Context, product, location string) ([]Deal, error)
}

// Config tunes the deal search flow.
type Config struct {
	MaxItems      int
	MaxDeals      int
	StopWords     []string
	SearchTimeout time.Duration
}

const (
	// ShoppingDealsID identifies the synthetic template built from deal results.
	ShoppingDealsID = "shopping_deals"

	defaultMaxItems = 5
	defaultMaxDeals = 5
)

var defaultStopWords = []string{
	"i", "and", "te", "još", "malo", "jedan", "jednu", "jedno", "dva", "dvije", "tri",
	"kg", "g", "l", "dl", "komad", "komada", "paket", "pakiranje", "the", "some", "a", "an",
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxItems:  defaultMaxItems,
		MaxDeals:  defaultMaxDeals,
		StopWords: defaultStopWords,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxItems <= 0 {
		c.MaxItems = defaultMaxItems
	}
	if c.MaxDeals <= 0 {
		c.MaxDeals = defaultMaxDeals
	}
	if c.StopWords == nil {
		c.StopWords = defaultStopWords
	}
	return c
}
