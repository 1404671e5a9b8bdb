package advice

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yanqian/familylog/pkg/metrics"
)

const (
	// hrkPerEUR is the fixed conversion rate; older listings still quote kuna.
	hrkPerEUR = 7.5345

	priceTolerance       = 1.5
	unknownProductCap    = 20.0
	shortProductNameMax  = 12
	percentWeight        = 10
	textualDiscountScore = 20
	priceBonus           = 5
)

var (
	numberPattern   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	percentPattern  = regexp.MustCompile(`(\d+)\s*%`)
	minusPercent    = regexp.MustCompile(`-\s*\d+\s*%`)
	saleMarkerWords = []string{"popust", "snižen", "akcija"}
)

// priceRange is the expected EUR shelf price of a product family.
type priceRange struct {
	product  string
	min, max float64
}

// Checked in order; the first product contained in the item name applies.
var expectedPrices = []priceRange{
	{"pelene", 5.0, 25.0},
	{"piletina", 4.0, 12.0},
	{"tjestenina", 0.6, 3.0},
	{"maslac", 1.5, 5.0},
	{"jogurt", 0.4, 2.0},
	{"mlijeko", 0.6, 2.0},
	{"brašno", 0.5, 2.0},
	{"šećer", 0.6, 2.0},
	{"kruh", 0.5, 3.0},
	{"jaja", 1.5, 5.0},
	{"sir", 2.0, 15.0},
	{"ulje", 1.5, 8.0},
	{"kava", 2.0, 10.0},
	{"riža", 1.0, 4.0},
	{"banane", 0.8, 2.5},
	{"jabuke", 0.8, 3.0},
	{"sok", 0.8, 3.5},
	{"voda", 0.3, 1.5},
}

var storeBonus = map[string]int{
	"lidl":     5,
	"kaufland": 3,
	"konzum":   2,
	"spar":     1,
}

type itemResult struct {
	item  string
	deals []Deal
	err   error
}

func (s *service) FindShoppingDealsAdvice(ctx context.Context, text, location string) (*Template, error) {
	if s.searcher == nil {
		return nil, nil
	}
	items := s.DealItems(text)
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]itemResult, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		deals, err := s.search(ctx, item, location)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results = append(results, itemResult{item: item, deals: deals, err: err})
	}

	best, stats := s.pickBestDeals(results)
	s.logger.Info("shopping deals evaluated",
		"items", stats.Items, "succeeded", stats.Succeeded, "failed", stats.Failed,
		"deals", stats.Deals, "kept", stats.Kept)
	if len(best) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(best))
	for _, d := range best {
		lines = append(lines, FormatDealLine(d))
	}
	return &Template{
		ID:               ShoppingDealsID,
		Title:            "Akcije za tvoju listu",
		ShortDescription: "Pronađene su akcije u trgovinama za proizvode s tvoje liste.",
		Tips:             lines,
	}, nil
}

func (s *service) search(ctx context.Context, item, location string) ([]Deal, error) {
	if s.cfg.SearchTimeout <= 0 {
		return s.searcher.SearchDeals(ctx, item, location)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()
	return s.searcher.SearchDeals(callCtx, item, location)
}

// DealItems extracts up to MaxItems distinct product names from a shopping note.
func (s *service) DealItems(text string) []string {
	var raw []string
	if s.formatter != nil {
		raw = s.formatter.Items(text)
	} else {
		raw = strings.Split(text, ",")
	}

	seen := make(map[string]struct{}, len(raw))
	items := make([]string, 0, s.cfg.MaxItems)
	for _, r := range raw {
		item := s.cleanItem(r)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, item)
		if len(items) == s.cfg.MaxItems {
			break
		}
	}
	return items
}

func (s *service) cleanItem(raw string) string {
	words := strings.Fields(raw)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, ".,;:!?"))
		if lw == "" || isNumeric(lw) {
			continue
		}
		if _, stop := s.stopWords[lw]; stop {
			continue
		}
		kept = append(kept, strings.Trim(w, ".,;:!?"))
	}
	return strings.Join(kept, " ")
}

// pickBestDeals folds per-item outcomes into one best deal per product, in item order.
func (s *service) pickBestDeals(results []itemResult) ([]Deal, metrics.SearchStats) {
	stats := metrics.SearchStats{Items: len(results)}
	order := make([]string, 0, len(results))
	best := make(map[string]Deal, len(results))
	scores := make(map[string]int, len(results))

	for _, r := range results {
		if r.err != nil {
			stats.Failed++
			s.logger.Warn("deal search failed", "item", r.item, "error", r.err)
			continue
		}
		stats.Succeeded++
		for _, d := range r.deals {
			stats.Deals++
			if !IsActuallyOnSale(d) || !IsGoodDeal(d) {
				continue
			}
			if d.ProductName == "" {
				d.ProductName = r.item
			}
			key := strings.ToLower(d.ProductName)
			score := ScoreDeal(d)
			prev, seen := scores[key]
			if !seen {
				order = append(order, key)
			}
			if !seen || score > prev {
				best[key] = d
				scores[key] = score
			}
		}
	}

	out := make([]Deal, 0, len(order))
	for _, key := range order {
		if len(out) == s.cfg.MaxDeals {
			break
		}
		out = append(out, best[key])
	}
	stats.Kept = len(out)
	return out, stats
}

// IsActuallyOnSale requires an explicit discount marker.
func IsActuallyOnSale(d Deal) bool {
	if strings.TrimSpace(d.Discount) != "" {
		return true
	}
	text := strings.ToLower(d.Title + " " + d.Snippet)
	for _, marker := range saleMarkerWords {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return minusPercent.MatchString(text)
}

// IsGoodDeal rejects prices far above the expected range. Deals without a
// parseable price pass.
func IsGoodDeal(d Deal) bool {
	price, ok := ParsePrice(d.Price)
	if !ok {
		return true
	}
	name := strings.ToLower(d.ProductName)
	for _, r := range expectedPrices {
		if strings.Contains(name, r.product) {
			return price <= r.max*priceTolerance
		}
	}
	if utf8.RuneCountInString(name) <= shortProductNameMax && price > unknownProductCap {
		return false
	}
	return true
}

// ScoreDeal ranks deals; higher is better.
func ScoreDeal(d Deal) int {
	score := 0
	if discount := strings.TrimSpace(d.Discount); discount != "" {
		if pct, ok := ParseDiscountPercent(discount); ok {
			score += percentWeight * pct
		} else {
			score += textualDiscountScore
		}
	}
	if strings.TrimSpace(d.Price) != "" {
		score += priceBonus
	}
	score += storeBonus[strings.ToLower(strings.TrimSpace(d.StoreName))]
	return score
}

// ParsePrice reads the first number of a price label as EUR, converting kuna.
func ParsePrice(label string) (float64, bool) {
	m := numberPattern.FindString(label)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	lower := strings.ToLower(label)
	if strings.Contains(lower, "kn") || strings.Contains(lower, "hrk") {
		v /= hrkPerEUR
	}
	return v, true
}

// ParseDiscountPercent extracts N from labels such as "-30%" or "30 % popust".
func ParseDiscountPercent(label string) (int, bool) {
	m := percentPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatDealLine renders "<product> – <store> – <price> (<discount>)".
func FormatDealLine(d Deal) string {
	price := strings.TrimSpace(d.Price)
	if price == "" {
		price = "cijena u trgovini"
	}
	discount := strings.TrimSpace(d.Discount)
	if discount == "" {
		discount = "akcija"
	}
	return fmt.Sprintf("%s – %s – %s (%s)", d.ProductName, d.StoreName, price, discount)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return s != ""
}
