package insight

import (
	"sort"
	"strings"

	"trendhive/internal/model"
)

var styleKeywords = []string{"casual", "formal", "vintage", "modern", "minimalist", "sustainable", "athleisure"}

var (
	genericCategories = []string{"Casual Wear", "Athleisure", "Minimalist Basics", "Sustainable Fashion", "Summer Essentials"}
	genericColors     = []string{"Natural White", "Sage Green", "Navy Blue", "Earth Tones", "Soft Pastels"}
	genericStyles     = []string{"Minimalist", "Sustainable", "Versatile", "Comfort-focused", "Timeless"}
)

const (
	fallbackInsights = "Our current product collection shows a strong preference for versatile and sustainable fashion. " +
		"Customers are prioritizing comfort while seeking pieces that can transition between different settings, " +
		"with a focus on quality and longevity."
	fallbackForUsers = "Look for versatile pieces that can be mixed and matched across your wardrobe. " +
		"Consider investing in quality basics with sustainable materials that will last across multiple seasons."
	fallbackForInventory = "Expand the selection of sustainable and versatile pieces. " +
		"Focus on quality basics in neutral colors that can be layered and styled in multiple ways."
)

const (
	reasonFeatured   = "This is one of our featured products that matches your style preferences."
	reasonNewArrival = "Just arrived in our collection and aligns with your previous browsing history."
	reasonOnSale     = "Currently on sale and similar to items you've shown interest in."
)

// tally counts occurrences and remembers first-seen order for ties
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(key string) {
	if key == "" {
		return
	}
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// top returns up to n keys by descending count, ties in first-seen order
func (t *tally) top(n int) []string {
	keys := append([]string(nil), t.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.counts[keys[i]] > t.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func orDefault(values, generic []string) []string {
	if len(values) == 0 {
		return append([]string(nil), generic...)
	}
	return values
}

// FallbackTrends tallies categories, subcategories, colors and style
// keywords across the catalog
func FallbackTrends(products []model.Product) TrendAnalysis {
	categories, colors, styles := newTally(), newTally(), newTally()
	for _, p := range products {
		categories.add(p.Category)
		categories.add(p.SubCategory)
		for _, c := range p.Colors {
			colors.add(c.Name)
		}
		description := strings.ToLower(p.Description)
		for _, keyword := range styleKeywords {
			if strings.Contains(description, keyword) {
				styles.add(keyword)
			}
		}
	}

	return TrendAnalysis{
		TrendingCategories: orDefault(categories.top(MaxListSize), genericCategories),
		TrendingColors:     orDefault(colors.top(MaxListSize), genericColors),
		TrendingStyles:     orDefault(styles.top(MaxListSize), genericStyles),
		ConsumerInsights:   fallbackInsights,
		Recommendations: TrendRecommendations{
			ForUsers:     fallbackForUsers,
			ForInventory: fallbackForInventory,
		},
	}
}

// FallbackRecommendations picks the first two featured products, the first
// two new arrivals and the first on-sale product, skipping products already
// picked. Scores and reasons follow the list that picked the product.
func FallbackRecommendations(products []model.Product) []Recommendation {
	picks := []struct {
		limit  int
		match  func(model.Product) bool
		score  int
		reason string
	}{
		{2, func(p model.Product) bool { return p.Featured }, 92, reasonFeatured},
		{2, func(p model.Product) bool { return p.NewArrival }, 88, reasonNewArrival},
		{1, func(p model.Product) bool { return p.OnSale }, 85, reasonOnSale},
	}

	chosen := map[string]bool{}
	out := []Recommendation{}
	for _, pick := range picks {
		taken := 0
		for _, p := range products {
			if taken == pick.limit {
				break
			}
			if !pick.match(p) || chosen[p.ID] {
				continue
			}
			chosen[p.ID] = true
			taken++
			out = append(out, Recommendation{
				ProductID: p.ID,
				Title:     p.Title,
				Reason:    pick.reason,
				Score:     pick.score,
			})
		}
	}
	return out
}
