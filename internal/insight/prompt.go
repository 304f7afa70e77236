package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"trendhive/internal/model"
)

const (
	trendSystemPrompt          = "You are a fashion trend analysis expert for an e-commerce platform."
	recommendationSystemPrompt = "You are a personalized fashion recommendation engine."
)

type trendProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Colors      []string `json:"colors"`
	Featured    bool     `json:"featured"`
	NewArrival  bool     `json:"newArrival"`
	OnSale      bool     `json:"onSale"`
	Inventory   int      `json:"inventory"`
}

type profileProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
}

type catalogProduct struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Price       int64    `json:"price"`
	Colors      []string `json:"colors"`
	Featured    bool     `json:"featured"`
	NewArrival  bool     `json:"newArrival"`
	OnSale      bool     `json:"onSale"`
}

func trendPrompt(products []model.Product) (string, error) {
	summary := make([]trendProduct, 0, len(products))
	for _, p := range products {
		summary = append(summary, trendProduct{
			ID:          p.ID,
			Title:       p.Title,
			Category:    p.Category,
			SubCategory: p.SubCategory,
			Colors:      p.ColorNames(),
			Featured:    p.Featured,
			NewArrival:  p.NewArrival,
			OnSale:      p.OnSale,
			Inventory:   p.Inventory,
		})
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Analyze the following product catalog data and identify current fashion trends:

%s

Based on the catalog data, please provide:
1. Top 3 trending product categories
2. Top 3 trending colors
3. Top 3 trending styles or themes
4. Brief consumer insights (2-3 sentences)
5. Recommendations for both users and inventory management

Format your response as JSON with the following structure:
{
  "trendingCategories": ["category1", "category2", "category3"],
  "trendingColors": ["color1", "color2", "color3"],
  "trendingStyles": ["style1", "style2", "style3"],
  "consumerInsights": "Brief insights about current consumer behavior and preferences",
  "recommendations": {
    "forUsers": "Recommendation for shoppers",
    "forInventory": "Recommendation for inventory management"
  }
}`, data), nil
}

func profileProducts(products []model.Product) []profileProduct {
	out := make([]profileProduct, 0, len(products))
	for _, p := range products {
		out = append(out, profileProduct{ID: p.ID, Title: p.Title, Category: p.Category, SubCategory: p.SubCategory})
	}
	return out
}

func recommendationPrompt(profile Profile, products []model.Product) (string, error) {
	name := profile.Name
	if name == "" {
		name = "user"
	}
	userData, err := json.Marshal(struct {
		PreviousPurchases []profileProduct `json:"previousPurchases"`
		ViewHistory       []profileProduct `json:"viewHistory"`
		Username          string           `json:"username"`
	}{
		PreviousPurchases: profileProducts(profile.PurchaseHistory),
		ViewHistory:       profileProducts(profile.ViewHistory),
		Username:          name,
	})
	if err != nil {
		return "", err
	}

	catalog := make([]catalogProduct, 0, len(products))
	for _, p := range products {
		catalog = append(catalog, catalogProduct{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			SubCategory: p.SubCategory,
			Price:       p.Price,
			Colors:      p.ColorNames(),
			Featured:    p.Featured,
			NewArrival:  p.NewArrival,
			OnSale:      p.OnSale,
		})
	}
	catalogData, err := json.Marshal(catalog)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Based on the user's profile and previous interactions, recommend 5 products from our catalog.

User Profile:
%s

Available Products:
%s

For each recommended product, provide:
1. Product ID
2. Product title
3. A brief reason why you're recommending it (1 sentence)
4. A recommendation score from 1-100 based on how well it matches the user's preferences

Format your response as a JSON object with the following structure:
{
  "recommendations": [
    {
      "productId": "product id from the catalog",
      "title": "Product Name",
      "reason": "Brief reason for recommendation",
      "score": 85
    }
  ]
}

Only include products from the available catalog and ensure recommendations are personalized to the user's preferences.`, userData, catalogData), nil
}

// ErrMalformedReply is reported for replies that do not carry usable data
var ErrMalformedReply = errors.New("malformed model reply")

func capList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
		if len(out) == MaxListSize {
			break
		}
	}
	return out
}

func parseTrendReply(reply string) (TrendAnalysis, error) {
	var analysis TrendAnalysis
	if err := json.Unmarshal([]byte(reply), &analysis); err != nil {
		return TrendAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	analysis.TrendingCategories = capList(analysis.TrendingCategories)
	analysis.TrendingColors = capList(analysis.TrendingColors)
	analysis.TrendingStyles = capList(analysis.TrendingStyles)
	analysis.ConsumerInsights = strings.TrimSpace(analysis.ConsumerInsights)
	analysis.Recommendations.ForUsers = strings.TrimSpace(analysis.Recommendations.ForUsers)
	analysis.Recommendations.ForInventory = strings.TrimSpace(analysis.Recommendations.ForInventory)

	switch {
	case len(analysis.TrendingCategories) == 0:
		return TrendAnalysis{}, fmt.Errorf("%w: no trending categories", ErrMalformedReply)
	case len(analysis.TrendingColors) == 0:
		return TrendAnalysis{}, fmt.Errorf("%w: no trending colors", ErrMalformedReply)
	case len(analysis.TrendingStyles) == 0:
		return TrendAnalysis{}, fmt.Errorf("%w: no trending styles", ErrMalformedReply)
	case analysis.ConsumerInsights == "":
		return TrendAnalysis{}, fmt.Errorf("%w: no consumer insights", ErrMalformedReply)
	case analysis.Recommendations.ForUsers == "" || analysis.Recommendations.ForInventory == "":
		return TrendAnalysis{}, fmt.Errorf("%w: incomplete recommendations", ErrMalformedReply)
	}
	return analysis, nil
}

// parseRecommendationReply accepts a bare array or an object holding one
// under "recommendations"
func parseRecommendationReply(reply string, products []model.Product) ([]Recommendation, error) {
	var recs []recommendationReply
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &recs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
	} else {
		var wrapped struct {
			Recommendations []recommendationReply `json:"recommendations"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		recs = wrapped.Recommendations
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	seen := map[string]bool{}
	out := make([]Recommendation, 0, MaxListSize)
	for _, rec := range recs {
		p, ok := byID[rec.ProductID]
		if !ok || seen[rec.ProductID] {
			continue
		}
		seen[rec.ProductID] = true
		out = append(out, Recommendation{
			ProductID: p.ID,
			Title:     p.Title,
			Reason:    strings.TrimSpace(rec.Reason),
			Score:     clampScore(rec.Score),
		})
		if len(out) == MaxListSize {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no catalog products recommended", ErrMalformedReply)
	}
	return out, nil
}

// recommendationReply is one model suggestion; scores may be fractional
type recommendationReply struct {
	ProductID string  `json:"productId"`
	Reason    string  `json:"reason"`
	Score     float64 `json:"score"`
}

func clampScore(score float64) int {
	rounded := int(math.Round(score))
	if rounded < 1 {
		return 1
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
