package service

import (
	"context"

	"trendhive/internal/insight"
	"trendhive/internal/model"
	"trendhive/pkg/logger"

	"go.uber.org/zap"
)

// InsightService feeds the catalog and a shopper's history to the trend
// analyzer
type InsightService struct {
	catalog  *CatalogService
	orders   *OrderService
	auth     *AuthService
	analyzer *insight.Analyzer
}

// NewInsightService creates an InsightService. auth may be nil, in which
// case recommendations are addressed to an anonymous shopper.
func NewInsightService(catalog *CatalogService, orders *OrderService, auth *AuthService, analyzer *insight.Analyzer) *InsightService {
	return &InsightService{catalog: catalog, orders: orders, auth: auth, analyzer: analyzer}
}

// Trends analyzes the whole catalog. Only a failing catalog read is an error.
func (s *InsightService) Trends(ctx context.Context) (insight.Result[insight.TrendAnalysis], error) {
	products, err := s.catalog.All(ctx)
	if err != nil {
		return insight.Result[insight.TrendAnalysis]{}, err
	}
	return s.analyzer.AnalyzeTrends(ctx, products), nil
}

// Recommendations suggests products for userID based on what they ordered
func (s *InsightService) Recommendations(ctx context.Context, userID string) (insight.Result[[]insight.Recommendation], error) {
	products, err := s.catalog.All(ctx)
	if err != nil {
		return insight.Result[[]insight.Recommendation]{}, err
	}
	orders, err := s.orders.ListForUser(ctx, userID)
	if err != nil {
		return insight.Result[[]insight.Recommendation]{}, err
	}

	profile := insight.Profile{
		UserID:          userID,
		PurchaseHistory: purchasedProducts(orders, products),
	}
	if s.auth != nil {
		user, err := s.auth.CurrentUser(ctx, userID)
		if err != nil {
			logger.FromContext(ctx).Warn("Recommendation profile without user name",
				zap.String("user_id", userID),
				zap.Error(err))
		} else {
			profile.Name = user.Name
		}
	}

	return s.analyzer.PersonalizedRecommendations(ctx, profile, products), nil
}

// purchasedProducts resolves ordered product ids against the current catalog,
// most recent order first. Products no longer listed are skipped.
func purchasedProducts(orders []model.Order, products []model.Product) []model.Product {
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	seen := map[string]bool{}
	var out []model.Product
	for _, o := range orders {
		for _, item := range o.Items {
			p, ok := byID[item.ProductID]
			if !ok || seen[item.ProductID] {
				continue
			}
			seen[item.ProductID] = true
			out = append(out, p)
		}
	}
	return out
}
