package service

import (
	"context"
	"errors"
	"testing"

	"trendhive/internal/insight"
	"trendhive/internal/model"
	"trendhive/internal/session"
	"trendhive/pkg/config"
	"trendhive/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// recordingCompleter keeps the last prompt and always fails
type recordingCompleter struct {
	prompt string
}

func (r *recordingCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	r.prompt = prompt
	return "", errors.New("offline")
}

func TestTrendsUseWholeCatalog(t *testing.T) {
	f := newFixture(t)
	shirt, jeans, dress := seedCatalog(t, f)
	svc := NewInsightService(f.catalog, f.orders, nil, insight.NewAnalyzer(nil))

	res, err := svc.Trends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, insight.SourceFallback, res.Source)
	assert.Equal(t, insight.FallbackTrends([]model.Product{shirt, jeans, dress}).TrendingCategories,
		res.Data.TrendingCategories)
	assert.Equal(t, "women", res.Data.TrendingCategories[0])
}

func TestRecommendationsCarryPurchaseHistory(t *testing.T) {
	f := newFixture(t)
	shirt, jeans, dress := seedCatalog(t, f)
	auth := NewAuthService(f.store, session.NewMemoryStore(), jwtutil.NewJWTUtil(&config.JWTConfig{
		SigningKey:      "test-secret",
		ExpirationHours: 1,
	}))
	auth.bcryptCost = bcrypt.MinCost
	ctx := context.Background()

	reg, err := auth.Register(ctx, Registration{Email: "grace@example.com", Name: "Grace", Password: "secret1"})
	require.NoError(t, err)
	userID := reg.User.ID

	_, err = f.carts.AddItem(ctx, userID, model.CartItem{ProductID: jeans.ID, Quantity: 1, Size: "32"})
	require.NoError(t, err)
	_, err = f.orders.Place(ctx, userID, testAddress())
	require.NoError(t, err)

	completer := &recordingCompleter{}
	svc := NewInsightService(f.catalog, f.orders, auth, insight.NewAnalyzer(completer))

	res, err := svc.Recommendations(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, insight.SourceFallback, res.Source)
	require.Len(t, res.Data, 3)
	assert.Equal(t, jeans.ID, res.Data[0].ProductID)
	assert.Equal(t, dress.ID, res.Data[1].ProductID)
	assert.Equal(t, shirt.ID, res.Data[2].ProductID)

	assert.Contains(t, completer.prompt, `"previousPurchases":[{"id":"`+jeans.ID+`"`)
	assert.Contains(t, completer.prompt, `"username":"Grace"`)
}

func TestPurchasedProductsSkipsDelistedAndRepeats(t *testing.T) {
	products := []model.Product{{ID: "a"}, {ID: "b"}}
	orders := []model.Order{
		{Items: []model.OrderItem{{ProductID: "b"}, {ProductID: "gone"}}},
		{Items: []model.OrderItem{{ProductID: "a"}, {ProductID: "b"}}},
	}

	got := purchasedProducts(orders, products)
	assert.Equal(t, []model.Product{{ID: "b"}, {ID: "a"}}, got)
}
