package insight

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"trendhive/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *stubCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

const trendReply = `{
  "trendingCategories": ["Dresses", "Blazers", "Jeans", "Bags", "Shirts", "Trousers"],
  "trendingColors": ["Blue", "Beige"],
  "trendingStyles": ["Minimalist"],
  "consumerInsights": "Shoppers want linen.",
  "recommendations": {"forUsers": "Buy linen.", "forInventory": "Stock linen."}
}`

func TestAnalyzeTrendsFromModel(t *testing.T) {
	a := NewAnalyzer(&stubCompleter{reply: trendReply})

	res := a.AnalyzeTrends(context.Background(), catalog())
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, []string{"Dresses", "Blazers", "Jeans", "Bags", "Shirts"}, res.Data.TrendingCategories)
	assert.Equal(t, "Shoppers want linen.", res.Data.ConsumerInsights)
	assert.Equal(t, "Stock linen.", res.Data.Recommendations.ForInventory)
}

func TestAnalyzeTrendsFallsBack(t *testing.T) {
	cases := map[string]Completer{
		"no model":      nil,
		"error":         &stubCompleter{err: errors.New("quota exceeded")},
		"malformed":     &stubCompleter{reply: "not json"},
		"empty lists":   &stubCompleter{reply: `{"trendingCategories": []}`},
		"partial reply": &stubCompleter{reply: `{"trendingCategories": ["Dresses"]}`},
		"blank insights": &stubCompleter{reply: `{
  "trendingCategories": ["Dresses"], "trendingColors": ["Blue"], "trendingStyles": ["Modern"],
  "consumerInsights": "  ",
  "recommendations": {"forUsers": "Buy linen.", "forInventory": "Stock linen."}
}`},
		"missing inventory advice": &stubCompleter{reply: `{
  "trendingCategories": ["Dresses"], "trendingColors": ["Blue"], "trendingStyles": ["Modern"],
  "consumerInsights": "Shoppers want linen.",
  "recommendations": {"forUsers": "Buy linen."}
}`},
		"timeout": &stubCompleter{reply: trendReply, delay: time.Second},
	}
	for name, completer := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewAnalyzer(completer, WithTimeout(20*time.Millisecond))

			res := a.AnalyzeTrends(context.Background(), catalog())
			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, FallbackTrends(catalog()), res.Data)
		})
	}
}

func TestAnalyzeTrendsCachesModelAnswers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stub := &stubCompleter{reply: trendReply}
	a := NewAnalyzer(stub, WithCache(cache.New(rdb, "test"), time.Minute))
	ctx := context.Background()

	first := a.AnalyzeTrends(ctx, catalog())
	second := a.AnalyzeTrends(ctx, catalog())
	assert.Equal(t, SourceAI, second.Source)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int32(1), stub.calls.Load())

	// a catalog change misses the cache
	changed := catalog()[:3]
	a.AnalyzeTrends(ctx, changed)
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestAnalyzeTrendsDoesNotCachePartialReply(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := NewAnalyzer(&stubCompleter{reply: `{"trendingCategories": ["Dresses"]}`},
		WithCache(cache.New(rdb, "test"), time.Minute))

	res := a.AnalyzeTrends(context.Background(), catalog())
	assert.Equal(t, SourceFallback, res.Source)
	assert.Empty(t, mr.Keys())
}

func TestAnalyzeTrendsDoesNotCacheFallback(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stub := &stubCompleter{err: errors.New("down")}
	a := NewAnalyzer(stub, WithCache(cache.New(rdb, "test"), time.Minute))

	a.AnalyzeTrends(context.Background(), catalog())
	a.AnalyzeTrends(context.Background(), catalog())
	assert.Equal(t, int32(2), stub.calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestRecommendationsFromModelDropUnknownProducts(t *testing.T) {
	stub := &stubCompleter{reply: `{"recommendations": [
		{"productId": "ghost", "title": "Ghost", "reason": "x", "score": 99},
		{"productId": "dress", "title": "wrong title", "reason": "Fits your summer plans.", "score": 140},
		{"productId": "dress", "title": "dup", "reason": "dup", "score": 50},
		{"productId": "bag", "title": "Classic Handbag", "reason": "Pairs with the dress.", "score": 80}
	]}`}
	a := NewAnalyzer(stub)

	res := a.PersonalizedRecommendations(context.Background(), Profile{UserID: "u1"}, catalog())
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, []Recommendation{
		{ProductID: "dress", Title: "Summer Dress", Reason: "Fits your summer plans.", Score: 100},
		{ProductID: "bag", Title: "Classic Handbag", Reason: "Pairs with the dress.", Score: 80},
	}, res.Data)
}

func TestRecommendationsAcceptBareArray(t *testing.T) {
	stub := &stubCompleter{reply: `[{"productId": "jeans", "reason": "Classic.", "score": 70}]`}
	a := NewAnalyzer(stub)

	res := a.PersonalizedRecommendations(context.Background(), Profile{UserID: "u1"}, catalog())
	assert.Equal(t, SourceAI, res.Source)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Slim Fit Jeans", res.Data[0].Title)
}

func TestRecommendationsRoundFractionalScores(t *testing.T) {
	stub := &stubCompleter{reply: `{"recommendations": [
		{"productId": "jeans", "reason": "Classic.", "score": 87.5},
		{"productId": "bag", "reason": "Versatile.", "score": 0.2},
		{"productId": "dress", "reason": "Summer.", "score": 99.7}
	]}`}
	a := NewAnalyzer(stub)

	res := a.PersonalizedRecommendations(context.Background(), Profile{UserID: "u1"}, catalog())
	assert.Equal(t, SourceAI, res.Source)
	require.Len(t, res.Data, 3)
	assert.Equal(t, 88, res.Data[0].Score)
	assert.Equal(t, 1, res.Data[1].Score)
	assert.Equal(t, 100, res.Data[2].Score)
}

func TestRecommendationsFallBack(t *testing.T) {
	cases := map[string]Completer{
		"no model":      nil,
		"error":         &stubCompleter{err: errors.New("500")},
		"only unknowns": &stubCompleter{reply: `{"recommendations": [{"productId": "ghost", "score": 90}]}`},
		"malformed":     &stubCompleter{reply: `{"recommendations": "soon"}`},
	}
	for name, completer := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewAnalyzer(completer)

			res := a.PersonalizedRecommendations(context.Background(), Profile{UserID: "u1"}, catalog())
			assert.Equal(t, SourceFallback, res.Source)
			assert.Equal(t, FallbackRecommendations(catalog()), res.Data)
		})
	}
}

func TestAnalyzeTrendsSurvivesCancelledCaller(t *testing.T) {
	a := NewAnalyzer(&stubCompleter{reply: trendReply})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := a.AnalyzeTrends(ctx, catalog())
	assert.Equal(t, SourceAI, res.Source)
}

func TestPromptsCarryCatalog(t *testing.T) {
	prompt, err := trendPrompt(catalog())
	require.NoError(t, err)
	assert.Contains(t, prompt, `"subCategory":"blazers"`)
	assert.Contains(t, prompt, `"colors":["Beige"]`)

	prompt, err = recommendationPrompt(Profile{PurchaseHistory: catalog()[:1]}, catalog())
	require.NoError(t, err)
	assert.Contains(t, prompt, `"previousPurchases":[{"id":"shirt"`)
	assert.Contains(t, prompt, `"username":"user"`)
}
