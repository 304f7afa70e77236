// Package insight produces trend analyses and personalized recommendations
// from a chat-completion model, falling back to local heuristics whenever
// the model cannot answer.
package insight

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"trendhive/internal/model"
	"trendhive/pkg/cache"
	"trendhive/pkg/logger"
	metrics "trendhive/prometheus"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source tells where a result came from
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// MaxListSize bounds every list in a result
const MaxListSize = 5

// Result wraps advisory data with its source
type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
}

// TrendAnalysis is the catalog-wide trend report
type TrendAnalysis struct {
	TrendingCategories []string             `json:"trendingCategories"`
	TrendingColors     []string             `json:"trendingColors"`
	TrendingStyles     []string             `json:"trendingStyles"`
	ConsumerInsights   string               `json:"consumerInsights"`
	Recommendations    TrendRecommendations `json:"recommendations"`
}

// TrendRecommendations are the advice strings of a TrendAnalysis
type TrendRecommendations struct {
	ForUsers     string `json:"forUsers"`
	ForInventory string `json:"forInventory"`
}

// Recommendation suggests one catalog product to a shopper
type Recommendation struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Reason    string `json:"reason"`
	Score     int    `json:"score"`
}

// Profile is what is known about the shopper being advised
type Profile struct {
	UserID          string
	Name            string
	PurchaseHistory []model.Product
	ViewHistory     []model.Product
}

// Completer sends a system and user prompt to a chat model and returns the
// raw reply content
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ErrNoCompleter is reported when no model is configured
var ErrNoCompleter = errors.New("no completion model configured")

// Analyzer runs the AI calls with a timeout and turns every failure into
// fallback data
type Analyzer struct {
	completer Completer
	timeout   time.Duration
	cache     *cache.Cache
	cacheTTL  time.Duration
	group     singleflight.Group
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithTimeout bounds every model call
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// WithCache stores successful trend analyses for ttl
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheTTL = ttl
	}
}

// NewAnalyzer creates an Analyzer. A nil completer always falls back.
func NewAnalyzer(completer Completer, opts ...Option) *Analyzer {
	a := &Analyzer{completer: completer, timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) complete(ctx context.Context, system, prompt string) (string, error) {
	if a.completer == nil {
		return "", ErrNoCompleter
	}
	// shared callers must not be cut short by the first caller's cancellation
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()
	return a.completer.Complete(callCtx, system, prompt)
}

// AnalyzeTrends reports catalog trends. It never fails: any model error
// yields the locally computed analysis.
func (a *Analyzer) AnalyzeTrends(ctx context.Context, products []model.Product) Result[TrendAnalysis] {
	log := logger.FromContext(ctx)
	key := "trends:" + catalogDigest(products)

	if a.cache != nil {
		var cached TrendAnalysis
		hit, err := a.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("Trend cache read failed", zap.Error(err))
		}
		if hit {
			metrics.RecordInsight("trends", string(SourceAI))
			return Result[TrendAnalysis]{Data: cached, Source: SourceAI}
		}
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		prompt, err := trendPrompt(products)
		if err != nil {
			return nil, err
		}
		reply, err := a.complete(ctx, trendSystemPrompt, prompt)
		if err != nil {
			return nil, err
		}
		analysis, err := parseTrendReply(reply)
		if err != nil {
			return nil, err
		}
		if a.cache != nil {
			if err := a.cache.Set(ctx, key, analysis, a.cacheTTL); err != nil {
				log.Warn("Trend cache write failed", zap.Error(err))
			}
		}
		return analysis, nil
	})
	if err != nil {
		log.Warn("Trend analysis fell back to local tally", zap.Error(err))
		metrics.RecordInsight("trends", string(SourceFallback))
		return Result[TrendAnalysis]{Data: FallbackTrends(products), Source: SourceFallback}
	}

	metrics.RecordInsight("trends", string(SourceAI))
	return Result[TrendAnalysis]{Data: v.(TrendAnalysis), Source: SourceAI}
}

// PersonalizedRecommendations suggests up to MaxListSize products for the
// shopper. Replies naming products outside the catalog are dropped.
func (a *Analyzer) PersonalizedRecommendations(ctx context.Context, profile Profile, products []model.Product) Result[[]Recommendation] {
	log := logger.FromContext(ctx)

	v, err, _ := a.group.Do("recommendations:"+profile.UserID, func() (interface{}, error) {
		prompt, err := recommendationPrompt(profile, products)
		if err != nil {
			return nil, err
		}
		reply, err := a.complete(ctx, recommendationSystemPrompt, prompt)
		if err != nil {
			return nil, err
		}
		return parseRecommendationReply(reply, products)
	})
	if err != nil {
		log.Warn("Recommendations fell back to catalog flags",
			zap.String("user_id", profile.UserID),
			zap.Error(err))
		metrics.RecordInsight("recommendations", string(SourceFallback))
		return Result[[]Recommendation]{Data: FallbackRecommendations(products), Source: SourceFallback}
	}

	metrics.RecordInsight("recommendations", string(SourceAI))
	return Result[[]Recommendation]{Data: v.([]Recommendation), Source: SourceAI}
}

// catalogDigest changes whenever a product is added, removed or edited
func catalogDigest(products []model.Product) string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID+"@"+p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	sort.Strings(ids)
	h := fnv.New64a()
	for _, id := range ids {
		_, _ = h.Write([]byte(id))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
