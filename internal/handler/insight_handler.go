package handler

import (
	"net/http"

	"trendhive/internal/insight"
	"trendhive/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderInsightSource tells clients whether an insight came from the model
// or the local fallback
const HeaderInsightSource = "X-Insight-Source"

// Trends returns the catalog trend analysis
func (h *Handler) Trends(c echo.Context) error {
	result, err := h.insights.Trends(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Trend analysis served", zap.String("source", string(result.Source)))
	return insightJSON(c, result.Source, result.Data)
}

// PersonalizedRecommendations suggests products for the caller
func (h *Handler) PersonalizedRecommendations(c echo.Context) error {
	result, err := h.insights.Recommendations(c.Request().Context(), identity(c).UserID)
	if err != nil {
		return fail(c, err)
	}

	logger.FromEcho(c).Info("Recommendations served",
		zap.String("source", string(result.Source)),
		zap.Int("count", len(result.Data)))
	return insightJSON(c, result.Source, result.Data)
}

func insightJSON(c echo.Context, source insight.Source, data any) error {
	c.Response().Header().Set(HeaderInsightSource, string(source))
	return c.JSON(http.StatusOK, data)
}
