package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trendhive/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeChatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, trendSystemPrompt, req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newCompleter(url string) *OpenAICompleter {
	return NewOpenAICompleter(config.AIConfig{APIKey: "test-key", BaseURL: url + "/v1", Model: "gpt-4o"})
}

func TestOpenAICompleterEndToEnd(t *testing.T) {
	srv := fakeChatServer(t, http.StatusOK, trendReply)
	a := NewAnalyzer(newCompleter(srv.URL))

	res := a.AnalyzeTrends(context.Background(), catalog())
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, []string{"Blue", "Beige"}, res.Data.TrendingColors)
}

func TestOpenAICompleterEmptyContent(t *testing.T) {
	srv := fakeChatServer(t, http.StatusOK, "")

	_, err := newCompleter(srv.URL).Complete(context.Background(), trendSystemPrompt, "p")
	require.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAICompleterHTTPErrorFallsBack(t *testing.T) {
	srv := fakeChatServer(t, http.StatusTooManyRequests, "")
	a := NewAnalyzer(newCompleter(srv.URL))

	res := a.AnalyzeTrends(context.Background(), catalog())
	assert.Equal(t, SourceFallback, res.Source)
}
