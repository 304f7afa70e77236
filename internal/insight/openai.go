package insight

import (
	"context"
	"errors"
	"strings"

	"trendhive/pkg/config"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyReply is reported when the model answers without content
var ErrEmptyReply = errors.New("no content in model response")

// OpenAICompleter calls the chat-completion endpoint in JSON mode
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates a completer for cfg.Model. BaseURL overrides
// the public endpoint for compatible servers.
func NewOpenAICompleter(cfg config.AIConfig) *OpenAICompleter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
