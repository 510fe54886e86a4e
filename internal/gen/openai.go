package gen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mspaans/vocabsync/internal/config"
	"github.com/mspaans/vocabsync/internal/entry"
	"github.com/mspaans/vocabsync/internal/settings"
)

// Client calls an OpenAI-compatible chat completion API with a structured
// JSON output contract. One blocking round trip per call, no streaming.
type Client struct {
	api *openai.Client
}

// NewClient builds a generation client from configuration. The HTTP client
// carries the same timeout as the flashcard gateway; a stalled model call
// must not hang a lookup or a batch worker.
func NewClient(cfg *config.Config) *Client {
	cc := openai.DefaultConfig(cfg.OpenAIAPIKey)
	cc.HTTPClient = &http.Client{
		Timeout: time.Duration(cfg.RemoteTimeoutSeconds) * time.Second,
	}
	if cfg.OpenAIBaseURL != "" {
		cc.BaseURL = cfg.OpenAIBaseURL
	}
	return &Client{api: openai.NewClientWithConfig(cc)}
}

// Generate implements Generator. Quoted input is treated as one idiomatic
// unit with a reduced field set; everything else goes through the word and
// phrase prompt.
func (c *Client) Generate(ctx context.Context, input string, prefs settings.Prefs) (*Result, error) {
	prefs = prefs.Normalized()

	instructions := definitionsPrompt
	if entry.IsQuoted(input) {
		instructions = idiomPrompt
		input = entry.Unquote(input)
	}

	raw, err := c.complete(ctx, instructions, input, prefs)
	if err != nil {
		return nil, fmt.Errorf("generate %q: %w", input, err)
	}

	return parseResult(raw), nil
}

// Tags implements Generator.
func (c *Client) Tags(ctx context.Context, e *entry.Entry, prefs settings.Prefs) ([]string, error) {
	prefs = prefs.Normalized()

	input := fmt.Sprintf("%s — %s (%s)", e.Term, e.Translation, e.Grammar)
	raw, err := c.complete(ctx, tagsPrompt, input, prefs)
	if err != nil {
		return nil, fmt.Errorf("tags for %q: %w", e.Term, err)
	}

	return parseTags(raw), nil
}

// complete performs one chat completion and returns the raw message text.
func (c *Client) complete(ctx context.Context, instructions, input string, prefs settings.Prefs) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:           prefs.Model,
		ReasoningEffort: prefs.Effort,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		log.Warn().Str("model", prefs.Model).Msg("model returned no choices")
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
