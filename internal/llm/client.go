package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"

	"aura/internal/assistant"
)

const systemPrompt = `You are Aura, a personal voice assistant.
Answer briefly and conversationally; your replies are spoken aloud.
When asked to translate, reply with the translation only.`

// Client holds the conversation collaborator: one chat model, a context
// window cap and a per-call timeout.
type Client struct {
	api     openai.Client
	model   string
	window  int
	timeout time.Duration
}

func New(api openai.Client, model string, window int, timeout time.Duration) *Client {
	if window <= 0 {
		window = 32
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{api: api, model: model, window: window, timeout: timeout}
}

// Converse sends the windowed transcript plus the new text and returns the
// reply. The caller owns appending the exchange to the context.
func (c *Client) Converse(ctx context.Context, convo *assistant.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, c.window+2)
	msgs = append(msgs, openai.SystemMessage(systemPrompt))

	for _, e := range convo.Window(c.window) {
		switch e.Role {
		case assistant.RoleUser:
			msgs = append(msgs, openai.UserMessage(e.Text))
		case assistant.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(e.Text))
		}
	}
	msgs = append(msgs, openai.UserMessage(text))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	reply := resp.Choices[0].Message.Content
	if reply == "" {
		return "", fmt.Errorf("empty message content")
	}
	return reply, nil
}
