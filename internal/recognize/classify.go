package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"aura/internal/assistant"
)

const classifierPrompt = `
You are the intent classifier for a personal assistant.
Your ONLY job is to convert the user's utterance into minimal structured JSON.

GENERAL RULES:
1. Do NOT converse.
2. Do NOT answer the question.
3. Do NOT add explanations.
4. Output ONLY JSON. No markdown.
5. Never invent parameters that are not in the utterance.

OUTPUT FORMAT:
{
  "kind": "<string>",
  "params": { "<string>": "<string>", ... }
}

KINDS (canonical, snake_case):
- "app_launch"    params: {"app": "<program name>"}
- "file_op"       params: {"op": "list|delete|copy|move", "path": "...", "dest": "..."}
- "reminder"      params: {"action": "add|list", "text": "...", "when": "..."}
- "notification"  params: {"message": "..."}
- "stop"          the user wants the assistant to stop listening or shut down
- "conversation"  anything else: questions, chat, translation requests

PARAM NORMALIZATION:
- app names lowercase ("notepad", "firefox").
- file paths kept verbatim.
- "when" kept as the raw phrase ("tomorrow", "at 7", "in 10 minutes").

If unsure, use "conversation". Be strict and minimal.
`

// wireIntent is the JSON shape the model is told to emit.
type wireIntent struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params"`
}

// LLMClassifier assigns intent kinds with a chat completion that returns
// strict JSON.
type LLMClassifier struct {
	api   openai.Client
	model string
}

func NewLLMClassifier(api openai.Client, model string) *LLMClassifier {
	return &LLMClassifier{api: api, model: model}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (assistant.Intent, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifierPrompt),
			openai.UserMessage(text),
		},
		Model: openai.ChatModel(c.model),
	})
	if err != nil {
		return assistant.Intent{}, &assistant.APIError{Err: fmt.Errorf("classify: %w", err)}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "empty classifier output"}
	}

	content := resp.Choices[0].Message.Content
	log.Debug("classifier output", "raw", content)

	return parseIntent(content, text)
}

// parseIntent validates the model output against the closed kind set.
// Unknown kinds degrade to conversation rather than failing the cycle.
func parseIntent(raw, query string) (assistant.Intent, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var wire wireIntent
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return assistant.Intent{}, &assistant.RecognitionError{
			Reason: "unparseable classifier output",
			Err:    err,
		}
	}

	kind := assistant.Kind(wire.Kind)
	switch kind {
	case assistant.KindAppLaunch, assistant.KindFileOp, assistant.KindReminder,
		assistant.KindNotification, assistant.KindStop, assistant.KindConversation:
	default:
		kind = assistant.KindConversation
	}

	return assistant.Intent{Kind: kind, Params: wire.Params, Query: query}, nil
}
