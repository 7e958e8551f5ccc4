package dispatch

import (
	"context"
	log "log/slog"

	"aura/internal/assistant"
)

// Handler executes one local command kind.
type Handler interface {
	Execute(ctx context.Context, params map[string]string) (assistant.ActionResult, error)
}

// Conversationalist is the language-model collaborator.
type Conversationalist interface {
	Converse(ctx context.Context, convo *assistant.Context, text string) (string, error)
}

// Dispatcher routes each intent to exactly one handler. Selection is a pure
// function of the intent kind.
type Dispatcher struct {
	llm      Conversationalist
	handlers map[assistant.Kind]Handler
}

// New wires the full handler table. Passing a nil handler for a kind removes
// that capability; its intents become unroutable.
func New(llm Conversationalist, apps, files, rem, notif Handler) *Dispatcher {
	handlers := make(map[assistant.Kind]Handler)
	register := func(k assistant.Kind, h Handler) {
		if h != nil {
			handlers[k] = h
		}
	}
	register(assistant.KindAppLaunch, apps)
	register(assistant.KindFileOp, files)
	register(assistant.KindReminder, rem)
	register(assistant.KindNotification, notif)

	return &Dispatcher{llm: llm, handlers: handlers}
}

func (d *Dispatcher) Dispatch(ctx context.Context, in assistant.Intent, convo *assistant.Context) (assistant.ActionResult, error) {
	log.Info("dispatching", "kind", in.Kind)

	if in.Kind == assistant.KindConversation {
		return d.converse(ctx, in, convo)
	}

	h, ok := d.handlers[in.Kind]
	if !ok {
		return assistant.ActionResult{}, &assistant.UnroutableIntentError{Kind: in.Kind}
	}
	return h.Execute(ctx, in.Params)
}

// converse forwards the transcript plus the new text to the model and, on
// success, appends exactly one user and one assistant entry.
func (d *Dispatcher) converse(ctx context.Context, in assistant.Intent, convo *assistant.Context) (assistant.ActionResult, error) {
	if d.llm == nil {
		return assistant.ActionResult{}, &assistant.UnroutableIntentError{Kind: in.Kind}
	}

	reply, err := d.llm.Converse(ctx, convo, in.Query)
	if err != nil {
		return assistant.ActionResult{}, &assistant.APIError{Err: err}
	}

	convo.Append(assistant.RoleUser, in.Query)
	convo.Append(assistant.RoleAssistant, reply)

	return assistant.ActionResult{OK: true, Message: reply}, nil
}
