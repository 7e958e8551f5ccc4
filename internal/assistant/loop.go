package assistant

import (
	"context"
	"errors"
	log "log/slog"
)

// Listener blocks until one unit of input is available or the configured
// timeout elapses, in which case it returns ErrNoInput.
type Listener interface {
	Capture(ctx context.Context) (Utterance, error)
}

// Recognizer turns raw input into an intent.
type Recognizer interface {
	Recognize(ctx context.Context, u Utterance) (Intent, error)
}

// Dispatcher routes an intent to exactly one handler.
type Dispatcher interface {
	Dispatch(ctx context.Context, in Intent, convo *Context) (ActionResult, error)
}

// Responder renders a result to the user. It must never fail the cycle;
// implementations log and swallow rendering errors.
type Responder interface {
	Respond(ctx context.Context, res ActionResult)
}

// State of the interaction cycle.
type State string

const (
	StateIdle        State = "idle"
	StateListening   State = "listening"
	StateRecognizing State = "recognizing"
	StateDispatching State = "dispatching"
	StateResponding  State = "responding"
)

const (
	msgUnroutable  = "Sorry, I didn't understand that."
	msgUnavailable = "Sorry, that service is unavailable right now."
	msgGoodbye     = "Goodbye."
)

// Assistant drives the cycle: listen, recognize, dispatch, respond.
// Single goroutine; one cycle runs to completion before the next begins.
type Assistant struct {
	listener   Listener
	recognizer Recognizer
	dispatcher Dispatcher
	responder  Responder

	convo *Context
	state State
}

func New(l Listener, r Recognizer, d Dispatcher, resp Responder) *Assistant {
	return &Assistant{
		listener:   l,
		recognizer: r,
		dispatcher: d,
		responder:  resp,
		convo:      NewContext(),
		state:      StateIdle,
	}
}

func (a *Assistant) Context() *Context { return a.convo }
func (a *Assistant) State() State      { return a.state }

// Run cycles until the context is cancelled or the user asks to stop.
// No error from a single cycle terminates the run.
func (a *Assistant) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := a.Cycle(ctx); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			// Should not happen: Cycle absorbs stage failures itself.
			log.Error("cycle failed", "err", err)
		}
	}
}

// Cycle runs exactly one interaction. Every failure path except ErrStop and
// cancellation ends back in IDLE with the process intact.
func (a *Assistant) Cycle(ctx context.Context) error {
	defer a.transition(StateIdle)

	a.transition(StateListening)
	u, err := a.listener.Capture(ctx)
	if err != nil {
		if errors.Is(err, ErrNoInput) {
			log.Debug("listener timed out, back to idle")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("capture failed", "err", err)
		return nil
	}

	a.transition(StateRecognizing)
	in, err := a.recognizer.Recognize(ctx, u)
	if err != nil {
		a.absorbRecognition(ctx, err)
		return nil
	}

	if in.Kind == KindStop {
		a.transition(StateResponding)
		a.responder.Respond(ctx, ActionResult{OK: true, Message: msgGoodbye})
		return ErrStop
	}

	a.transition(StateDispatching)
	res, err := a.dispatcher.Dispatch(ctx, in, a.convo)
	if err != nil {
		var unroutable *UnroutableIntentError
		if errors.As(err, &unroutable) {
			log.Warn("unroutable intent", "kind", unroutable.Kind)
			res = ActionResult{Message: msgUnroutable}
		} else {
			log.Error("dispatch failed", "kind", in.Kind, "err", err)
			res = ActionResult{Message: msgUnavailable}
		}
	}

	a.transition(StateResponding)
	a.responder.Respond(ctx, res)
	return nil
}

// absorbRecognition decides whether a recognition failure is silent (retry)
// or worth telling the user about (a backend went away).
func (a *Assistant) absorbRecognition(ctx context.Context, err error) {
	var rec *RecognitionError
	if errors.As(err, &rec) {
		log.Debug("nothing actionable", "reason", rec.Reason)
		return
	}

	var (
		transcription *TranscriptionError
		api           *APIError
	)
	if errors.As(err, &transcription) || errors.As(err, &api) {
		log.Error("recognition backend failed", "err", err)
		a.transition(StateResponding)
		a.responder.Respond(ctx, ActionResult{Message: msgUnavailable})
		return
	}

	log.Error("recognize failed", "err", err)
}

func (a *Assistant) transition(s State) {
	if a.state == s {
		return
	}
	log.Debug("state", "from", a.state, "to", s)
	a.state = s
}
