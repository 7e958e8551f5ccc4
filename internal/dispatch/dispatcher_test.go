package dispatch

import (
	"context"
	"errors"
	"testing"

	"aura/internal/assistant"
)

type fakeHandler struct {
	res    assistant.ActionResult
	err    error
	called int
}

func (f *fakeHandler) Execute(_ context.Context, params map[string]string) (assistant.ActionResult, error) {
	f.called++
	return f.res, f.err
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Converse(_ context.Context, _ *assistant.Context, text string) (string, error) {
	return f.reply, f.err
}

func TestDispatchRoutesEveryKind(t *testing.T) {
	apps := &fakeHandler{res: assistant.ActionResult{OK: true, Message: "apps"}}
	files := &fakeHandler{res: assistant.ActionResult{OK: true, Message: "files"}}
	rem := &fakeHandler{res: assistant.ActionResult{OK: true, Message: "rem"}}
	notif := &fakeHandler{res: assistant.ActionResult{OK: true, Message: "notif"}}
	llm := &fakeLLM{reply: "chat"}

	d := New(llm, apps, files, rem, notif)
	convo := assistant.NewContext()

	// Every routable kind must reach exactly one handler.
	for _, kind := range assistant.Kinds() {
		res, err := d.Dispatch(context.Background(), assistant.Intent{Kind: kind, Query: "q"}, convo)
		if err != nil {
			t.Fatalf("Dispatch(%q) = %v", kind, err)
		}
		if !res.OK {
			t.Errorf("Dispatch(%q) not OK", kind)
		}
	}

	for name, h := range map[string]*fakeHandler{"apps": apps, "files": files, "rem": rem, "notif": notif} {
		if h.called != 1 {
			t.Errorf("%s handler called %d times, want 1", name, h.called)
		}
	}
}

func TestDispatchUnroutableKind(t *testing.T) {
	// No file handler registered: file_op intents become unroutable.
	d := New(&fakeLLM{reply: "x"}, &fakeHandler{}, nil, &fakeHandler{}, &fakeHandler{})

	_, err := d.Dispatch(context.Background(), assistant.Intent{Kind: assistant.KindFileOp}, assistant.NewContext())
	var unroutable *assistant.UnroutableIntentError
	if !errors.As(err, &unroutable) {
		t.Fatalf("Dispatch() = %v, want UnroutableIntentError", err)
	}
	if unroutable.Kind != assistant.KindFileOp {
		t.Errorf("unroutable kind = %q", unroutable.Kind)
	}
}

func TestDispatchConversationAppendsExactlyOneExchange(t *testing.T) {
	d := New(&fakeLLM{reply: "forty-two"}, nil, nil, nil, nil)
	convo := assistant.NewContext()

	res, err := d.Dispatch(context.Background(), assistant.Intent{
		Kind:  assistant.KindConversation,
		Query: "what is the answer",
	}, convo)
	if err != nil {
		t.Fatalf("Dispatch() = %v", err)
	}
	if res.Message != "forty-two" {
		t.Errorf("message = %q", res.Message)
	}

	if convo.Len() != 2 {
		t.Fatalf("transcript len = %d, want 2", convo.Len())
	}
	entries := convo.Entries()
	if entries[0].Role != assistant.RoleUser || entries[0].Text != "what is the answer" {
		t.Errorf("user entry = %+v", entries[0])
	}
	if entries[1].Role != assistant.RoleAssistant || entries[1].Text != "forty-two" {
		t.Errorf("assistant entry = %+v", entries[1])
	}
}

func TestDispatchConversationFailureLeavesTranscriptAlone(t *testing.T) {
	d := New(&fakeLLM{err: errors.New("rate limited")}, nil, nil, nil, nil)
	convo := assistant.NewContext()

	_, err := d.Dispatch(context.Background(), assistant.Intent{
		Kind:  assistant.KindConversation,
		Query: "hello",
	}, convo)
	var api *assistant.APIError
	if !errors.As(err, &api) {
		t.Fatalf("Dispatch() = %v, want APIError", err)
	}
	if convo.Len() != 0 {
		t.Errorf("transcript len = %d after failed exchange, want 0", convo.Len())
	}
}

func TestDispatchConversationWithoutModel(t *testing.T) {
	d := New(nil, nil, nil, nil, nil)

	_, err := d.Dispatch(context.Background(), assistant.Intent{Kind: assistant.KindConversation}, assistant.NewContext())
	var unroutable *assistant.UnroutableIntentError
	if !errors.As(err, &unroutable) {
		t.Fatalf("Dispatch() = %v, want UnroutableIntentError", err)
	}
}
