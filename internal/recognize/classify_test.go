package recognize

import (
	"errors"
	"testing"

	"aura/internal/assistant"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind assistant.Kind
	}{
		{
			"plain json",
			`{"kind": "app_launch", "params": {"app": "firefox"}}`,
			assistant.KindAppLaunch,
		},
		{
			"fenced json",
			"```json\n{\"kind\": \"reminder\", \"params\": {\"action\": \"add\", \"text\": \"tea\"}}\n```",
			assistant.KindReminder,
		},
		{
			"unknown kind degrades to conversation",
			`{"kind": "dance", "params": {}}`,
			assistant.KindConversation,
		},
		{
			"stop",
			`{"kind": "stop"}`,
			assistant.KindStop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseIntent(tt.raw, "the query")
			if err != nil {
				t.Fatalf("parseIntent() = %v", err)
			}
			if in.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", in.Kind, tt.wantKind)
			}
			if in.Query != "the query" {
				t.Errorf("query = %q, want original", in.Query)
			}
		})
	}
}

func TestParseIntentGarbage(t *testing.T) {
	_, err := parseIntent("I think you want to open firefox!", "open firefox maybe")
	var rec *assistant.RecognitionError
	if !errors.As(err, &rec) {
		t.Fatalf("parseIntent on prose = %v, want RecognitionError", err)
	}
}

func TestParseIntentKeepsParams(t *testing.T) {
	in, err := parseIntent(`{"kind": "file_op", "params": {"op": "copy", "path": "a.txt", "dest": "b.txt"}}`, "copy it")
	if err != nil {
		t.Fatal(err)
	}
	if in.Params["op"] != "copy" || in.Params["path"] != "a.txt" || in.Params["dest"] != "b.txt" {
		t.Errorf("params = %v", in.Params)
	}
}
