package recognize

import (
	"context"
	"errors"
	"testing"

	"aura/internal/assistant"
	"aura/internal/vision"
)

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Transcribe(context.Context, []float32) (string, error) {
	return f.text, f.err
}

type fakeDetector struct {
	dets []vision.Detection
	err  error
}

func (f *fakeDetector) Detect(context.Context, []byte) ([]vision.Detection, error) {
	return f.dets, f.err
}

type fakeClassifier struct {
	intent assistant.Intent
	err    error
	called bool
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (assistant.Intent, error) {
	f.called = true
	if f.err != nil {
		return assistant.Intent{}, f.err
	}
	in := f.intent
	in.Query = text
	return in, nil
}

func audioUtterance() assistant.Utterance {
	return assistant.Utterance{Source: assistant.SourceAudio, PCM: make([]float32, 320)}
}

func TestRecognizeAudioWakeGate(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		wantKind   assistant.Kind
		wantMiss   bool // expect a silent RecognitionError
	}{
		{"wake word plus command", "aura open firefox", assistant.KindAppLaunch, false},
		{"wake word capitalized", "Aura, open firefox", assistant.KindAppLaunch, false},
		{"no wake word", "open firefox", "", true},
		{"wake word mid-word", "aural test", "", true},
		{"wake word glued to command", "auraopen firefox", "", true},
		{"bare wake word", "aura", "", true},
		{"bare wake word with punctuation", "Aura?", "", true},
		{"empty transcript", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&fakeSTT{text: tt.transcript}, nil, &fakeClassifier{}, "aura")

			in, err := r.Recognize(context.Background(), audioUtterance())
			if tt.wantMiss {
				var rec *assistant.RecognitionError
				if !errors.As(err, &rec) {
					t.Fatalf("Recognize(%q) = %v, want RecognitionError", tt.transcript, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Recognize(%q) = %v", tt.transcript, err)
			}
			if in.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", in.Kind, tt.wantKind)
			}
		})
	}
}

func TestRecognizeAudioNoWakeWordConfigured(t *testing.T) {
	r := New(&fakeSTT{text: "open firefox"}, nil, &fakeClassifier{}, "")

	in, err := r.Recognize(context.Background(), audioUtterance())
	if err != nil {
		t.Fatalf("Recognize() = %v", err)
	}
	if in.Kind != assistant.KindAppLaunch {
		t.Errorf("kind = %q, want app_launch", in.Kind)
	}
}

func TestRecognizeAudioBackendFailure(t *testing.T) {
	r := New(&fakeSTT{err: errors.New("socket closed")}, nil, &fakeClassifier{}, "aura")

	_, err := r.Recognize(context.Background(), audioUtterance())
	var te *assistant.TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("Recognize() = %v, want TranscriptionError", err)
	}
}

func TestRecognizeEmptyAudio(t *testing.T) {
	r := New(&fakeSTT{text: "whatever"}, nil, &fakeClassifier{}, "")

	_, err := r.Recognize(context.Background(), assistant.Utterance{Source: assistant.SourceAudio})
	var rec *assistant.RecognitionError
	if !errors.As(err, &rec) {
		t.Fatalf("Recognize() on empty pcm = %v, want RecognitionError", err)
	}
}

func TestRecognizeTextSkipsWakeGate(t *testing.T) {
	// Typed input must not require the wake word.
	cls := &fakeClassifier{intent: assistant.Intent{Kind: assistant.KindConversation}}
	r := New(nil, nil, cls, "aura")

	in, err := r.Recognize(context.Background(), assistant.Utterance{
		Source: assistant.SourceText,
		Text:   "what's the weather like",
	})
	if err != nil {
		t.Fatalf("Recognize() = %v", err)
	}
	if !cls.called {
		t.Error("classifier not consulted for free-form text")
	}
	if in.Kind != assistant.KindConversation {
		t.Errorf("kind = %q, want conversation", in.Kind)
	}
}

func TestRecognizeTextOfflineFallback(t *testing.T) {
	r := New(nil, nil, nil, "")

	in, err := r.Recognize(context.Background(), assistant.Utterance{
		Source: assistant.SourceText,
		Text:   "how tall is everest",
	})
	if err != nil {
		t.Fatalf("Recognize() = %v", err)
	}
	if in.Kind != assistant.KindConversation {
		t.Errorf("kind = %q, want conversation fallback without classifier", in.Kind)
	}
	if in.Query != "how tall is everest" {
		t.Errorf("query = %q", in.Query)
	}
}

func TestRecognizeFrame(t *testing.T) {
	det := &fakeDetector{dets: []vision.Detection{
		{Label: "person", Confidence: 0.9},
		{Label: "cup", Confidence: 0.6},
	}}
	r := New(nil, det, nil, "")

	in, err := r.Recognize(context.Background(), assistant.Utterance{
		Source: assistant.SourceVision,
		Frame:  []byte{0xff, 0xd8, 0xff},
	})
	if err != nil {
		t.Fatalf("Recognize() = %v", err)
	}
	if in.Kind != assistant.KindNotification {
		t.Fatalf("kind = %q, want notification", in.Kind)
	}
	if in.Params["labels"] != "person,cup" {
		t.Errorf("labels = %q", in.Params["labels"])
	}
	if in.Params["message"] != "I can see person, cup." {
		t.Errorf("message = %q", in.Params["message"])
	}
}

func TestRecognizeFrameFailures(t *testing.T) {
	frame := assistant.Utterance{Source: assistant.SourceVision, Frame: []byte{1}}

	r := New(nil, &fakeDetector{err: errors.New("quota exceeded")}, nil, "")
	_, err := r.Recognize(context.Background(), frame)
	var api *assistant.APIError
	if !errors.As(err, &api) {
		t.Fatalf("detector failure = %v, want APIError", err)
	}

	r = New(nil, &fakeDetector{}, nil, "")
	_, err = r.Recognize(context.Background(), frame)
	var rec *assistant.RecognitionError
	if !errors.As(err, &rec) {
		t.Fatalf("empty detections = %v, want RecognitionError", err)
	}
}
