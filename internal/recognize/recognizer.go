package recognize

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"aura/internal/assistant"
	"aura/internal/vision"
)

// SpeechToText is the transcription collaborator. PCM is mono 16 kHz float32.
type SpeechToText interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

// Detector is the vision collaborator.
type Detector interface {
	Detect(ctx context.Context, jpeg []byte) ([]vision.Detection, error)
}

// Classifier assigns an intent to free-form text when the local patterns
// don't match.
type Classifier interface {
	Classify(ctx context.Context, text string) (assistant.Intent, error)
}

// Recognizer turns an utterance into exactly one intent.
type Recognizer struct {
	stt        SpeechToText
	detector   Detector
	classifier Classifier
	wakeWord   string
}

func New(stt SpeechToText, det Detector, cls Classifier, wakeWord string) *Recognizer {
	return &Recognizer{
		stt:        stt,
		detector:   det,
		classifier: cls,
		wakeWord:   strings.ToLower(strings.TrimSpace(wakeWord)),
	}
}

func (r *Recognizer) Recognize(ctx context.Context, u assistant.Utterance) (assistant.Intent, error) {
	switch u.Source {
	case assistant.SourceAudio:
		return r.recognizeAudio(ctx, u)
	case assistant.SourceText:
		return r.recognizeText(ctx, u.Text)
	case assistant.SourceVision:
		return r.recognizeFrame(ctx, u)
	default:
		return assistant.Intent{}, &assistant.RecognitionError{
			Reason: fmt.Sprintf("unknown utterance source %q", u.Source),
		}
	}
}

func (r *Recognizer) recognizeAudio(ctx context.Context, u assistant.Utterance) (assistant.Intent, error) {
	if len(u.PCM) == 0 {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "empty audio"}
	}
	if r.stt == nil {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "no speech backend configured"}
	}

	text, err := r.stt.Transcribe(ctx, u.PCM)
	if err != nil {
		return assistant.Intent{}, &assistant.TranscriptionError{Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "empty transcript"}
	}
	log.Info("transcribed", "text", text)

	// Audio goes through the wake-word gate; typed text does not.
	stripped, ok := r.stripWake(text)
	if !ok {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "wake word not detected"}
	}

	return r.recognizeText(ctx, stripped)
}

func (r *Recognizer) recognizeText(ctx context.Context, text string) (assistant.Intent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "empty text"}
	}

	if in, ok := matchPattern(text); ok {
		log.Debug("pattern matched", "kind", in.Kind)
		return in, nil
	}

	if r.classifier == nil {
		// Offline fallback: anything unmatched is a conversation.
		return assistant.Intent{Kind: assistant.KindConversation, Query: text}, nil
	}
	return r.classifier.Classify(ctx, text)
}

func (r *Recognizer) recognizeFrame(ctx context.Context, u assistant.Utterance) (assistant.Intent, error) {
	if len(u.Frame) == 0 {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "empty frame"}
	}
	if r.detector == nil {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "no detector configured"}
	}

	dets, err := r.detector.Detect(ctx, u.Frame)
	if err != nil {
		return assistant.Intent{}, &assistant.APIError{Err: err}
	}
	if len(dets) == 0 {
		return assistant.Intent{}, &assistant.RecognitionError{Reason: "nothing detected"}
	}

	return frameIntent(dets), nil
}

// frameIntent maps detections to an informational notification intent.
func frameIntent(dets []vision.Detection) assistant.Intent {
	labels := make([]string, 0, len(dets))
	for _, d := range dets {
		labels = append(labels, d.Label)
	}

	summary := "I can see " + strings.Join(labels, ", ") + "."
	return assistant.Intent{
		Kind: assistant.KindNotification,
		Params: map[string]string{
			"labels":  strings.Join(labels, ","),
			"message": summary,
		},
		Query: summary,
	}
}

// stripWake applies the wake-word gate. With no wake word configured every
// transcript passes through untouched.
func (r *Recognizer) stripWake(text string) (string, bool) {
	if r.wakeWord == "" {
		return text, true
	}

	lower := strings.ToLower(text)
	if !strings.HasPrefix(lower, r.wakeWord) {
		return "", false
	}

	// The wake word must be a whole word: "aural test" is not "aura l test".
	rest := text[len(r.wakeWord):]
	if rest != "" {
		next, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(next) && !strings.ContainsRune(",.!?:;", next) {
			return "", false
		}
	}

	rest = strings.TrimSpace(rest)
	rest = strings.TrimLeft(rest, ",.!? ")
	if rest == "" {
		// Bare wake word carries no request.
		return "", false
	}
	return rest, true
}
