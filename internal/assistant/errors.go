package assistant

import (
	"errors"
	"fmt"
)

// ErrNoInput means the listener timed out without capturing anything.
// The cycle retries.
var ErrNoInput = errors.New("no input before timeout")

// ErrStop is returned by the run loop when the user asked to stop.
var ErrStop = errors.New("stop requested")

// RecognitionError means the input produced nothing actionable: empty or
// low-confidence model output, or a missing wake word. The cycle retries.
type RecognitionError struct {
	Reason string
	Err    error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recognition: %s: %v", e.Reason, e.Err)
	}
	return "recognition: " + e.Reason
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// UnroutableIntentError means no handler exists for an intent kind.
// Reported to the user as an apology, never fatal.
type UnroutableIntentError struct {
	Kind Kind
}

func (e *UnroutableIntentError) Error() string {
	return fmt.Sprintf("no handler for intent kind %q", e.Kind)
}

// TranscriptionError wraps a speech-to-text backend failure.
type TranscriptionError struct{ Err error }

func (e *TranscriptionError) Error() string { return "transcription failed: " + e.Err.Error() }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// SynthesisError wraps a text-to-speech backend failure.
type SynthesisError struct{ Err error }

func (e *SynthesisError) Error() string { return "synthesis failed: " + e.Err.Error() }
func (e *SynthesisError) Unwrap() error { return e.Err }

// APIError wraps a language-model or vision service failure.
type APIError struct{ Err error }

func (e *APIError) Error() string { return "api call failed: " + e.Err.Error() }
func (e *APIError) Unwrap() error { return e.Err }
