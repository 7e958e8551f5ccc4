package assistant

import "time"

// Source tells where an utterance came from.
type Source string

const (
	SourceAudio  Source = "audio"
	SourceText   Source = "text"
	SourceVision Source = "vision"
)

// Utterance is one unit of raw input: a recorded phrase, a typed line or a
// camera frame. It lives for a single cycle.
type Utterance struct {
	Source Source
	PCM    []float32 // mono 16 kHz, SourceAudio only
	Text   string    // SourceText only
	Frame  []byte    // JPEG bytes, SourceVision only
	Time   time.Time
}

// Kind is the closed set of things the user can ask for.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindAppLaunch    Kind = "app_launch"
	KindFileOp       Kind = "file_op"
	KindReminder     Kind = "reminder"
	KindNotification Kind = "notification"
	KindStop         Kind = "stop"
)

// Kinds returns every routable kind. KindStop is excluded: it is consumed by
// the run loop itself, never dispatched.
func Kinds() []Kind {
	return []Kind{
		KindConversation,
		KindAppLaunch,
		KindFileOp,
		KindReminder,
		KindNotification,
	}
}

// Intent is what the recognizer decided the user wants. Immutable once built.
type Intent struct {
	Kind   Kind
	Params map[string]string
	Query  string // original user text
}

// ActionResult is the outcome of executing one intent.
type ActionResult struct {
	OK      bool
	Message string
	Payload map[string]string
}
