package listen

import (
	"context"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"

	"aura/internal/assistant"
)

const (
	sampleRate = 16000
	frameSize  = 320 // 20ms @ 16 kHz
)

// Microphone captures one spoken phrase per call. Speech starts when the
// frame RMS rises above the threshold and ends after a stretch of silence.
type Microphone struct {
	timeout time.Duration

	// tunables, set to defaults by NewMicrophone
	silenceRMS  float64
	silenceHold time.Duration
	maxLength   time.Duration
}

// NewMicrophone initializes portaudio. Callers must Close to release it.
func NewMicrophone(timeout time.Duration) (*Microphone, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	return &Microphone{
		timeout:     timeout,
		silenceRMS:  0.015,
		silenceHold: 600 * time.Millisecond,
		maxLength:   10 * time.Second,
	}, nil
}

func (m *Microphone) Close() error {
	return portaudio.Terminate()
}

// Capture blocks until one phrase is recorded. If nothing rises above the
// silence threshold before the timeout it returns assistant.ErrNoInput.
// The stream is stopped and closed on every path, including cancellation.
func (m *Microphone) Capture(ctx context.Context) (assistant.Utterance, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	if err != nil {
		return assistant.Utterance{}, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return assistant.Utterance{}, err
	}
	defer stream.Stop()

	var (
		speaking      bool
		silenceFrames int
		deadline      = time.Now().Add(m.timeout)
		maxFrames     = int(m.maxLength.Seconds()) * sampleRate / frameSize
		frameMillis   = float64(frameSize) / sampleRate * 1000
	)

	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return assistant.Utterance{}, ctx.Err()
		default:
		}

		if !speaking && time.Now().After(deadline) {
			return assistant.Utterance{}, assistant.ErrNoInput
		}

		if err := stream.Read(); err != nil {
			return assistant.Utterance{}, err
		}

		if frameRMS(buf) > m.silenceRMS {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}

		if speaking {
			silenceFrames++
			if float64(silenceFrames)*frameMillis >= float64(m.silenceHold.Milliseconds()) {
				break
			}
			out = append(out, buf...)
		}
	}

	if !speaking {
		return assistant.Utterance{}, assistant.ErrNoInput
	}

	return assistant.Utterance{
		Source: assistant.SourceAudio,
		PCM:    out,
		Time:   time.Now(),
	}, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
