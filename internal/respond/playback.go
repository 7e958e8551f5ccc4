package respond

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// SpeakerPlayer plays mp3 audio on the default output device.
type SpeakerPlayer struct {
	mu   sync.Mutex
	rate beep.SampleRate
}

func NewSpeakerPlayer() *SpeakerPlayer { return &SpeakerPlayer{} }

func (p *SpeakerPlayer) Play(data []byte) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-init only when the sample rate changes.
	if p.rate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		p.rate = format.SampleRate
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done

	return nil
}

// Chime plays a short mp3 cue, used when capture starts listening.
func (p *SpeakerPlayer) Chime(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read chime: %w", err)
	}
	return p.Play(data)
}
