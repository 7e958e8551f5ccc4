package respond

import (
	"context"
	"fmt"
	"io"
	log "log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"aura/internal/assistant"
)

// Synthesizer turns reply text into mp3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Player renders mp3 audio on the default output device.
type Player interface {
	Play(mp3 []byte) error
}

// Speaker is an offline fallback that synthesizes and plays in one step.
type Speaker interface {
	Speak(text, lang string) error
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	msgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// Responder renders results: a styled transcript line plus spoken audio.
// Rendering failures are logged and swallowed; the cycle always continues.
type Responder struct {
	synth    Synthesizer
	player   Player
	fallback Speaker
	ducker   *Ducker

	out      io.Writer
	language string // default reply language
	mute     bool
}

func New(synth Synthesizer, player Player, opts ...Option) *Responder {
	r := &Responder{
		synth:    synth,
		player:   player,
		out:      os.Stdout,
		language: "en",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type Option func(*Responder)

func WithFallback(s Speaker) Option  { return func(r *Responder) { r.fallback = s } }
func WithDucker(d *Ducker) Option    { return func(r *Responder) { r.ducker = d } }
func WithOutput(w io.Writer) Option  { return func(r *Responder) { r.out = w } }
func WithLanguage(lang string) Option { return func(r *Responder) { r.language = lang } }
func Muted() Option                  { return func(r *Responder) { r.mute = true } }

func (r *Responder) Respond(ctx context.Context, res assistant.ActionResult) {
	if res.Message == "" {
		return
	}

	r.print(res)

	if r.mute {
		return
	}

	lang := DetectLanguage(res.Message, r.language)
	if err := r.speak(ctx, res.Message, lang); err != nil {
		log.Warn("speech output failed", "err", err)
	}
}

func (r *Responder) print(res assistant.ActionResult) {
	marker := okStyle.Render("aura")
	if !res.OK {
		marker = failStyle.Render("aura")
	}
	fmt.Fprintf(r.out, "%s %s\n", marker, msgStyle.Render(res.Message))
}

func (r *Responder) speak(ctx context.Context, text, lang string) error {
	if r.synth != nil && r.player != nil {
		audio, err := r.synth.Synthesize(ctx, text, lang)
		if err == nil {
			return r.play(ctx, audio)
		}
		log.Warn("synthesis failed, trying fallback", "err", &assistant.SynthesisError{Err: err})
	}

	if r.fallback != nil {
		return r.fallback.Speak(text, lang)
	}
	if r.synth == nil && r.player == nil {
		return nil // text-only mode
	}
	return fmt.Errorf("no usable speech backend")
}

func (r *Responder) play(ctx context.Context, audio []byte) error {
	if r.ducker != nil {
		if err := r.ducker.DuckOthers(ctx, 0.3, 200*time.Millisecond); err != nil {
			log.Debug("duck failed", "err", err)
		}
		defer func() {
			if err := r.ducker.UnduckOthers(ctx, 200*time.Millisecond); err != nil {
				log.Debug("unduck failed", "err", err)
			}
		}()
	}
	return r.player.Play(audio)
}
