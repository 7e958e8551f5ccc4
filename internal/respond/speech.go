package respond

import (
	"context"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
)

// Speech synthesizes replies with the hosted speech endpoint. Output is mp3.
type Speech struct {
	api   openai.Client
	voice string
	slow  bool
}

func NewSpeech(api openai.Client, voice string, slow bool) *Speech {
	if voice == "" {
		voice = "alloy"
	}
	return &Speech{api: api, voice: voice, slow: slow}
}

func (s *Speech) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	params := openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelGPT4oMiniTTS,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if s.slow {
		params.Speed = param.NewOpt(0.8)
	}
	if lang != "" && lang != "en" {
		params.Instructions = param.NewOpt("Speak in language code " + lang + " with a natural accent.")
	}

	resp, err := s.api.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	return audio, nil
}
