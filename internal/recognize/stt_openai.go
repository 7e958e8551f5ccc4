package recognize

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/openai/openai-go/v3"

	"aura/pkg/audioconv"
)

// OpenAISTT transcribes through the hosted whisper endpoint.
type OpenAISTT struct {
	api  openai.Client
	lang string
}

func NewOpenAISTT(api openai.Client, lang string) *OpenAISTT {
	return &OpenAISTT{api: api, lang: lang}
}

func (o *OpenAISTT) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	wav := audioconv.EncodeWAV(pcm, audioconv.SampleRate16k)

	resp, err := o.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wav), "utterance.wav", "audio/wav"),
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return resp.Text, nil
}
