package recognize

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"aura/pkg/audioconv"
)

// Google Cloud Speech wants full BCP-47 tags, not the bare two-letter codes
// the rest of the pipeline uses.
var speechTags = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"ja": "ja-JP",
	"ru": "ru-RU",
}

func speechLanguage(lang string) string {
	if lang == "" {
		return "en-US"
	}
	if tag, ok := speechTags[lang]; ok {
		return tag
	}
	return lang
}

// GoogleSTT transcribes through Google Cloud Speech-to-Text. Credentials come
// from the ambient GOOGLE_APPLICATION_CREDENTIALS environment. The client is
// dialed once and lives until Close.
type GoogleSTT struct {
	client *speech.Client
	lang   string
}

func NewGoogleSTT(ctx context.Context, lang string) (*GoogleSTT, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &GoogleSTT{client: client, lang: speechLanguage(lang)}, nil
}

func (g *GoogleSTT) Close() error { return g.client.Close() }

func (g *GoogleSTT) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: audioconv.SampleRate16k,
			LanguageCode:    g.lang,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audioconv.EncodeLinear16(pcm),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var text string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			if text != "" {
				text += " "
			}
			text += result.Alternatives[0].Transcript
		}
	}
	return text, nil
}
