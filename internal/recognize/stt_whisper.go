package recognize

import (
	"context"

	"aura/pkg/stt"
)

// WhisperSTT transcribes locally with whisper.cpp. No network, no API key.
type WhisperSTT struct {
	tr   *stt.Transcriber
	lang string
}

func NewWhisperSTT(modelPath, lang string) (*WhisperSTT, error) {
	tr, err := stt.NewTranscriber(modelPath)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = "auto"
	}
	return &WhisperSTT{tr: tr, lang: lang}, nil
}

func (w *WhisperSTT) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	res, err := w.tr.TranscribePCM(ctx, pcm, stt.Options{Language: w.lang})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (w *WhisperSTT) Close() error { return w.tr.Close() }
