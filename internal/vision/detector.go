package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	log "log/slog"
	"strings"

	openai "github.com/openai/openai-go/v3"
)

// Detection is one labeled region in a frame.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Box is a pixel-space bounding rectangle.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

const detectPrompt = `
You are an object and face detector.
List every distinct object, person or known face in the image.
Output ONLY a JSON array, no markdown:
[{"label": "<string>", "confidence": <0..1>, "box": {"x":0,"y":0,"w":0,"h":0}}]
Use label "person" for unknown people. Omit anything below 0.4 confidence.
An empty array is a valid answer.
`

// minConfidence filters the model's own borderline guesses a second time.
const minConfidence = 0.4

// Detector labels camera frames with a vision-capable chat model.
type Detector struct {
	api   openai.Client
	model string
}

func NewDetector(api openai.Client, model string) *Detector {
	return &Detector{api: api, model: model}
}

func (d *Detector) Detect(ctx context.Context, jpeg []byte) ([]Detection, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(detectPrompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}

	resp, err := d.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
		Model: openai.ChatModel(d.model),
	})
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("detect: empty response")
	}

	content := resp.Choices[0].Message.Content
	log.Debug("detector output", "raw", content)

	return parseDetections(content)
}

// parseDetections decodes the model's JSON array and drops low-confidence
// entries.
func parseDetections(raw string) ([]Detection, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var all []Detection
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("parse detections: %w (raw: %s)", err, raw)
	}

	kept := all[:0]
	for _, det := range all {
		if det.Label == "" || det.Confidence < minConfidence {
			continue
		}
		kept = append(kept, det)
	}
	return kept, nil
}
