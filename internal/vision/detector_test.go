package vision

import "testing"

func sameDetections(a, b []Detection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseDetections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Detection
	}{
		{
			"plain array",
			`[{"label": "person", "confidence": 0.92, "box": {"x":10,"y":20,"w":100,"h":200}}]`,
			[]Detection{{Label: "person", Confidence: 0.92, Box: Box{X: 10, Y: 20, W: 100, H: 200}}},
		},
		{
			"fenced array",
			"```json\n[{\"label\": \"cup\", \"confidence\": 0.8}]\n```",
			[]Detection{{Label: "cup", Confidence: 0.8}},
		},
		{
			"low confidence dropped",
			`[{"label": "cup", "confidence": 0.8}, {"label": "maybe-a-cat", "confidence": 0.2}]`,
			[]Detection{{Label: "cup", Confidence: 0.8}},
		},
		{
			"empty labels dropped",
			`[{"label": "", "confidence": 0.9}, {"label": "person", "confidence": 0.9}]`,
			[]Detection{{Label: "person", Confidence: 0.9}},
		},
		{
			"empty array",
			`[]`,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDetections(tt.raw)
			if err != nil {
				t.Fatalf("parseDetections() = %v", err)
			}
			if !sameDetections(got, tt.want) {
				t.Errorf("parseDetections() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseDetectionsGarbage(t *testing.T) {
	if _, err := parseDetections("I see a person and a cup."); err == nil {
		t.Error("parseDetections on prose = nil error, want failure")
	}
}
