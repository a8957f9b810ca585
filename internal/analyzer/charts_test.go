package analyzer

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/zombar/reviewpulse/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// decodeChart strips the data URI envelope and returns the raw image bytes.
func decodeChart(t *testing.T, uri string) []byte {
	t.Helper()

	encoded, ok := strings.CutPrefix(uri, "data:image/png;base64,")
	if !ok {
		t.Fatalf("chart is not a png data URI: %.40q", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("chart payload is not valid base64: %v", err)
	}
	return raw
}

func TestRenderSentiment(t *testing.T) {
	r := NewChartRenderer()

	uri, err := r.RenderSentiment(models.SentimentScores{
		Compound: 0.78,
		Positive: 0.61,
		Negative: 0.09,
		Neutral:  0.30,
		Label:    models.LabelPositive,
	})
	if err != nil {
		t.Fatalf("RenderSentiment returned error: %v", err)
	}

	raw := decodeChart(t, uri)
	if len(raw) < len(pngMagic) || string(raw[:len(pngMagic)]) != string(pngMagic) {
		t.Errorf("decoded chart does not start with the png signature")
	}
}

func TestRenderSentimentZeroScores(t *testing.T) {
	r := NewChartRenderer()

	uri, err := r.RenderSentiment(models.SentimentScores{Label: models.LabelNeutral})
	if err != nil {
		t.Fatalf("RenderSentiment returned error: %v", err)
	}
	decodeChart(t, uri)
}

func TestRenderTopWords(t *testing.T) {
	r := NewChartRenderer()

	uri, err := r.RenderTopWords([]models.WordFrequency{
		{Word: "battery", Count: 7},
		{Word: "screen", Count: 4},
		{Word: "keyboard", Count: 2},
	})
	if err != nil {
		t.Fatalf("RenderTopWords returned error: %v", err)
	}

	raw := decodeChart(t, uri)
	if len(raw) < len(pngMagic) || string(raw[:len(pngMagic)]) != string(pngMagic) {
		t.Errorf("decoded chart does not start with the png signature")
	}
}

func TestRenderTopWordsEmpty(t *testing.T) {
	r := NewChartRenderer()

	uri, err := r.RenderTopWords(nil)
	if err == nil {
		t.Error("expected an error for an empty word list")
	}
	if uri != "" {
		t.Errorf("expected empty uri, got %.40q", uri)
	}
}

func TestRenderTopWordsCapsAtEight(t *testing.T) {
	r := NewChartRenderer()

	words := make([]models.WordFrequency, 12)
	for i := range words {
		words[i] = models.WordFrequency{Word: strings.Repeat(string(rune('a'+i)), 3), Count: 12 - i}
	}

	uri, err := r.RenderTopWords(words)
	if err != nil {
		t.Fatalf("RenderTopWords returned error: %v", err)
	}
	decodeChart(t, uri)
}
