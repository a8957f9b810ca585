package analyzer

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"github.com/zombar/reviewpulse/internal/models"
)

// stubRenderer lets tests control chart outcomes without drawing PNGs.
type stubRenderer struct {
	sentimentErr error
	wordsErr     error
}

func (s stubRenderer) RenderSentiment(models.SentimentScores) (string, error) {
	if s.sentimentErr != nil {
		return "", s.sentimentErr
	}
	return "data:image/png;base64,c2VudGltZW50", nil
}

func (s stubRenderer) RenderTopWords([]models.WordFrequency) (string, error) {
	if s.wordsErr != nil {
		return "", s.wordsErr
	}
	return "data:image/png;base64,d29yZHM=", nil
}

func TestAnalyze(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	content := `The battery life on this laptop is wonderful. I easily get ten hours of work done.
The keyboard feels great and the screen is sharp. Shipping was fast too.
My only complaint is the noisy fan under heavy load.`

	result, err := a.Analyze(content, "Laptop review")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if !result.Success {
		t.Error("expected success to be true")
	}
	if result.Title != "Laptop review" {
		t.Errorf("expected title %q, got %q", "Laptop review", result.Title)
	}

	// Statistics are computed from the raw content.
	if want := len(strings.Fields(content)); result.Statistics.WordCount != want {
		t.Errorf("expected word count %d, got %d", want, result.Statistics.WordCount)
	}
	if want := utf8.RuneCountInString(content); result.Statistics.CharacterCount != want {
		t.Errorf("expected character count %d, got %d", want, result.Statistics.CharacterCount)
	}
	if result.Statistics.SentenceCount != 5 {
		t.Errorf("expected 5 sentences, got %d", result.Statistics.SentenceCount)
	}
	if result.Statistics.ReadabilityScore == 0 {
		t.Error("readability score should not be zero for normal prose")
	}

	if result.Sentiment.Label != models.LabelPositive {
		t.Errorf("expected label %q, got %q", models.LabelPositive, result.Sentiment.Label)
	}
	if len(result.TopWords) == 0 || len(result.TopWords) > 10 {
		t.Errorf("expected between 1 and 10 top words, got %d", len(result.TopWords))
	}
	if len(result.Keywords) != len(result.TopWords) {
		t.Errorf("expected %d keywords, got %d", len(result.TopWords), len(result.Keywords))
	}
	if result.Summary == "" {
		t.Error("summary should not be empty")
	}
	if len(result.Charts) != 2 {
		t.Errorf("expected 2 charts, got %d", len(result.Charts))
	}
	if result.SentimentConfidence <= 0 || result.SentimentConfidence > 1 {
		t.Errorf("sentiment confidence out of range: %f", result.SentimentConfidence)
	}
}

func TestAnalyzeEmptyContent(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	tests := []struct {
		name    string
		content string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := a.Analyze(tt.content, "ignored")
			if !errors.Is(err, ErrEmptyContent) {
				t.Errorf("expected ErrEmptyContent, got %v", err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
		})
	}
}

func TestAnalyzeDefaultTitle(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	result, err := a.Analyze("A perfectly fine product.", "")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.Title != "Untitled" {
		t.Errorf("expected default title %q, got %q", "Untitled", result.Title)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})
	content := "The hotel was clean and quiet. Breakfast could have been warmer. Overall a pleasant stay."

	first, err := a.Analyze(content, "Stay")
	if err != nil {
		t.Fatalf("first Analyze returned error: %v", err)
	}
	second, err := a.Analyze(content, "Stay")
	if err != nil {
		t.Fatalf("second Analyze returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzeWordCountUsesRawContent(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	// Tokens drop punctuation and numbers, the word count must not.
	result, err := a.Analyze("Well-known fact: APIs rock. 100%!", "")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if result.Statistics.WordCount != 5 {
		t.Errorf("expected word count 5, got %d", result.Statistics.WordCount)
	}
}

func TestAnalyzeKeywordOrdering(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	result, err := a.Analyze("cat dog cat bird dog cat", "")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	wantWords := []models.WordFrequency{
		{Word: "cat", Count: 3},
		{Word: "dog", Count: 2},
		{Word: "bird", Count: 1},
	}
	if !reflect.DeepEqual(result.TopWords, wantWords) {
		t.Errorf("expected top words %+v, got %+v", wantWords, result.TopWords)
	}

	wantKeywords := []string{"cat", "dog", "bird"}
	if !reflect.DeepEqual(result.Keywords, wantKeywords) {
		t.Errorf("expected keywords %v, got %v", wantKeywords, result.Keywords)
	}
}

func TestAnalyzeSummaryRules(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	t.Run("three sentences pass through", func(t *testing.T) {
		content := "I love this. It is okay. I hate this."
		result, err := a.Analyze(content, "")
		if err != nil {
			t.Fatalf("Analyze returned error: %v", err)
		}
		if result.Summary != content {
			t.Errorf("expected summary %q, got %q", content, result.Summary)
		}
	})

	t.Run("seven sentences pick first middle last", func(t *testing.T) {
		content := "One fish. Two fish. Red fish. Blue fish. Old fish. New fish. Sad fish."
		result, err := a.Analyze(content, "")
		if err != nil {
			t.Fatalf("Analyze returned error: %v", err)
		}
		want := "One fish. Blue fish. Sad fish."
		if result.Summary != want {
			t.Errorf("expected summary %q, got %q", want, result.Summary)
		}
	})
}

func TestAnalyzeChartDegradation(t *testing.T) {
	content := "The coffee was rich and smooth. The service felt rushed. Prices are fair."

	tests := []struct {
		name     string
		renderer stubRenderer
		want     []string
	}{
		{"sentiment chart fails", stubRenderer{sentimentErr: errors.New("render failed")}, []string{"words"}},
		{"words chart fails", stubRenderer{wordsErr: errors.New("render failed")}, []string{"sentiment"}},
		{"both charts fail", stubRenderer{sentimentErr: errors.New("a"), wordsErr: errors.New("b")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewWithRenderer(tt.renderer)
			result, err := a.Analyze(content, "")
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}
			if !result.Success {
				t.Error("chart failures must not fail the analysis")
			}
			if len(result.Charts) != len(tt.want) {
				t.Errorf("expected %d charts, got %d", len(tt.want), len(result.Charts))
			}
			for _, key := range tt.want {
				if _, ok := result.Charts[key]; !ok {
					t.Errorf("expected chart %q to be present", key)
				}
			}
		})
	}
}

func TestAnalyzeSentimentMatchesVader(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})
	content := "The service was excellent but the food was terrible."

	result, err := a.Analyze(content, "")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	raw := govader.NewSentimentIntensityAnalyzer().PolarityScores(content)
	if result.Sentiment.Compound != round3(raw.Compound) {
		t.Errorf("expected compound %f, got %f", round3(raw.Compound), result.Sentiment.Compound)
	}
	if result.Sentiment.Positive != round3(raw.Positive) {
		t.Errorf("expected positive %f, got %f", round3(raw.Positive), result.Sentiment.Positive)
	}

	// Confidence is the strongest raw component, unrounded.
	want := max(raw.Positive, raw.Negative, raw.Neutral)
	if result.SentimentConfidence != want {
		t.Errorf("expected confidence %f, got %f", want, result.SentimentConfidence)
	}
}
