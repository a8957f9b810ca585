package analyzer

import (
	"math"
	"testing"

	"github.com/zombar/reviewpulse/internal/models"
)

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		name     string
		compound float64
		expected string
	}{
		{"strongly positive", 0.8, models.LabelPositive},
		{"exactly at positive threshold", 0.05, models.LabelPositive},
		{"just below positive threshold", 0.049999, models.LabelNeutral},
		{"zero", 0, models.LabelNeutral},
		{"just above negative threshold", -0.049999, models.LabelNeutral},
		{"exactly at negative threshold", -0.05, models.LabelNegative},
		{"strongly negative", -0.8, models.LabelNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sentimentLabel(tt.compound); got != tt.expected {
				t.Errorf("sentimentLabel(%f) = %q, expected %q", tt.compound, got, tt.expected)
			}
		})
	}
}

func TestAnalyzeSentimentDirection(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	tests := []struct {
		name    string
		content string
		label   string
	}{
		{"positive review", "This is wonderful, I love it and highly recommend it.", models.LabelPositive},
		{"negative review", "This is terrible, I hate it and deeply regret buying it.", models.LabelNegative},
		{"neutral description", "The package contains four boxes.", models.LabelNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := a.Analyze(tt.content, "")
			if err != nil {
				t.Fatalf("Analyze returned error: %v", err)
			}
			if result.Sentiment.Label != tt.label {
				t.Errorf("expected label %q, got %q (compound %f)",
					tt.label, result.Sentiment.Label, result.Sentiment.Compound)
			}
		})
	}
}

func TestAnalyzeSentimentComponentsSum(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	result, err := a.Analyze("The room was spacious but the bathroom smelled awful.", "")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	sum := result.Sentiment.Positive + result.Sentiment.Negative + result.Sentiment.Neutral
	if math.Abs(sum-1) > 0.01 {
		t.Errorf("expected components to sum to 1, got %f", sum)
	}
}
