package analyzer

import (
	"reflect"
	"testing"

	"github.com/zombar/reviewpulse/internal/models"
)

func TestTopWords(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})

	tests := []struct {
		name     string
		input    string
		n        int
		expected []models.WordFrequency
	}{
		{
			"stop words filtered",
			"the cat and the dog",
			10,
			[]models.WordFrequency{{Word: "cat", Count: 1}, {Word: "dog", Count: 1}},
		},
		{
			"numeric tokens filtered",
			"beta 2 version 2 beta",
			10,
			[]models.WordFrequency{{Word: "beta", Count: 2}, {Word: "version", Count: 1}},
		},
		{
			"count descending then first occurrence",
			"zebra apple zebra apple banana",
			10,
			[]models.WordFrequency{
				{Word: "zebra", Count: 2},
				{Word: "apple", Count: 2},
				{Word: "banana", Count: 1},
			},
		},
		{
			"no usable tokens",
			"the 2 of 10",
			10,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.topWords(extractTokens(tt.input), tt.n)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestTopWordsCap(t *testing.T) {
	a := NewWithRenderer(stubRenderer{})
	input := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"

	got := a.topWords(extractTokens(input), 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 words, got %d", len(got))
	}

	// All counts tie at one, so order follows first occurrence.
	if got[0].Word != "alpha" || got[9].Word != "juliet" {
		t.Errorf("expected alpha..juliet in occurrence order, got %q..%q", got[0].Word, got[9].Word)
	}
}
