package analyzer

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/zombar/reviewpulse/internal/models"
)

var errNoCountableText = errors.New("no countable words or sentences")

// computeStatistics fills the statistics block. Word count deliberately uses
// a plain whitespace split of the raw content, not the filtered token list,
// so it matches what a reader would count. A readability failure degrades
// both scores to zero without touching the rest of the block.
func (a *Analyzer) computeStatistics(content string, sentences, tokens []string) models.Statistics {
	words := len(strings.Fields(content))

	stats := models.Statistics{
		WordCount:         words,
		CharacterCount:    utf8.RuneCountInString(content),
		SentenceCount:     len(sentences),
		AvgSentenceLength: avgSentenceLength(words, len(sentences)),
	}

	ease, grade, err := readability(tokens, len(sentences))
	if err != nil {
		a.logger.Warn("readability degraded to zero scores",
			slog.String("stage", "readability"),
			slog.String("error", err.Error()))
	}
	stats.ReadabilityScore = ease
	stats.GradeLevel = grade
	return stats
}

func avgSentenceLength(words, sentences int) float64 {
	if sentences == 0 {
		return 0
	}
	return round2(float64(words) / float64(sentences))
}

// readability computes Flesch Reading Ease and the Flesch-Kincaid grade
// level from token and sentence counts. Degenerate input with nothing to
// count returns zeros and an error for the caller to log.
func readability(tokens []string, sentenceCount int) (float64, float64, error) {
	if len(tokens) == 0 || sentenceCount == 0 {
		return 0, 0, errNoCountableText
	}

	totalSyllables := 0
	for _, tok := range tokens {
		totalSyllables += countSyllables(tok)
	}

	wordsPerSentence := float64(len(tokens)) / float64(sentenceCount)
	syllablesPerWord := float64(totalSyllables) / float64(len(tokens))

	ease := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	grade := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	return round2(ease), round2(grade), nil
}

// countSyllables estimates syllables by counting vowel runs, with the usual
// silent-e adjustment. Every word counts as at least one syllable.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
