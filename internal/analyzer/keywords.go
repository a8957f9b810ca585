package analyzer

import (
	"sort"

	"github.com/zombar/reviewpulse/internal/models"
)

// wordStat pairs a word's count with the position of its first appearance
// in the filtered token sequence. Recording the position makes frequency
// ties break on document order instead of map iteration order.
type wordStat struct {
	word  string
	count int
	first int
}

// topWords ranks the alphabetic, non-stop-word tokens by frequency and
// returns at most n entries, ordered by count descending and then by first
// appearance.
func (a *Analyzer) topWords(tokens []string, n int) []models.WordFrequency {
	stats := make(map[string]*wordStat)
	order := make([]*wordStat, 0, 64)

	pos := 0
	for _, tok := range tokens {
		if !isAlphabetic(tok) || a.stopWords[tok] {
			continue
		}
		st, ok := stats[tok]
		if !ok {
			st = &wordStat{word: tok, first: pos}
			stats[tok] = st
			order = append(order, st)
		}
		st.count++
		pos++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	if len(order) > n {
		order = order[:n]
	}
	top := make([]models.WordFrequency, len(order))
	for i, st := range order {
		top[i] = models.WordFrequency{Word: st.word, Count: st.count}
	}
	return top
}
