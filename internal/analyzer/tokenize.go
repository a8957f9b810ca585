package analyzer

import (
	"strings"
	"unicode"
)

// Abbreviations that end with a period without ending a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"inc": true, "ltd": true, "co": true, "corp": true, "dept": true,
	"fig": true, "est": true, "approx": true, "al": true, "no": true,
}

// splitSentences segments content into sentences, keeping terminal
// punctuation attached. A period only ends a sentence when followed by
// whitespace or end of text and not preceded by a known abbreviation or a
// single-letter initial. Zero sentences is a valid outcome.
func splitSentences(content string) []string {
	runes := []rune(content)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		// Consume the full punctuation run ("?!", "...") and any closing
		// quotes or brackets that belong to the sentence.
		end := i
		for end+1 < len(runes) && isTerminal(runes[end+1]) {
			end++
		}
		for end+1 < len(runes) && isCloser(runes[end+1]) {
			end++
		}

		if runes[i] == '.' && end == i && isAbbreviationAt(runes, start, i) {
			continue
		}
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			// Mid-token punctuation such as decimals or file names.
			i = end
			continue
		}

		if s := strings.TrimSpace(string(runes[start : end+1])); s != "" {
			sentences = append(sentences, s)
		}
		next := end + 1
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		start = next
		i = end
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

// isAbbreviationAt reports whether the period at index dot trails an
// abbreviation or a single-letter initial rather than ending a sentence.
func isAbbreviationAt(runes []rune, start, dot int) bool {
	end := dot
	begin := end
	for begin > start && unicode.IsLetter(runes[begin-1]) {
		begin--
	}
	if begin == end {
		return false
	}
	word := strings.ToLower(string(runes[begin:end]))
	if len([]rune(word)) == 1 {
		return true
	}
	return abbreviations[word]
}

// extractTokens lowercases content and splits it into alphanumeric runs.
// Interior apostrophes are kept so contractions stay single tokens;
// trailing apostrophes are trimmed so possessives rank as plain words.
func extractTokens(content string) []string {
	lower := strings.ToLower(content)
	tokens := make([]string, 0, len(lower)/6)
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		if tok := strings.TrimRight(b.String(), "'"); tok != "" {
			tokens = append(tokens, tok)
		}
		b.Reset()
	}

	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' && b.Len() > 0:
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// isAlphabetic reports whether every rune in the token is a letter.
func isAlphabetic(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
