package scraper

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultPageTitle = "Untitled"

// Containers likely to hold the main article, tried in order.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"#content",
	".content",
	".post",
	".entry-content",
	".review-body",
}

// extractTitle prefers the document title, then og:title, then the first h1.
func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t := strings.TrimSpace(og); t != "" {
			return t
		}
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return defaultPageTitle
}

// extractContent pulls paragraph text from the most article-like container
// and drops paragraphs that score as page chrome.
func extractContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	// Start from body so head text never leaks into the line fallback.
	root := doc.Selection
	if body := doc.Find("body"); body.Length() > 0 {
		root = body.First()
	}
	for _, sel := range contentSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			root = found.First()
			break
		}
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	// Pages without paragraph markup fall back to the container's line text.
	if len(paragraphs) == 0 {
		for _, line := range strings.Split(root.Text(), "\n") {
			if text := strings.TrimSpace(line); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}

	return strings.Join(filterBoilerplate(paragraphs), "\n\n")
}

// Phrases that mark navigation, promos, and page chrome rather than review
// text.
var boilerplatePhrases = []string{
	"click here", "read more", "subscribe", "sign up", "newsletter",
	"share this", "follow us", "related articles", "you may also like",
	"recommended for you", "advertisement", "sponsored content",
	"cookie policy", "privacy policy", "terms of service",
	"all rights reserved", "view comments", "post comment",
	"log in to", "register now", "buy now", "add to cart",
	"back to top", "skip to content", "was this review helpful",
	"report this review",
}

var listItemPattern = regexp.MustCompile(`^(\d+\.|[-*•])`)

// paragraphScore rates how much a paragraph reads like body text on a
// zero-to-one scale. It starts neutral and moves on word count, link
// density, chrome phrases, shouting, and stub list items.
func paragraphScore(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 20 {
		return 0
	}

	score := 0.5
	wordCount := len(strings.Fields(trimmed))

	switch {
	case wordCount < 10:
		score -= 0.3
	case wordCount <= 200:
		score += 0.2
	case wordCount > 300:
		score -= 0.1
	}

	lower := strings.ToLower(trimmed)
	links := strings.Count(lower, "http://") +
		strings.Count(lower, "https://") +
		strings.Count(lower, "www.")
	if float64(links)/float64(wordCount) > 0.1 {
		score -= 0.4
	}

	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			score -= 0.5
			break
		}
	}

	upper, letters := 0, 0
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
			letters++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	if letters > 0 && float64(upper)/float64(letters) > 0.5 {
		score -= 0.3
	}

	if listItemPattern.MatchString(trimmed) && wordCount < 15 {
		score -= 0.2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// filterBoilerplate drops paragraphs scoring below a threshold derived from
// the page itself. When every paragraph scores poorly the page is kept whole
// rather than returning nothing.
func filterBoilerplate(paragraphs []string) []string {
	if len(paragraphs) == 0 {
		return nil
	}

	scores := make([]float64, len(paragraphs))
	for i, p := range paragraphs {
		scores[i] = paragraphScore(p)
	}

	threshold := dynamicThreshold(scores)
	kept := make([]string, 0, len(paragraphs))
	for i, p := range paragraphs {
		if scores[i] >= threshold {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	if len(kept) == 0 {
		return paragraphs
	}
	return kept
}

// dynamicThreshold clamps the median score into a workable band so pages of
// uniformly high or low scores still split sensibly.
func dynamicThreshold(scores []float64) float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	threshold := sorted[len(sorted)/2]
	if threshold > 0.6 {
		threshold = 0.6
	}
	if threshold < 0.3 {
		threshold = 0.3
	}
	return threshold
}
