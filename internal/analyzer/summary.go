package analyzer

import "log/slog"

const summaryTruncateLimit = 500

// summarizeContent runs the summarizer behind a recovery boundary. A panic
// inside the stage degrades to the truncated content instead of failing the
// whole analysis.
func (a *Analyzer) summarizeContent(content string, sentences []string) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("summary degraded to truncated content",
				slog.String("stage", "summary"),
				slog.Any("panic", r))
			summary = truncateContent(content, summaryTruncateLimit)
		}
	}()
	return summarize(content, sentences)
}

// summarize builds a position-based extractive summary: the first, middle,
// and last sentences joined with single spaces. Documents of three or fewer
// sentences pass through untouched, including documents where segmentation
// found no sentence boundary at all.
func summarize(content string, sentences []string) string {
	if len(sentences) <= 3 {
		return content
	}
	return sentences[0] + " " + sentences[len(sentences)/2] + " " + sentences[len(sentences)-1]
}

// truncateContent cuts content to limit characters with a trailing ellipsis
// marker when it was longer.
func truncateContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
