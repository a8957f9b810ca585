package analyzer

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/zombar/reviewpulse/internal/models"
)

const (
	topKeywordCount = 10
	chartWordCount  = 8
	defaultTitle    = "Untitled"
)

// ErrEmptyContent is returned for empty or whitespace-only documents, the
// only input the pipeline refuses outright.
var ErrEmptyContent = errors.New("no content provided")

// Analyzer runs the content analysis pipeline. Every field is read-only
// after construction, so a single instance can serve concurrent callers.
type Analyzer struct {
	stopWords map[string]bool
	vader     *govader.SentimentIntensityAnalyzer
	charts    ChartRenderer
	logger    *slog.Logger
}

// New creates an Analyzer with the built-in stop-word set, the VADER
// sentiment lexicon, and the default chart renderer.
func New() *Analyzer {
	return NewWithRenderer(NewChartRenderer())
}

// NewWithRenderer creates an Analyzer using a custom chart renderer.
func NewWithRenderer(renderer ChartRenderer) *Analyzer {
	return &Analyzer{
		stopWords: getStopWords(),
		vader:     govader.NewSentimentIntensityAnalyzer(),
		charts:    renderer,
		logger:    slog.Default(),
	}
}

// Analyze runs every pipeline stage over one document and assembles the
// result. Aside from empty content, stage failures never propagate: each
// stage degrades to its documented default so a well-formed result always
// comes back for non-empty text.
func (a *Analyzer) Analyze(content, title string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if title == "" {
		title = defaultTitle
	}

	sentences := splitSentences(content)
	tokens := extractTokens(content)

	stats := a.computeStatistics(content, sentences, tokens)

	raw := a.vader.PolarityScores(content)
	rawScores := models.SentimentScores{
		Compound: raw.Compound,
		Positive: raw.Positive,
		Negative: raw.Negative,
		Neutral:  raw.Neutral,
		Label:    sentimentLabel(raw.Compound),
	}

	topWords := a.topWords(tokens, topKeywordCount)
	keywords := make([]string, len(topWords))
	for i, wf := range topWords {
		keywords[i] = wf.Word
	}

	return &models.AnalysisResult{
		Success:    true,
		Title:      title,
		Statistics: stats,
		Sentiment: models.SentimentScores{
			Compound: round3(raw.Compound),
			Positive: round3(raw.Positive),
			Negative: round3(raw.Negative),
			Neutral:  round3(raw.Neutral),
			Label:    rawScores.Label,
		},
		TopWords:            topWords,
		Keywords:            keywords,
		Summary:             a.summarizeContent(content, sentences),
		Charts:              a.renderCharts(rawScores, topWords),
		SentimentConfidence: max(raw.Positive, raw.Negative, raw.Neutral),
	}, nil
}

// renderCharts draws the sentiment and keyword charts. Each chart fails on
// its own: a failed render is logged and skipped, so the returned map holds
// anywhere from zero to two entries.
func (a *Analyzer) renderCharts(scores models.SentimentScores, topWords []models.WordFrequency) map[string]string {
	charts := make(map[string]string, 2)

	if uri, err := a.charts.RenderSentiment(scores); err != nil {
		a.logger.Warn("chart rendering skipped",
			slog.String("chart", "sentiment"),
			slog.String("error", err.Error()))
	} else {
		charts["sentiment"] = uri
	}

	if len(topWords) > 0 {
		if uri, err := a.charts.RenderTopWords(topWords); err != nil {
			a.logger.Warn("chart rendering skipped",
				slog.String("chart", "words"),
				slog.String("error", err.Error()))
		} else {
			charts["words"] = uri
		}
	}

	return charts
}
