package analyzer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/zombar/reviewpulse/internal/models"
)

// ChartRenderer turns sentiment scores and word frequencies into embeddable
// image artifacts. Implementations must be safe for concurrent use.
type ChartRenderer interface {
	RenderSentiment(scores models.SentimentScores) (string, error)
	RenderTopWords(words []models.WordFrequency) (string, error)
}

// Dark theme palette shared by both charts.
var (
	chartBackground = color.RGBA{R: 0x33, G: 0x26, B: 0x21, A: 0xff}
	chartInk        = color.RGBA{R: 0xe8, G: 0xe3, B: 0xd3, A: 0xff}
	barCoral        = color.RGBA{R: 0xff, G: 0x6b, B: 0x47, A: 0xff}
	barBrown        = color.RGBA{R: 0x8b, G: 0x69, B: 0x14, A: 0xff}
	barGrey         = color.RGBA{R: 0x52, G: 0x52, B: 0x5b, A: 0xff}
)

type plotRenderer struct{}

// NewChartRenderer returns the default renderer, which draws PNG bar charts
// and serializes them as data URIs.
func NewChartRenderer() ChartRenderer {
	return plotRenderer{}
}

// RenderSentiment draws one bar per polarity bucket from the raw scores,
// each annotated with its value to two decimals.
func (plotRenderer) RenderSentiment(scores models.SentimentScores) (string, error) {
	p := newDarkPlot("Sentiment Analysis")
	p.Y.Label.Text = "Score"

	values := []float64{scores.Positive, scores.Negative, scores.Neutral}
	colors := []color.Color{barCoral, barBrown, barGrey}
	maxValue := 0.0
	for i, v := range values {
		bars, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(50))
		if err != nil {
			return "", fmt.Errorf("building sentiment bars: %w", err)
		}
		bars.Color = colors[i]
		bars.LineStyle.Width = 0
		bars.XMin = float64(i)
		p.Add(bars)
		if v > maxValue {
			maxValue = v
		}
	}
	p.NominalX("Positive", "Negative", "Neutral")
	p.Y.Min = 0
	p.Y.Max = maxValue * 1.2
	if p.Y.Max < 1 {
		p.Y.Max = 1
	}

	points := make(plotter.XYs, len(values))
	annotations := make([]string, len(values))
	for i, v := range values {
		points[i] = plotter.XY{X: float64(i), Y: v + 0.01}
		annotations[i] = fmt.Sprintf("%.2f", v)
	}
	labels, err := annotate(points, annotations, text.XCenter, text.YBottom)
	if err != nil {
		return "", fmt.Errorf("annotating sentiment bars: %w", err)
	}
	p.Add(labels)

	return encodePNG(p, 8*vg.Inch, 6*vg.Inch)
}

// RenderTopWords draws a horizontal bar chart of up to eight words, most
// frequent in the first row, each annotated with its integer count.
func (plotRenderer) RenderTopWords(words []models.WordFrequency) (string, error) {
	if len(words) == 0 {
		return "", errors.New("no words to chart")
	}
	if len(words) > chartWordCount {
		words = words[:chartWordCount]
	}

	p := newDarkPlot("Most Frequent Words")
	p.X.Label.Text = "Frequency"

	names := make([]string, len(words))
	maxCount := 0
	for i, wf := range words {
		bars, err := plotter.NewBarChart(plotter.Values{float64(wf.Count)}, vg.Points(22))
		if err != nil {
			return "", fmt.Errorf("building word bars: %w", err)
		}
		bars.Horizontal = true
		bars.Color = barCoral
		bars.LineStyle.Width = 0
		bars.XMin = float64(i)
		p.Add(bars)

		names[i] = wf.Word
		if wf.Count > maxCount {
			maxCount = wf.Count
		}
	}
	p.NominalY(names...)
	p.X.Min = 0
	p.X.Max = float64(maxCount)*1.2 + 1

	points := make(plotter.XYs, len(words))
	annotations := make([]string, len(words))
	for i, wf := range words {
		points[i] = plotter.XY{X: float64(wf.Count) + 0.5, Y: float64(i)}
		annotations[i] = fmt.Sprintf("%d", wf.Count)
	}
	labels, err := annotate(points, annotations, text.XLeft, text.YCenter)
	if err != nil {
		return "", fmt.Errorf("annotating word bars: %w", err)
	}
	p.Add(labels)

	return encodePNG(p, 10*vg.Inch, 6*vg.Inch)
}

// newDarkPlot creates a plot styled for the dark theme.
func newDarkPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Color = chartInk
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(10)
	p.BackgroundColor = chartBackground

	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Label.TextStyle.Color = chartInk
		axis.LineStyle.Color = chartInk
		axis.Tick.LineStyle.Color = chartInk
		axis.Tick.Label.Color = chartInk
	}
	return p
}

// annotate builds value labels for bars with a uniform style.
func annotate(points plotter.XYs, values []string, xAlign text.XAlignment, yAlign text.YAlignment) (*plotter.Labels, error) {
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: values})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = chartInk
		labels.TextStyle[i].Font.Size = vg.Points(11)
		labels.TextStyle[i].XAlign = xAlign
		labels.TextStyle[i].YAlign = yAlign
	}
	return labels, nil
}

// encodePNG renders the plot at the given size and wraps the PNG bytes in
// a data URI for direct embedding.
func encodePNG(p *plot.Plot, width, height vg.Length) (string, error) {
	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return "", fmt.Errorf("creating png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
