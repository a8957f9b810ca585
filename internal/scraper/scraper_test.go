package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func serveHTML(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Wireless Headphones Review</title></head>
<body>
<nav><p>Home | Products | About</p></nav>
<article>
<p>These wireless headphones deliver a balanced sound with surprisingly deep bass for their size and price point.</p>
<p>Battery life held up through a full week of commuting, and the quick charge feature gets you two hours of playback in ten minutes.</p>
<p>Subscribe to our newsletter for more reviews.</p>
<p>The companion app is clunky but the hardware more than makes up for it, with controls that work reliably every time.</p>
</article>
<footer><p>All rights reserved.</p></footer>
</body>
</html>`

// TestFetch covers the happy path: title extraction, chrome removal, and
// boilerplate paragraph filtering.
func TestFetch(t *testing.T) {
	srv := serveHTML(t, articlePage)
	s := New(5 * time.Second)

	result, err := s.Fetch(context.Background(), srv.URL)
	assert.NoError(t, err)
	assert.Equal(t, "Wireless Headphones Review", result.Title)
	assert.Equal(t, srv.URL, result.URL)
	assert.Contains(t, result.Content, "balanced sound")
	assert.Contains(t, result.Content, "Battery life")
	assert.NotContains(t, result.Content, "newsletter")
	assert.NotContains(t, result.Content, "Home | Products")
	assert.NotContains(t, result.Content, "All rights reserved")
	assert.Greater(t, result.WordCount, 20)
}

func TestFetchTitleFallbacks(t *testing.T) {
	body := `<article><p>This product exceeded my expectations in every way, from the packaging to the build quality and everything in between.</p></article>`

	tests := []struct {
		name     string
		page     string
		expected string
	}{
		{
			"og title when document title missing",
			`<html><head><meta property="og:title" content="Graph Title"></head><body>` + body + `</body></html>`,
			"Graph Title",
		},
		{
			"first heading as last resort",
			`<html><body><h1>Plain Heading</h1>` + body + `</body></html>`,
			"Plain Heading",
		},
		{
			"untitled when nothing available",
			`<html><body>` + body + `</body></html>`,
			"Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveHTML(t, tt.page)
			s := New(5 * time.Second)

			result, err := s.Fetch(context.Background(), srv.URL)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result.Title)
		})
	}
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	s := New(5 * time.Second)
	_, err := s.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchNoContent(t *testing.T) {
	srv := serveHTML(t, `<html><head><title>Empty</title></head><body></body></html>`)

	s := New(5 * time.Second)
	_, err := s.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestFetchInvalidURL(t *testing.T) {
	s := New(5 * time.Second)

	_, err := s.Fetch(context.Background(), "example.com/no-scheme")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https accepted", "https://example.com/review/42", false},
		{"http accepted", "http://example.com", false},
		{"missing scheme", "example.com/review", true},
		{"unsupported scheme", "ftp://example.com/review", true},
		{"missing host", "https://", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParagraphScore(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{
			"too short rejected outright",
			"Tiny.",
			0,
		},
		{
			"normal prose scores well",
			"The fabric feels sturdy and the stitching has held up through a dozen washes without any loose threads.",
			0.7,
		},
		{
			"shouting penalized",
			"THIS IS AN ABSOLUTELY OUTRAGEOUS SCAM AND EVERYONE MUST KNOW ABOUT IT RIGHT NOW TODAY",
			0.4,
		},
		{
			"link spam floors the score",
			"Visit https://a.example https://b.example https://c.example now",
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, paragraphScore(tt.text), 0.001)
		})
	}
}

// TestFilterBoilerplate checks both the normal cut and the keep-everything
// fallback for pages where nothing scores well.
func TestFilterBoilerplate(t *testing.T) {
	good1 := "The mattress softened slightly after the first month but still supports my back better than anything else I have tried."
	good2 := "Delivery took three days and the compressed packaging made it easy to move the box upstairs alone."
	junk := "Subscribe to our newsletter today."

	kept := filterBoilerplate([]string{good1, junk, good2})
	assert.Equal(t, []string{good1, good2}, kept)

	allJunk := []string{"Buy now!", "Click here."}
	assert.Equal(t, allJunk, filterBoilerplate(allJunk))
}

func TestStatusErrorTemporary(t *testing.T) {
	tests := []struct {
		code      int
		temporary bool
	}{
		{http.StatusNotFound, false},
		{http.StatusForbidden, false},
		{http.StatusGone, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		err := &StatusError{Code: tt.code}
		assert.Equal(t, tt.temporary, err.Temporary(), "status %d", tt.code)
	}
}
