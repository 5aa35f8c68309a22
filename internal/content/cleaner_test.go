package content

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCleanBodyStripsMarkup(t *testing.T) {
	got := CleanBody(`<p>Hello</p><script>evil()</script>`)

	assert.Contains(t, got, "Hello")
	assert.NotContains(t, got, "evil")
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
}

func TestCleanBodyDecodesEntities(t *testing.T) {
	got := CleanBody(`<p>Ski &amp; snow &mdash; this week&#39;s picks</p>`)
	assert.Contains(t, got, "Ski & snow")
	assert.Contains(t, got, "week's")
}

func TestCleanBodyStripsLeakedHeaders(t *testing.T) {
	body := "From: sender@example.com\nContent-Type: text/plain\nMIME-Version: 1.0\n\nActual newsletter text."
	got := CleanBody(body)

	assert.NotContains(t, got, "sender@example.com")
	assert.NotContains(t, got, "MIME-Version")
	assert.Contains(t, got, "Actual newsletter text.")
}

func TestCleanBodyStripsSignature(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"dash marker", "The real content.\n-- \nJane Doe\nCEO of Example"},
		{"mobile footer", "The real content.\nSent from my iPhone"},
		{"list footer", "The real content.\nYou are receiving this email because you subscribed."},
		{"french footer", "The real content.\nVous recevez cet email car vous êtes abonné."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanBody(tt.body)
			assert.Contains(t, got, "The real content.")
			assert.NotContains(t, got, "Jane Doe")
			assert.NotContains(t, got, "iPhone")
			assert.NotContains(t, got, "abonné")
		})
	}
}

func TestCleanBodyReplacesURLs(t *testing.T) {
	got := CleanBody("Read more at https://example.com/article?utm_source=nl today")

	assert.NotContains(t, got, "example.com")
	assert.Contains(t, got, URLPlaceholder)
}

func TestCleanBodyCollapsesWhitespace(t *testing.T) {
	got := CleanBody("a    b\n\n\n\n\nc\t\td")
	assert.Equal(t, "a b\n\nc d", got)
}

func TestBuildCorpusSeparator(t *testing.T) {
	corpus := BuildCorpus([]string{"first", "", "second"})

	assert.Equal(t, "first\n\n"+EmailSeparator+"\n\nsecond", corpus)
}

func TestBuildCorpusTruncates(t *testing.T) {
	big := strings.Repeat("x", MaxCorpusChars+500)
	corpus := BuildCorpus([]string{big})

	assert.Len(t, corpus, MaxCorpusChars)
}

func TestBuildCorpusTruncatesOnRuneBoundary(t *testing.T) {
	big := strings.Repeat("é", MaxCorpusChars+10)
	corpus := BuildCorpus([]string{big})

	assert.True(t, utf8.ValidString(corpus))
	assert.Equal(t, MaxCorpusChars, utf8.RuneCountInString(corpus))
}

func TestBuildCorpusEmpty(t *testing.T) {
	assert.Equal(t, "", BuildCorpus(nil))
	assert.Equal(t, "", BuildCorpus([]string{"", "  "}))
}

func TestResolveRedirectsFollowsServerRedirect(t *testing.T) {
	var final string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, final, http.StatusFound)
		default:
			fmt.Fprint(w, "ok")
		}
	}))
	defer srv.Close()
	final = srv.URL + "/article"

	summary := "See " + srv.URL + "/redirect for details"
	got := resolveRedirectsWith(summary, srv.Client())

	assert.Contains(t, got, final)
	assert.NotContains(t, got, "/redirect")
}

func TestResolveRedirectsMetaRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<meta http-equiv="refresh" content="0; URL=https://example.com/target?utm=1">`)
	}))
	defer srv.Close()

	summary := "See " + srv.URL + "/redirect-abc"
	got := resolveRedirectsWith(summary, srv.Client())

	assert.Contains(t, got, "https://example.com/target")
	assert.NotContains(t, got, "utm=1")
}

func TestResolveRedirectsKeepsURLOnFailure(t *testing.T) {
	summary := "See http://127.0.0.1:1/redirect-dead now"
	got := resolveRedirectsWith(summary, &http.Client{})

	assert.Equal(t, summary, got)
}

func TestResolveRedirectsIgnoresPlainURLs(t *testing.T) {
	summary := "See https://example.com/article now"
	// No HTTP call should happen for non-redirect URLs; a nil-safe client
	// would panic if one did.
	got := resolveRedirectsWith(summary, &http.Client{})

	assert.Equal(t, summary, got)
}
