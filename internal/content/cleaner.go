package content

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// EmailSeparator joins cleaned message bodies in the corpus.
	EmailSeparator = "--- NEW EMAIL ---"

	// MaxCorpusChars bounds the corpus handed to the summarizer, which has
	// its own context limit.
	MaxCorpusChars = 32000

	// URLPlaceholder replaces raw URLs in cleaned bodies.
	URLPlaceholder = "[link]"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	urlRe    = regexp.MustCompile(`https?://\S+`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	blankRe  = regexp.MustCompile(`\n{3,}`)

	// headerLineRe matches transport headers that leak into decoded bodies.
	headerLineRe = regexp.MustCompile(`(?im)^(from|to|cc|subject|date|reply-to|return-path|received|content-type|content-transfer-encoding|mime-version|list-unsubscribe):[^\n]*\n?`)

	// signatureRes match known signature and footer boilerplate; everything
	// from the match to the end of the body is dropped.
	signatureRes = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^-- ?$`),
		regexp.MustCompile(`(?i)sent from my (iphone|ipad|android)`),
		regexp.MustCompile(`(?i)you (are receiving|received) this email`),
		regexp.MustCompile(`(?i)view this email in your browser`),
		regexp.MustCompile(`(?i)update your preferences`),
		regexp.MustCompile(`(?i)vous recevez cet e?mail`),
		regexp.MustCompile(`(?i)se d[ée]sinscrire`),
		regexp.MustCompile(`(?i)g[ée]rer mes pr[ée]f[ée]rences`),
	}
)

// CleanBody reduces a raw message body to plain prose.
//
// Markup is stripped (script and style elements with their content), HTML
// entities are decoded, leaked transport headers and trailing signature
// boilerplate are removed, raw URLs become URLPlaceholder, and whitespace
// is collapsed.
func CleanBody(body string) string {
	s := scriptRe.ReplaceAllString(body, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = headerLineRe.ReplaceAllString(s, "")

	for _, re := range signatureRes {
		if loc := re.FindStringIndex(s); loc != nil {
			s = s[:loc[0]]
		}
	}

	s = urlRe.ReplaceAllString(s, URLPlaceholder)
	s = spaceRe.ReplaceAllString(s, " ")
	s = blankRe.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// BuildCorpus joins cleaned bodies with EmailSeparator and truncates the
// result to MaxCorpusChars characters. Empty bodies are skipped.
func BuildCorpus(bodies []string) string {
	parts := make([]string, 0, len(bodies))
	for _, b := range bodies {
		if strings.TrimSpace(b) == "" {
			continue
		}
		parts = append(parts, b)
	}
	corpus := strings.Join(parts, "\n\n"+EmailSeparator+"\n\n")
	// The limit counts characters, not bytes; truncating the byte slice
	// could split a multi-byte rune.
	if utf8.RuneCountInString(corpus) > MaxCorpusChars {
		corpus = string([]rune(corpus)[:MaxCorpusChars])
	}
	return corpus
}
