package content

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	redirectURLRe = regexp.MustCompile(`https?://\S*redirect\S*`)
	metaRefreshRe = regexp.MustCompile(`URL=([^"]+)`)
)

// redirectHTTPClient follows redirects with a bounded timeout so a dead
// tracking host cannot stall a digest run.
var redirectHTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}

// ResolveRedirects replaces newsletter redirect links in a summary with the
// URL they ultimately point at. Resolution failures keep the original link.
func ResolveRedirects(summary string) string {
	return resolveRedirectsWith(summary, redirectHTTPClient)
}

func resolveRedirectsWith(summary string, client *http.Client) string {
	for _, raw := range redirectURLRe.FindAllString(summary, -1) {
		resolved := resolveURL(raw, client)
		if resolved != raw {
			summary = strings.ReplaceAll(summary, raw, resolved)
		}
	}
	return summary
}

// resolveURL follows HTTP redirects for u. If the final URL is unchanged,
// the body is checked for a meta-refresh target as some trackers redirect
// client-side. Any failure returns u unchanged.
func resolveURL(u string, client *http.Client) string {
	res, err := client.Get(u)
	if err != nil {
		return u
	}
	defer res.Body.Close()

	final := res.Request.URL.String()
	if final != u {
		return final
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 64*1024))
	if err != nil {
		return u
	}
	if m := metaRefreshRe.FindSubmatch(body); m != nil {
		target := string(m[1])
		// Strip tracking query parameters from the meta-refresh target.
		if i := strings.Index(target, "?"); i >= 0 {
			target = target[:i]
		}
		return target
	}
	return u
}
