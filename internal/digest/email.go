package digest

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// DigestSubject builds the digest email subject line for a group.
func DigestSubject(groupTitle string, now time.Time) string {
	return fmt.Sprintf("AutoBrief · %s · %s", groupTitle, now.Format("02/01/2006"))
}

// RenderHTML wraps a summary in the minimal HTML frame used for the digest
// email. Summary paragraphs are split on blank lines.
func RenderHTML(groupTitle, summary string, now time.Time) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>")
	b.WriteString(html.EscapeString(groupTitle))
	b.WriteString("</h2>")
	fmt.Fprintf(&b, "<p><em>%s</em></p>", now.Format("02/01/2006 15:04"))

	for _, para := range strings.Split(summary, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}

	b.WriteString("</body></html>")
	return b.String()
}
