package gmail

import (
	"strings"
	"time"
)

// BuildQuery constructs a Gmail search query matching messages from any of
// the given senders received within the last sinceDays days:
//
//	after:2026/08/24 (from:a@x.com OR from:b@y.com)
func BuildQuery(senders []string, sinceDays int, now time.Time) string {
	since := now.AddDate(0, 0, -sinceDays).Format("2006/01/02")

	froms := make([]string, len(senders))
	for i, s := range senders {
		froms[i] = "from:" + s
	}

	var q strings.Builder
	q.WriteString("after:")
	q.WriteString(since)
	q.WriteString(" (")
	q.WriteString(strings.Join(froms, " OR "))
	q.WriteString(")")
	return q.String()
}
