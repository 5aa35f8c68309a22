package newsletter

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the current UserData document schema.
const SchemaVersion = 2

// Frequency is how often a group's digest fires.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency normalizes a stored frequency value.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// ParseWeekday maps a stored lowercase weekday name to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("unknown weekday %q", s)
	}
}

const (
	// MinAnalyzeDays and MaxAnalyzeDays bound the mailbox query window.
	MinAnalyzeDays = 1
	MaxAnalyzeDays = 30

	// DefaultAnalyzeDays is used when the stored value is missing or invalid.
	DefaultAnalyzeDays = 7
)

// lastRunLayouts are the timestamp formats accepted for LastRun. Older
// documents stored bare ISO timestamps without a zone.
var lastRunLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ScheduleConfig holds a group's digest schedule and delivery settings.
type ScheduleConfig struct {
	Frequency    Frequency `json:"frequency"`
	ScheduleDay  string    `json:"schedule_day"`
	ScheduleTime string    `json:"schedule_time"` // "HH:MM" in the reference timezone
	AnalyzeDays  int       `json:"days_to_analyze"`
	Notification string    `json:"notification_email,omitempty"`
	CustomPrompt string    `json:"custom_prompt,omitempty"`
	Enabled      bool      `json:"enabled"`
	LastRun      string    `json:"last_run,omitempty"` // RFC3339; empty means never ran
}

// LastRunTime parses the stored LastRun timestamp. The zero time with a nil
// error means the group has never produced a digest.
func (c ScheduleConfig) LastRunTime() (time.Time, error) {
	if c.LastRun == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range lastRunLayouts {
		t, err := time.Parse(layout, c.LastRun)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parsing last_run %q: %w", c.LastRun, lastErr)
}

// SetLastRun records the instant of the last content-producing run.
func (c *ScheduleConfig) SetLastRun(t time.Time) {
	c.LastRun = t.Format(time.RFC3339)
}

// ClampAnalyzeDays forces AnalyzeDays into the permitted window.
func (c *ScheduleConfig) ClampAnalyzeDays() {
	if c.AnalyzeDays < MinAnalyzeDays || c.AnalyzeDays > MaxAnalyzeDays {
		c.AnalyzeDays = DefaultAnalyzeDays
	}
}

// Group is a named set of sender addresses sharing one schedule.
type Group struct {
	Title    string         `json:"title"`
	Emails   []string       `json:"emails"`
	Settings ScheduleConfig `json:"settings"`
}

// HasSender reports whether addr is one of the group's configured senders.
// Matching is case-sensitive, mirroring the Gmail query semantics.
func (g Group) HasSender(addr string) bool {
	for _, e := range g.Emails {
		if e == addr {
			return true
		}
	}
	return false
}

// AddSender adds addr to the group unless already present.
func (g *Group) AddSender(addr string) bool {
	if g.HasSender(addr) {
		return false
	}
	g.Emails = append(g.Emails, addr)
	return true
}

// RemoveSender removes addr from the group.
func (g *Group) RemoveSender(addr string) bool {
	for i, e := range g.Emails {
		if e == addr {
			g.Emails = append(g.Emails[:i], g.Emails[i+1:]...)
			return true
		}
	}
	return false
}

// UserData is the per-user document stored in the remote JSON blob.
type UserData struct {
	SchemaVersion int     `json:"schema_version"`
	Groups        []Group `json:"groups"`
}

// FindGroup returns a pointer to the group with the given title, or nil.
func (u *UserData) FindGroup(title string) *Group {
	for i := range u.Groups {
		if u.Groups[i].Title == title {
			return &u.Groups[i]
		}
	}
	return nil
}

// AddGroup appends a group. Titles are unique within a user's document.
func (u *UserData) AddGroup(g Group) error {
	if u.FindGroup(g.Title) != nil {
		return fmt.Errorf("group %q already exists", g.Title)
	}
	u.Groups = append(u.Groups, g)
	return nil
}

// RemoveGroup deletes the group with the given title.
func (u *UserData) RemoveGroup(title string) bool {
	for i := range u.Groups {
		if u.Groups[i].Title == title {
			u.Groups = append(u.Groups[:i], u.Groups[i+1:]...)
			return true
		}
	}
	return false
}
