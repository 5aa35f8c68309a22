package newsletter

import (
	"encoding/json"
	"fmt"
)

// legacyDocument covers the pre-versioned document shapes. Older revisions
// stored a flat list of sender addresses under "newsletters" with one global
// settings object; an intermediate revision used "newsletter_groups".
type legacyDocument struct {
	SchemaVersion int             `json:"schema_version"`
	Groups        []Group         `json:"groups"`
	LegacyGroups  []Group         `json:"newsletter_groups"`
	Newsletters   []string        `json:"newsletters"`
	Settings      *legacySettings `json:"settings"`
}

type legacySettings struct {
	AutoSend     *bool  `json:"auto_send"`
	Frequency    string `json:"frequency"`
	ScheduleDay  string `json:"schedule_day"`
	ScheduleTime string `json:"schedule_time"`
	AnalyzeDays  int    `json:"days_to_analyze"`
	Notification string `json:"notification_email"`
	CustomPrompt string `json:"custom_prompt"`
	LastRun      string `json:"last_run"`
}

// DefaultLegacyGroupTitle names the group synthesized from a flat
// "newsletters" list during migration.
const DefaultLegacyGroupTitle = "Newsletters"

// Decode parses a stored user document of any known schema revision and
// returns it normalized to the current schema. An empty input yields an
// empty current-schema document.
func Decode(raw []byte) (*UserData, error) {
	if len(raw) == 0 {
		return &UserData{SchemaVersion: SchemaVersion}, nil
	}

	var doc legacyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding user document: %w", err)
	}

	data := &UserData{SchemaVersion: SchemaVersion}

	switch {
	case doc.SchemaVersion >= SchemaVersion:
		data.Groups = doc.Groups
	case len(doc.LegacyGroups) > 0:
		data.Groups = doc.LegacyGroups
	case len(doc.Newsletters) > 0:
		data.Groups = []Group{migrateFlatList(doc)}
	}

	for i := range data.Groups {
		normalizeGroup(&data.Groups[i])
	}
	return data, nil
}

// Encode serializes a document at the current schema version.
func Encode(data *UserData) ([]byte, error) {
	data.SchemaVersion = SchemaVersion
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding user document: %w", err)
	}
	return raw, nil
}

// migrateFlatList synthesizes one group from the oldest document shape:
// a flat sender list plus one global settings object.
func migrateFlatList(doc legacyDocument) Group {
	g := Group{
		Title:  DefaultLegacyGroupTitle,
		Emails: doc.Newsletters,
	}
	s := doc.Settings
	if s == nil {
		return g
	}
	g.Settings = ScheduleConfig{
		Frequency:    Frequency(s.Frequency),
		ScheduleDay:  s.ScheduleDay,
		ScheduleTime: s.ScheduleTime,
		AnalyzeDays:  s.AnalyzeDays,
		Notification: s.Notification,
		CustomPrompt: s.CustomPrompt,
		LastRun:      s.LastRun,
	}
	// auto_send defaulted inconsistently across revisions; absent means
	// disabled so migration never turns on sending by itself.
	if s.AutoSend != nil {
		g.Settings.Enabled = *s.AutoSend
	}
	return g
}

// normalizeGroup fills defaults for fields older documents left unset.
func normalizeGroup(g *Group) {
	if f, err := ParseFrequency(string(g.Settings.Frequency)); err == nil {
		g.Settings.Frequency = f
	} else {
		g.Settings.Frequency = FrequencyWeekly
	}
	g.Settings.ClampAnalyzeDays()
}
