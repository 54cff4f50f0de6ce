/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patientctx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Report is one dated clinical document.
type Report struct {
	Type    string        `json:"type"`
	Date    string        `json:"date"`
	Content ReportContent `json:"content"`
}

// Content kinds carried by ReportContent.
const (
	ContentText = "text"
	ContentPDF  = "pdf"
	ContentLink = "link"
)

// ReportContent is either plain text or a tagged object: {"type":"pdf","rawText":...} or
// {"type":"link","metadata":{"simulatedContent":...}}.
type ReportContent struct {
	Kind string
	text string
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ReportContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*c = ReportContent{Kind: ContentText}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ReportContent{Kind: ContentText, text: s}
		return nil
	}

	var tagged struct {
		Type     string `json:"type"`
		RawText  string `json:"rawText"`
		Metadata struct {
			SimulatedContent string `json:"simulatedContent"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("report content must be a string or a tagged object: %w", err)
	}
	switch tagged.Type {
	case ContentPDF:
		*c = ReportContent{Kind: ContentPDF, text: tagged.RawText}
	case ContentLink:
		*c = ReportContent{Kind: ContentLink, text: tagged.Metadata.SimulatedContent}
	default:
		// Unknown tags carry no text we know how to read.
		*c = ReportContent{Kind: tagged.Type}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c ReportContent) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContentPDF:
		return json.Marshal(map[string]any{"type": ContentPDF, "rawText": c.text})
	case ContentLink:
		return json.Marshal(map[string]any{"type": ContentLink, "metadata": map[string]any{"simulatedContent": c.text}})
	default:
		return json.Marshal(c.text)
	}
}

// Text returns the readable text of the report regardless of how the content was tagged.
func (r Report) Text() string {
	return r.Content.text
}

// Excerpt returns the first n runes of the report text followed by "..." when truncated.
func (r Report) Excerpt(n int) string {
	return Truncate(r.Text(), n)
}

// Truncate cuts s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// ByRecency returns the reports ordered by date, newest first. The sort is stable: reports
// with equal dates keep the order in which the payload listed them. Dates that parse as
// RFC 3339 timestamps or calendar dates come first, by time. Dates that do not parse follow
// them, compared lexically.
func ByRecency(reports []Report) []Report {
	sorted := slices.Clone(reports)
	slices.SortStableFunc(sorted, func(a, b Report) int {
		return compareDates(b.Date, a.Date)
	})
	return sorted
}

// MostRecent returns the newest report whose type is one of types, using the ordering of
// ByRecency. The boolean is false when no report matches.
func MostRecent(reports []Report, types ...string) (Report, bool) {
	for _, r := range ByRecency(reports) {
		if slices.ContainsFunc(types, func(t string) bool { return strings.EqualFold(t, r.Type) }) {
			return r, true
		}
	}
	return Report{}, false
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compareDates orders dates oldest first. Any unparseable date is older than every
// parseable one.
func compareDates(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
