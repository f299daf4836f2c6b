package models

import (
	"html"
	"regexp"
	"strings"

	"github.com/noah-isme/school-gateway/pkg/binex"
)

// Notice is a circular published to the school.
type Notice struct {
	ID         binex.Text `json:"id"`
	Title      binex.Text `json:"title"`
	Details    binex.Text `json:"details"`
	Date       binex.Text `json:"date"`
	Attachment binex.Text `json:"attachment,omitempty"`
	Audience   binex.Text `json:"audience,omitempty"`
}

var (
	breakTags  = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li)\s*/?\s*>`)
	markupTags = regexp.MustCompile(`<[^>]*>`)
	blankRuns  = regexp.MustCompile(`[ \t]+`)
	lineRuns   = regexp.MustCompile(`\n{3,}`)
)

// PlainDetails strips markup from Details and unescapes entities, keeping line breaks.
func (n Notice) PlainDetails() string {
	text := breakTags.ReplaceAllString(n.Details.String(), "\n")
	text = markupTags.ReplaceAllString(text, "")
	text = strings.ReplaceAll(html.UnescapeString(text), "\u00a0", " ")
	text = blankRuns.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(lineRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

// FilterStatus implements filter.Filterable; notices carry no status.
func (n Notice) FilterStatus() string { return "" }

// SearchFields implements filter.Filterable.
func (n Notice) SearchFields() []string {
	return []string{n.Title.String(), n.PlainDetails()}
}

// NoticeView is the notice as served, with the plain-text rendering alongside the original.
type NoticeView struct {
	Notice
	PlainText string `json:"plain_text"`
}
