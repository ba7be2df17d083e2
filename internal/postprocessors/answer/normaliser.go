// Package answer cleans generated answers for Markdown rendering.
package answer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.ResponseNormaliser = Normaliser{}

const (
	heading = "### "

	// maxPasses bounds the rule passes Normalise runs.
	maxPasses = 8
)

var (
	blankRuns        = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
	trailingSpace    = regexp.MustCompile(`(?m)[ \t]+$`)
	numberedHeading  = regexp.MustCompile(`\s*(\d+)\.[ \t]*###\s*`)
	numberedPrefix   = regexp.MustCompile(`^\d+\. $`)
	bullet           = regexp.MustCompile(`(?m)^[*+•][ \t]+`)
	repeatedHeadings = regexp.MustCompile(`(###\s+){2,}`)
)

// Normaliser applies Normalise. It is stateless.
type Normaliser struct{}

// Normalise implements driven.ResponseNormaliser.
func (Normaliser) Normalise(text string) string {
	return Normalise(text)
}

// Normalise rewrites model output into consistent Markdown. The rules run
// in a fixed order. A rule can expose new matches for an earlier one, so
// passes repeat until the text stops changing.
func Normalise(text string) string {
	out := text
	for range maxPasses {
		next := pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func pass(text string) string {
	out := strings.TrimSpace(text)
	out = blankRuns.ReplaceAllString(out, "\n\n")
	out = trailingSpace.ReplaceAllString(out, "")
	out = splitNumberedHeadings(out)
	out = isolateHeadings(out)
	out = bullet.ReplaceAllString(out, "- ")
	out = spaceAfterNumbers(out)
	out = repeatedHeadings.ReplaceAllString(out, heading)
	// Collapsing can pull a heading onto the line before it.
	out = isolateHeadings(out)
	return out
}

// splitNumberedHeadings starts every "N. ###" marker on a new paragraph.
func splitNumberedHeadings(s string) string {
	var sb strings.Builder
	last := 0
	for _, m := range numberedHeading.FindAllStringSubmatchIndex(s, -1) {
		sb.WriteString(s[last:m[0]])
		if m[0] > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(s[m[2]:m[3]])
		sb.WriteString(". ")
		sb.WriteString(heading)
		last = m[1]
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// isolateHeadings puts each "### " heading on its own line after a blank
// line. Numbered headings and deeper "####" headings are left alone.
func isolateHeadings(s string) string {
	var sb strings.Builder
	last := 0
	for i := 0; i < len(s); {
		idx := strings.Index(s[i:], heading)
		if idx < 0 {
			break
		}
		at := i + idx
		i = at + len(heading)

		if at == 0 || s[at-1] == '#' {
			continue
		}
		lineStart := strings.LastIndexByte(s[:at], '\n') + 1
		if numberedPrefix.MatchString(s[lineStart:at]) {
			continue
		}

		ws := at
		for ws > last && isSpaceByte(s[ws-1]) {
			ws--
		}
		sb.WriteString(s[last:ws])
		if ws > 0 {
			sb.WriteString("\n\n")
		}
		last = at
	}
	sb.WriteString(s[last:])
	return sb.String()
}

// spaceAfterNumbers turns "1.Item" into "1. Item".
func spaceAfterNumbers(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		sb.WriteByte(s[i])
		if s[i] != '.' || i == 0 || !isDigit(s[i-1]) || i+1 >= len(s) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(s[i+1:])
		if !unicode.IsSpace(next) {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
