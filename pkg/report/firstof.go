package report

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// matcher extracts one field value from text.
type matcher func(text string) (string, bool)

// firstOf tries matchers in order and returns the first success.
func firstOf(matchers ...matcher) matcher {
	return func(text string) (string, bool) {
		for _, m := range matchers {
			if v, ok := m(text); ok {
				return v, true
			}
		}
		return "", false
	}
}

// capture matches re and returns its first non-empty capture group, trimmed.
func capture(re *regexp.Regexp) matcher {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		for _, g := range m[1:] {
			if v := strings.TrimSpace(g); v != "" {
				return v, true
			}
		}
		return "", false
	}
}

// captures builds one capture matcher per pattern, preserving order.
func captures(patterns ...string) matcher {
	ms := make([]matcher, len(patterns))
	for i, p := range patterns {
		ms[i] = capture(regexp.MustCompile(p))
	}
	return firstOf(ms...)
}

// parseMoney parses "$1,234.56" style amounts.
func parseMoney(s string) (*decimal.Decimal, bool) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return nil, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// moneyField runs m and parses the result as an amount.
func moneyField(m matcher, text string) (*decimal.Decimal, bool) {
	v, ok := m(text)
	if !ok {
		return nil, false
	}
	return parseMoney(v)
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// paragraphs splits text on blank lines, dropping empty pieces.
func paragraphs(text string) []string {
	var out []string
	for _, p := range blankLine.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.Trim(p, "\n"))
		}
	}
	return out
}

// firstLine returns the first non-blank line of text, trimmed.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

var (
	upperHeading = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 &.,'/\-]*$`)
	hasUpper     = regexp.MustCompile(`[A-Z]{2}`)
	nonCreditor  = regexp.MustCompile(`(?i)\b(?:accounts?|summary|information|history|details|report|page|total|balance|status|date|inquir(?:y|ies)|records?)\b`)
)

// headingCreditor treats an all-caps first line as a creditor name, skipping
// lines that read as report furniture.
func headingCreditor(text string) (string, bool) {
	line := firstLine(text)
	if !upperHeading.MatchString(line) || !hasUpper.MatchString(line) || nonCreditor.MatchString(line) {
		return "", false
	}
	return line, true
}

// splitBefore re-splits each block before every line matching re after the
// first, so a heading above the first match stays with it.
func splitBefore(blocks []string, re *regexp.Regexp) []string {
	var out []string
	for _, block := range blocks {
		locs := re.FindAllStringIndex(block, -1)
		if len(locs) < 2 {
			out = append(out, block)
			continue
		}
		prev := 0
		for _, loc := range locs[1:] {
			if piece := strings.Trim(block[prev:loc[0]], "\n"); strings.TrimSpace(piece) != "" {
				out = append(out, piece)
			}
			prev = loc[0]
		}
		if piece := strings.Trim(block[prev:], "\n"); strings.TrimSpace(piece) != "" {
			out = append(out, piece)
		}
	}
	return out
}
