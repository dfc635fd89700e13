package report

import (
	"regexp"
	"strings"
)

const inquiryConfidence = 75

var (
	inquiryPattern = regexp.MustCompile(`(?im)^[ \t]*([A-Za-z][A-Za-z0-9&.,'/\- ]*?)[ \t]*[:\-]?[ \t]+(\d{1,2}/\d{1,2}/\d{4})(?:[ \t]+(hard|soft)\b)?`)

	// Labels that precede a date without naming a creditor.
	inquiryLabels = map[string]bool{
		"date":            true,
		"inquiry date":    true,
		"date of inquiry": true,
		"inquired on":     true,
		"requested on":    true,
	}
)

func (p *Parser) extractInquiries(text string, add func(Inquiry)) {
	for _, m := range inquiryPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(strings.TrimRight(m[1], " -:,"))
		if name == "" || inquiryLabels[strings.ToLower(name)] {
			continue
		}

		typ := InquiryUnknown
		if m[3] != "" {
			typ = InquiryType(strings.ToLower(m[3]))
		}

		add(Inquiry{
			Creditor:      name,
			CreditorMatch: p.resolve(name),
			Date:          m[2],
			Type:          typ,
			Confidence:    inquiryConfidence,
		})
	}
}
