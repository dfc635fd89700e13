package report

import (
	"regexp"
	"strings"
)

// Section names one of the fixed report sections.
type Section string

const (
	SectionPersonalInfo  Section = "personal_info"
	SectionCreditScores  Section = "credit_scores"
	SectionAccounts      Section = "accounts"
	SectionNegativeItems Section = "negative_items"
	SectionInquiries     Section = "inquiries"
	SectionPublicRecords Section = "public_records"
)

// AllSections lists the sections in extraction order.
var AllSections = []Section{
	SectionPersonalInfo,
	SectionCreditScores,
	SectionAccounts,
	SectionNegativeItems,
	SectionInquiries,
	SectionPublicRecords,
}

// Sections is the text of each located section.
type Sections struct {
	// Found lists located sections in order of first appearance.
	Found []Section
	text  map[Section]string
}

// Text returns the text of a section, including its header line.
func (s Sections) Text(section Section) (string, bool) {
	t, ok := s.text[section]
	return t, ok
}

// A header is a line holding only the phrase, optionally decorated with
// markdown-ish punctuation and an item count such as "(3)". A short line may
// also carry trailing text after the phrase when it is introduced by a
// separator or a date-ish word ("ACCOUNTS - 2 open", "Personal Information
// as of 01/15/2024"). Trailing text never holds a label colon or a
// three-digit value, so "FICO Score - 720" stays a score line.
const (
	headerPrefix   = `(?i)^[\s#=*\-:]*`
	headerCount    = `(?:\s*\(\d+\))?`
	headerSuffix   = `[\s#=*\-:]*$`
	headerTrailing = `((?:\s*[-|(,\[\x{2013}\x{2014}]|\s+(?:as\s+of|for|from|since|through|dated)\b)[^:]*)$`

	maxTrailingHeaderLen = 60
)

var trailingValue = regexp.MustCompile(`\b\d{3}\b`)

type headerPattern struct {
	whole    *regexp.Regexp
	trailing *regexp.Regexp
}

func header(phrase string) headerPattern {
	lead := headerPrefix + `(?:` + phrase + `)` + headerCount
	return headerPattern{
		whole:    regexp.MustCompile(lead + headerSuffix),
		trailing: regexp.MustCompile(lead + headerTrailing),
	}
}

func (h headerPattern) match(line string) bool {
	if h.whole.MatchString(line) {
		return true
	}
	if len(strings.TrimSpace(line)) > maxTrailingHeaderLen {
		return false
	}
	m := h.trailing.FindStringSubmatch(line)
	return m != nil && !trailingValue.MatchString(m[1])
}

// Header patterns are checked in this order; the negative-item set precedes
// accounts so "Accounts with Adverse Information" is not read as accounts.
var sectionHeaders = []struct {
	section  Section
	patterns []headerPattern
}{
	{SectionPersonalInfo, []headerPattern{
		header(`personal\s+(?:information|info|data|profile|details|identification)`),
		header(`consumer\s+(?:information|identification|profile)`),
		header(`identification\s+information`),
		header(`identifying\s+information`),
	}},
	{SectionCreditScores, []headerPattern{
		header(`(?:your\s+)?(?:credit|fico(?:®)?|vantage\s*score(?:®)?)\s+scores?(?:\s+(?:summary|information|details|overview))?`),
		header(`scores?(?:\s+(?:summary|information|overview))?`),
	}},
	{SectionNegativeItems, []headerPattern{
		header(`(?:potentially\s+)?negative\s+(?:items?|information|accounts?)`),
		header(`derogatory\s+(?:items?|information|accounts?|marks?)`),
		header(`(?:accounts\s+with\s+)?adverse\s+(?:items?|accounts?|information)`),
		header(`collections?(?:\s+accounts?)?`),
	}},
	{SectionAccounts, []headerPattern{
		header(`(?:credit\s+|open\s+|closed\s+|all\s+|your\s+|satisfactory\s+|revolving\s+|installment\s+|mortgage\s+)?accounts?(?:\s+(?:information|history|summary|details))?`),
		header(`(?:credit\s+)?trade\s*lines?`),
		header(`credit\s+(?:history|items)`),
	}},
	{SectionInquiries, []headerPattern{
		header(`(?:credit\s+|hard\s+|soft\s+|regular\s+|promotional\s+|account\s+review\s+)?inquir(?:y|ies)(?:\s+(?:history|information|summary))?`),
		header(`requests\s+for\s+your\s+credit\s+(?:history|report)`),
	}},
	{SectionPublicRecords, []headerPattern{
		header(`public\s+records?(?:\s+(?:information|summary))?`),
		header(`court\s+records?`),
	}},
}

// matchHeader reports which section, if any, the line opens.
func matchHeader(line string) (Section, bool) {
	for _, h := range sectionHeaders {
		for _, p := range h.patterns {
			if p.match(line) {
				return h.section, true
			}
		}
	}
	return "", false
}

// IdentifySections splits text into sections by scanning for header lines.
// A section runs from its header line up to the next header line. Text before
// the first header is dropped, and a section opened more than once collects the
// text of every occurrence.
func IdentifySections(text string) Sections {
	s := Sections{Found: []Section{}, text: make(map[Section]string)}

	var (
		current Section
		lines   []string
		open    bool
	)
	flush := func() {
		if !open {
			return
		}
		body := strings.Join(lines, "\n")
		if prev, seen := s.text[current]; seen {
			s.text[current] = prev + "\n" + body
			return
		}
		s.Found = append(s.Found, current)
		s.text[current] = body
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if section, ok := matchHeader(line); ok {
			flush()
			current, lines, open = section, nil, true
		}
		if open {
			lines = append(lines, line)
		}
	}
	flush()

	return s
}

// stripHeaders removes section header lines from text.
func stripHeaders(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if _, ok := matchHeader(line); !ok {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
