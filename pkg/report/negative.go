package report

import (
	"regexp"
	"strings"
)

const negativeConfidence = 70

var (
	negativeTypeField = captures(
		`(?im)^[ \t]*(?:type|item[ \t]+type|negative[ \t]+item|remarks?|comment)[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`,
		`(?i)\b(charged?[ \t\-]*off|collections?|late[ \t]+payments?|repossession|foreclosure|settle(?:d|ment)|bankruptcy|judgment|judgement|tax[ \t]+lien|\d{2,3}[ \t]+days?[ \t]+late)\b`,
	)

	negativeCreditorField = firstOf(
		captures(
			`(?im)^[ \t]*(?:creditor|company|lender|furnisher|original[ \t]+creditor|collection[ \t]+agency|agency)(?:[ \t]+name)?[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`,
		),
		headingCreditor,
	)

	negativeAmountField = captures(
		`(?i)\b(?:amount|balance|past[ \t]+due(?:[ \t]+amount)?|original[ \t]+amount)\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`,
		`\$[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`,
	)

	negativeDateField = captures(
		`(?i)\b(?:date[ \t]+of[ \t]+(?:first[ \t]+)?delinquency|delinquency[ \t]+date|date[ \t]+reported|date[ \t]+opened|date[ \t]+filed|date)\b[ \t]*[:\-]?[ \t]*(\d{1,2}/\d{1,2}/\d{4}|\d{1,2}/\d{4})`,
		`\b(\d{1,2}/\d{1,2}/\d{4})\b`,
	)

	negativeTypes = []struct {
		re  *regexp.Regexp
		typ string
	}{
		{regexp.MustCompile(`(?i)charge[sd]?[ \t\-]*off`), "charge_off"},
		{regexp.MustCompile(`(?i)collection`), "collection"},
		{regexp.MustCompile(`(?i)\d{2,3}[ \t]+days?[ \t]+late|late[ \t]+payment`), "late_payment"},
		{regexp.MustCompile(`(?i)repossess`), "repossession"},
		{regexp.MustCompile(`(?i)foreclos`), "foreclosure"},
		{regexp.MustCompile(`(?i)settle`), "settlement"},
		{regexp.MustCompile(`(?i)bankruptcy`), "bankruptcy"},
		{regexp.MustCompile(`(?i)judge?ment`), "judgment"},
		{regexp.MustCompile(`(?i)tax[ \t]+lien`), "tax_lien"},
	}

	nonWord = regexp.MustCompile(`[^a-z0-9]+`)
)

// parseNegativeItem extracts one negative item from a block. A block needs a
// type or a creditor to count.
func (p *Parser) parseNegativeItem(block string) (NegativeItem, bool) {
	item := NegativeItem{Confidence: negativeConfidence}

	if v, ok := negativeTypeField(block); ok {
		item.Type = normalizeNegativeType(v)
	}
	if name, ok := negativeCreditorField(block); ok {
		item.Creditor = name
		item.CreditorMatch = p.resolve(name)
	}
	if item.Type == "" && item.Creditor == "" {
		return NegativeItem{}, false
	}

	if d, ok := moneyField(negativeAmountField, block); ok {
		item.Amount = d
	}
	if v, ok := negativeDateField(block); ok {
		item.Date = v
	}
	return item, true
}

func normalizeNegativeType(raw string) string {
	for _, t := range negativeTypes {
		if t.re.MatchString(raw) {
			return t.typ
		}
	}
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(raw), "_"), "_")
}
