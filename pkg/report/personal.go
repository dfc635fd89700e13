package report

import (
	"regexp"
	"strings"
)

var (
	nameField = captures(
		`(?im)^[ \t]*(?:consumer[ \t]+|full[ \t]+|legal[ \t]+)?name[ \t]*[:\-][ \t]*([A-Za-z][A-Za-z .,'\-]{1,80}?)[ \t]*$`,
		`(?im)^[ \t]*(?:prepared[ \t]+for|report[ \t]+for)[ \t]*[:\-]?[ \t]*([A-Za-z][A-Za-z .,'\-]{1,80}?)[ \t]*$`,
		`(?im)^[ \t]*consumer[ \t]*[:\-][ \t]*([A-Za-z][A-Za-z .,'\-]{1,80}?)[ \t]*$`,
	)

	addressField = captures(
		`(?im)^[ \t]*(?:current[ \t]+|mailing[ \t]+|residential[ \t]+)?address(?:es)?[ \t]*[:\-][ \t]*([^\n]+?(?:\n[ \t]*[A-Za-z .]+,?[ \t]+[A-Z]{2}[ \t]+\d{5}(?:-\d{4})?)?)[ \t]*$`,
		`(?im)(\d{1,6}[ \t]+[A-Za-z0-9 .'#\-]+?[ \t]+(?:st|street|ave|avenue|rd|road|blvd|boulevard|dr|drive|ln|lane|ct|court|way|pl|place|cir|circle|pkwy|parkway|hwy|highway)\b\.?(?:[ \t]+(?:apt|unit|ste|suite|#)[ \t]*[A-Za-z0-9\-]+)?(?:,?[ \t]*\n?[ \t]*[A-Za-z .]+,[ \t]*[A-Za-z]{2}[ \t]+\d{5}(?:-\d{4})?)?)`,
		`(?m)([A-Za-z][A-Za-z .]+,[ \t]*[A-Z]{2}[ \t]+\d{5}(?:-\d{4})?)`,
	)

	ssnField = captures(
		`(?i)\b(?:ssn|social[ \t]+security(?:[ \t]+(?:number|no\.?|#))?)[ \t]*[:\-#]?[ \t]*((?:x{3}|\*{3}|\d{3})-(?:x{2}|\*{2}|\d{2})-\d{4})\b`,
		`(?i)((?:xxx|\*\*\*)-(?:xx|\*\*)-\d{4})\b`,
		`(?i)\b(?:ssn|social[ \t]+security)[^\n\d]{0,24}(\d{4})\b`,
	)

	dobField = captures(
		`(?i)\b(?:date[ \t]+of[ \t]+birth|dob|birth[ \t]*date)[ \t]*[:\-]?[ \t]*(\d{1,2}/\d{1,2}/\d{2,4})`,
		`(?i)\b(?:date[ \t]+of[ \t]+birth|dob|birth[ \t]*date)[ \t]*[:\-]?[ \t]*(\d{4}-\d{2}-\d{2})`,
		`(?i)\b(?:date[ \t]+of[ \t]+birth|dob|birth[ \t]*date)[ \t]*[:\-]?[ \t]*([A-Za-z]{3,9}\.?[ \t]+\d{1,2},?[ \t]+\d{4})`,
		`(?i)\b(?:year[ \t]+of[ \t]+birth|born)[ \t]*[:\-]?[ \t]*(\d{4})\b`,
	)

	ssnLast4     = regexp.MustCompile(`(\d{4})$`)
	addressBreak = regexp.MustCompile(`[ \t]*\n[ \t]*`)
)

const (
	nameWeight    = 40
	addressWeight = 30
	ssnWeight     = 20
	dobWeight     = 10
)

func extractPersonalInfo(text string) PersonalInfo {
	text = stripHeaders(text)
	var info PersonalInfo

	if v, ok := nameField(text); ok {
		info.Name = v
		info.Confidence += nameWeight
	}
	if v, ok := addressField(text); ok {
		info.Address = addressBreak.ReplaceAllString(v, ", ")
		info.Confidence += addressWeight
	}
	if v, ok := ssnField(text); ok {
		if m := ssnLast4.FindString(v); m != "" {
			info.SSN = maskSSN(m)
			info.Confidence += ssnWeight
		}
	}
	if v, ok := dobField(text); ok {
		info.DateOfBirth = v
		info.Confidence += dobWeight
	}

	info.Confidence = min(info.Confidence, 100)
	return info
}

// maskSSN renders the last four digits in the XXX-XX-NNNN form; a full SSN is
// never stored.
func maskSSN(last4 string) string {
	return "XXX-XX-" + strings.TrimSpace(last4)
}
