package report

import (
	"regexp"
	"strings"
)

const publicRecordConfidence = 70

var (
	publicRecordPattern = regexp.MustCompile(`(?i)\b(bankruptcy|judgment|judgement|tax[ \t]+lien)\b[ \t:\-]*([^\n]*)`)
	publicAmountPattern = regexp.MustCompile(`\$[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`)
)

func extractPublicRecords(text string) []PublicRecord {
	var records []PublicRecord
	for _, m := range publicRecordPattern.FindAllStringSubmatch(text, -1) {
		rec := PublicRecord{
			Type:        publicRecordType(m[1]),
			Description: strings.TrimSpace(m[2]),
			Confidence:  publicRecordConfidence,
		}
		if d := datePattern.FindString(rec.Description); d != "" {
			rec.Date = d
		}
		if a := publicAmountPattern.FindStringSubmatch(rec.Description); a != nil {
			rec.Amount, _ = parseMoney(a[1])
		}
		records = append(records, rec)
	}
	return records
}

func publicRecordType(raw string) string {
	switch s := strings.ToLower(raw); {
	case strings.HasPrefix(s, "bankruptcy"):
		return "bankruptcy"
	case strings.HasPrefix(s, "tax"):
		return "tax_lien"
	default:
		return "judgment"
	}
}
