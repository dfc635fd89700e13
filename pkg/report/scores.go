package report

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minScore        = 300
	maxScore        = 850
	scoreConfidence = 85
	bureauWindow    = 100
	scoreDateWindow = 50
	modelFICO       = "FICO"
	modelVantage    = "VantageScore"
)

type scorePattern struct {
	re          *regexp.Regexp
	scoreGroup  int
	bureauGroup int // 0 when the pattern carries no bureau
	dateGroup   int // 0 when the pattern carries no date
	model       func(m []string) string
}

var scorePatterns = []scorePattern{
	{
		// FICO Score: 720 (Experian)
		re:          regexp.MustCompile(`(?i)\b(fico|credit)(?:®)?[ \t]+score(?:[ \t]+\d{1,2})?[ \t]*[:\-]?[ \t]*(\d{3})\b(?:[ \t]*\([ \t]*(experian|equifax|trans[ \t]*union)[ \t]*\))?`),
		scoreGroup:  2,
		bureauGroup: 3,
		model: func(m []string) string {
			if strings.EqualFold(m[1], "fico") {
				return modelFICO
			}
			return ""
		},
	},
	{
		// Experian 750 01/15/2024
		re:          regexp.MustCompile(`(?i)\b(experian|equifax|trans[ \t]*union)[ \t]*[:\-]?[ \t]+(\d{3})\b(?:[ \t]+(\d{1,2}/\d{1,2}/\d{4}))?`),
		scoreGroup:  2,
		bureauGroup: 1,
		dateGroup:   3,
	},
	{
		// VantageScore 3.0: 712
		re:         regexp.MustCompile(`(?i)\bvantage[ \t]*score(?:®)?(?:[ \t]*\d\.\d)?[ \t]*[:\-]?[ \t]*(\d{3})\b`),
		scoreGroup: 1,
		model:      func([]string) string { return modelVantage },
	},
}

var (
	bureauPattern = regexp.MustCompile(`(?i)\b(experian|equifax|trans[ \t]*union)\b`)
	datePattern   = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
)

type span struct{ start, end int }

func (s span) overlaps(o span) bool { return s.start < o.end && o.start < s.end }

// extractCreditScores sweeps text with every score pattern. A score already
// claimed by an earlier pattern is not reported twice.
func extractCreditScores(text string) []CreditScore {
	var (
		scores  []CreditScore
		claimed []span
	)

	for _, sp := range scorePatterns {
		for _, loc := range sp.re.FindAllStringSubmatchIndex(text, -1) {
			digits := span{loc[2*sp.scoreGroup], loc[2*sp.scoreGroup+1]}
			if isClaimed(claimed, digits) {
				continue
			}

			value, err := strconv.Atoi(text[digits.start:digits.end])
			if err != nil || value < minScore || value > maxScore {
				continue
			}
			claimed = append(claimed, digits)

			match := span{loc[0], loc[1]}
			score := CreditScore{Score: value, Confidence: scoreConfidence}
			if sp.model != nil {
				score.Model = sp.model(submatches(text, loc))
			}

			if g := groupText(text, loc, sp.bureauGroup); g != "" {
				score.Bureau = canonicalBureau(g)
			} else if b := nearest(text, bureauPattern, match, bureauWindow); b != "" {
				score.Bureau = canonicalBureau(b)
			}

			if g := groupText(text, loc, sp.dateGroup); g != "" {
				score.Date = g
			} else {
				score.Date = nearest(text, datePattern, match, scoreDateWindow)
			}

			scores = append(scores, score)
		}
	}
	return scores
}

func isClaimed(claimed []span, s span) bool {
	for _, c := range claimed {
		if c.overlaps(s) {
			return true
		}
	}
	return false
}

func groupText(text string, loc []int, group int) string {
	if group == 0 || loc[2*group] < 0 {
		return ""
	}
	return text[loc[2*group]:loc[2*group+1]]
}

func submatches(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

// nearest returns the occurrence of re closest to match within window bytes
// on either side.
func nearest(text string, re *regexp.Regexp, match span, window int) string {
	lo := max(0, match.start-window)
	hi := min(len(text), match.end+window)

	best, bestDist := "", -1
	for _, loc := range re.FindAllStringIndex(text[lo:hi], -1) {
		occ := span{lo + loc[0], lo + loc[1]}
		var dist int
		switch {
		case occ.end <= match.start:
			dist = match.start - occ.end
		case occ.start >= match.end:
			dist = occ.start - match.end
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = text[occ.start:occ.end], dist
		}
	}
	return best
}

func canonicalBureau(s string) string {
	switch strings.Join(strings.Fields(strings.ToLower(s)), "") {
	case "experian":
		return BureauExperian
	case "equifax":
		return BureauEquifax
	case "transunion":
		return BureauTransUnion
	}
	return ""
}
