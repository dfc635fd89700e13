package creditor

import (
	"regexp"
	"strings"
)

var (
	nonNameChars  = regexp.MustCompile(`[^\w\s&]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize lowercases a creditor label, strips everything except word characters,
// whitespace and ampersands, and collapses whitespace. Digits are kept.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = nonNameChars.ReplaceAllString(normalized, "")
	normalized = whitespaceRun.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// Similarity returns 1 - editDistance/max(len(a), len(b)), measured in runes.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(maxLen)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// wordOverlap counts input words that fuzzily match some target word and divides by the
// larger word count. Short generic inputs can score high against short targets.
func wordOverlap(input, target string) float64 {
	inputWords := strings.Fields(input)
	targetWords := strings.Fields(target)
	if len(inputWords) == 0 || len(targetWords) == 0 {
		return 0
	}

	matched := 0
	for _, word := range inputWords {
		for _, candidate := range targetWords {
			if Similarity(word, candidate) >= wordMatchThreshold {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(max(len(inputWords), len(targetWords)))
}
