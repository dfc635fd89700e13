package pattern

import (
	"fmt"
	"sort"
	"strings"
)

// Detection methods reported by DetectFormat.
const (
	MethodSignatures = "signatures"
	MethodStrong     = "strong_indicator"
	MethodNone       = "none"
)

// Detection is the outcome of DetectFormat.
type Detection struct {
	FormatID string
	Method   string
	// Match is the evaluation of the selected format, nil when FormatID is unknown.
	Match *FormatMatch
}

// FormatMatch represents the evaluation of one format against a document.
type FormatMatch struct {
	FormatID   string
	Pattern    *FormatPattern
	Confidence float64
	Score      float64
	MaxScore   float64
	Indicators []IndicatorMatch

	SignaturesMatched int
	SignaturesTotal   int
	MinSignatures     int
	StrongMatched     int
	TotalMatchCount   int
}

// IndicatorMatch represents a matched indicator.
type IndicatorMatch struct {
	Pattern    string
	Weight     int
	MatchCount int
	Type       string // "signature" or "strong"
	Positions  []int  // Starting positions of matches (for debugging)
}

// Selected reports whether the signature threshold was reached.
func (m *FormatMatch) Selected() bool {
	return m.SignaturesMatched >= m.MinSignatures
}

// String returns a human-readable summary of the match.
func (m *FormatMatch) String() string {
	return fmt.Sprintf("%s: %.1f%% confidence (%d/%d signatures, %d strong)",
		m.FormatID, m.Confidence*100, m.SignaturesMatched, m.SignaturesTotal, m.StrongMatched)
}

// DebugString returns detailed debug information about the match.
func (m *FormatMatch) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Format: %s (%s) priority=%d\n", m.Pattern.Name, m.FormatID, m.Pattern.Priority)
	fmt.Fprintf(&sb, "  Confidence: %.2f (%.1f%%)\n", m.Confidence, m.Confidence*100)
	fmt.Fprintf(&sb, "  Score: %.1f / %.1f (max)\n", m.Score, m.MaxScore)
	fmt.Fprintf(&sb, "  Signatures: %d/%d matched (need %d)\n", m.SignaturesMatched, m.SignaturesTotal, m.MinSignatures)
	fmt.Fprintf(&sb, "  Strong indicators: %d matched\n", m.StrongMatched)
	fmt.Fprintf(&sb, "  Total pattern matches: %d\n", m.TotalMatchCount)

	if len(m.Indicators) > 0 {
		sb.WriteString("  Matched indicators:\n")
		for _, ind := range m.Indicators {
			fmt.Fprintf(&sb, "    [%s] weight=%d matches=%d pattern=%q\n",
				ind.Type, ind.Weight, ind.MatchCount, truncatePattern(ind.Pattern, 50))
		}
	}

	return sb.String()
}

func truncatePattern(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// DetectorOptions configures the format detector behavior.
type DetectorOptions struct {
	// MinConfidence filters ranked matches at or below this threshold (0.0-1.0)
	MinConfidence float64

	// MaxResults limits the number of ranked results returned (0 = unlimited)
	MaxResults int

	// IncludePositions includes match positions in IndicatorMatch (slower)
	IncludePositions bool
}

// DefaultDetectorOptions returns sensible defaults.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{}
}

// FormatDetector detects credit-report formats using registered patterns.
// The registry is read on every call, so reloaded patterns apply immediately.
type FormatDetector struct {
	registry Registry
	options  DetectorOptions
}

// NewFormatDetector creates a new format detector with default options.
func NewFormatDetector(registry Registry) *FormatDetector {
	return &FormatDetector{
		registry: registry,
		options:  DefaultDetectorOptions(),
	}
}

// NewFormatDetectorWithOptions creates a new format detector with custom options.
func NewFormatDetectorWithOptions(registry Registry, options DetectorOptions) *FormatDetector {
	return &FormatDetector{
		registry: registry,
		options:  options,
	}
}

// SetOptions updates the detector options.
func (d *FormatDetector) SetOptions(options DetectorOptions) {
	d.options = options
}

// DetectFormat selects the format of content. Formats are tried in priority
// order and the first one reaching its signature threshold wins. When none
// does, the first format (same order) with a matching strong indicator wins.
// Fallback formats are considered last, by signatures only. Otherwise the
// format is FormatUnknown.
func (d *FormatDetector) DetectFormat(content string) Detection {
	patterns := d.registry.List()
	evaluated := make([]FormatMatch, len(patterns))

	for i, p := range patterns {
		evaluated[i] = d.evaluatePattern(content, p)
		if !p.Detection.Fallback && evaluated[i].Selected() {
			return Detection{FormatID: p.FormatID, Method: MethodSignatures, Match: &evaluated[i]}
		}
	}

	for i := range evaluated {
		if evaluated[i].StrongMatched > 0 {
			return Detection{FormatID: evaluated[i].FormatID, Method: MethodStrong, Match: &evaluated[i]}
		}
	}

	for i, p := range patterns {
		if p.Detection.Fallback && evaluated[i].Selected() {
			return Detection{FormatID: p.FormatID, Method: MethodSignatures, Match: &evaluated[i]}
		}
	}

	return Detection{FormatID: FormatUnknown, Method: MethodNone}
}

// Detect evaluates every format and returns the ones with any evidence, ranked
// by confidence. Ranking is diagnostic; DetectFormat decides the format.
func (d *FormatDetector) Detect(content string) []FormatMatch {
	patterns := d.registry.List()
	if len(patterns) == 0 {
		return nil
	}

	matches := make([]FormatMatch, 0)
	for _, p := range patterns {
		match := d.evaluatePattern(content, p)
		if match.Confidence > d.options.MinConfidence {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Pattern.Priority < matches[j].Pattern.Priority
	})

	if d.options.MaxResults > 0 && len(matches) > d.options.MaxResults {
		matches = matches[:d.options.MaxResults]
	}

	return matches
}

// evaluatePattern evaluates a single pattern against the content.
func (d *FormatDetector) evaluatePattern(content string, pattern *FormatPattern) FormatMatch {
	match := FormatMatch{
		FormatID:        pattern.FormatID,
		Pattern:         pattern,
		Indicators:      make([]IndicatorMatch, 0),
		SignaturesTotal: len(pattern.Detection.Signatures),
		MinSignatures:   pattern.MinSignatures(),
	}

	for _, ind := range pattern.Detection.Signatures {
		match.MaxScore += float64(ind.Weight)
		if im, ok := d.evaluateIndicator(content, ind, "signature"); ok {
			match.Score += float64(ind.Weight)
			match.SignaturesMatched++
			match.TotalMatchCount += im.MatchCount
			match.Indicators = append(match.Indicators, im)
		}
	}

	for _, ind := range pattern.Detection.StrongIndicators {
		if im, ok := d.evaluateIndicator(content, ind, "strong"); ok {
			match.StrongMatched++
			match.TotalMatchCount += im.MatchCount
			match.Indicators = append(match.Indicators, im)
		}
	}

	if match.MaxScore > 0 {
		match.Confidence = match.Score / match.MaxScore
	}

	return match
}

func (d *FormatDetector) evaluateIndicator(content string, ind Indicator, kind string) (IndicatorMatch, bool) {
	if ind.compiled == nil {
		return IndicatorMatch{}, false
	}

	locs := ind.compiled.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return IndicatorMatch{}, false
	}

	im := IndicatorMatch{
		Pattern:    ind.Pattern,
		Weight:     ind.Weight,
		MatchCount: len(locs),
		Type:       kind,
	}
	if d.options.IncludePositions {
		for _, loc := range locs {
			im.Positions = append(im.Positions, loc[0])
		}
	}
	return im, true
}

// DetectWithDebug returns the selected format along with a debug string
// explaining the evaluation of every format.
func (d *FormatDetector) DetectWithDebug(content string) (Detection, string) {
	detection := d.DetectFormat(content)
	matches := d.Detect(content)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Detected format: %s (method: %s)\n", detection.FormatID, detection.Method)
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if len(matches) == 0 {
		sb.WriteString("No format produced any evidence.\n")
	} else {
		for i, match := range matches {
			fmt.Fprintf(&sb, "#%d ", i+1)
			sb.WriteString(match.DebugString())
			sb.WriteString("\n")
		}
	}

	return detection, sb.String()
}

// ExplainMatch returns a detailed explanation of why a specific format matched or didn't match.
func (d *FormatDetector) ExplainMatch(content string, formatID string) string {
	pattern, ok := d.registry.Get(formatID)
	if !ok {
		return fmt.Sprintf("Format %q not found in registry", formatID)
	}

	match := d.evaluatePattern(content, pattern)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Explanation for format: %s (%s)\n", pattern.Name, formatID)
	sb.WriteString(strings.Repeat("-", 50) + "\n\n")

	sb.WriteString("Signatures:\n")
	writeIndicatorLines(&sb, content, pattern.Detection.Signatures)

	if len(pattern.Detection.StrongIndicators) > 0 {
		sb.WriteString("\nStrong Indicators:\n")
		writeIndicatorLines(&sb, content, pattern.Detection.StrongIndicators)
	}

	sb.WriteString("\nSummary:\n")
	fmt.Fprintf(&sb, "  Signatures: %d/%d matched (need %d)\n", match.SignaturesMatched, match.SignaturesTotal, match.MinSignatures)
	fmt.Fprintf(&sb, "  Strong indicators: %d matched\n", match.StrongMatched)
	fmt.Fprintf(&sb, "  Confidence: %.2f (%.1f%%)\n", match.Confidence, match.Confidence*100)

	switch {
	case match.Selected() && pattern.Detection.Fallback:
		sb.WriteString("\n  → Signature threshold reached - fallback format MATCHES only if no other format and no bureau name does\n")
	case match.Selected():
		sb.WriteString("\n  → Signature threshold reached - format MATCHES unless a higher-priority format also does\n")
	case match.StrongMatched > 0:
		sb.WriteString("\n  → Strong indicator present - format matches only if no format reaches its signature threshold\n")
	default:
		sb.WriteString("\n  → Format does NOT match\n")
	}

	return sb.String()
}

func writeIndicatorLines(sb *strings.Builder, content string, indicators []Indicator) {
	for i, ind := range indicators {
		matchCount := 0
		if ind.compiled != nil {
			matchCount = len(ind.compiled.FindAllStringIndex(content, -1))
		}
		status := "✗"
		if matchCount > 0 {
			status = "✓"
		}
		fmt.Fprintf(sb, "  %s [%d] weight=%d matches=%d pattern=%q\n",
			status, i, ind.Weight, matchCount, truncatePattern(ind.Pattern, 40))
	}
}
