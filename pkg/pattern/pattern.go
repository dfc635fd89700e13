// Package pattern provides a pluggable registry of credit-report format signatures
// and a detector that identifies which bureau or vendor produced a document.
package pattern

import (
	"fmt"
	"regexp"
)

// FormatUnknown is reported when no registered format matches a document.
const FormatUnknown = "unknown"

// defaultMinSignatures is the number of signature hits that selects a format.
const defaultMinSignatures = 2

// FormatPattern defines the signatures that identify one credit-report format.
type FormatPattern struct {
	// Metadata
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	FormatID string `yaml:"format_id" json:"format_id"`
	Vendor   string `yaml:"vendor" json:"vendor"`

	// Priority orders formats during detection; lower values are tried first.
	Priority int `yaml:"priority" json:"priority"`

	Detection DetectionConfig `yaml:"detection" json:"detection"`

	// Compiled patterns (populated after loading)
	compiled *CompiledPattern
}

// DetectionConfig defines how to recognise a document of this format.
type DetectionConfig struct {
	// MinSignatures is how many signatures must match to select the format (default 2).
	MinSignatures int `yaml:"min_signatures,omitempty" json:"min_signatures,omitempty"`

	// Fallback formats are only selected after no format reached its
	// signature threshold and no strong indicator matched.
	Fallback bool `yaml:"fallback,omitempty" json:"fallback,omitempty"`

	// Signatures are bureau mentions, report-number phrasing and vendor boilerplate.
	Signatures []Indicator `yaml:"signatures" json:"signatures"`

	// StrongIndicators select the format on their own when no format reaches
	// MinSignatures, typically the bureau name.
	StrongIndicators []Indicator `yaml:"strong_indicators,omitempty" json:"strong_indicators,omitempty"`
}

// Indicator represents a pattern that indicates a particular format.
type Indicator struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Weight  int    `yaml:"weight" json:"weight"`

	// Compiled regex (populated after loading)
	compiled *regexp.Regexp
}

// CompiledPattern holds all compiled regex patterns for efficient matching.
type CompiledPattern struct {
	Signatures       []*regexp.Regexp
	StrongIndicators []*regexp.Regexp
}

// Compile compiles all regex patterns in the FormatPattern.
// Returns an error if any pattern fails to compile.
func (fp *FormatPattern) Compile() error {
	compiled := &CompiledPattern{}

	for i := range fp.Detection.Signatures {
		ind := &fp.Detection.Signatures[i]
		re, err := regexp.Compile(ind.Pattern)
		if err != nil {
			return fmt.Errorf("compiling signature %d pattern %q: %w", i, ind.Pattern, err)
		}
		ind.compiled = re
		compiled.Signatures = append(compiled.Signatures, re)
	}

	for i := range fp.Detection.StrongIndicators {
		ind := &fp.Detection.StrongIndicators[i]
		re, err := regexp.Compile(ind.Pattern)
		if err != nil {
			return fmt.Errorf("compiling strong indicator %d pattern %q: %w", i, ind.Pattern, err)
		}
		ind.compiled = re
		compiled.StrongIndicators = append(compiled.StrongIndicators, re)
	}

	fp.compiled = compiled
	return nil
}

// IsCompiled returns true if the pattern has been compiled.
func (fp *FormatPattern) IsCompiled() bool {
	return fp.compiled != nil
}

// MinSignatures returns the configured signature threshold or the default of 2.
func (fp *FormatPattern) MinSignatures() int {
	if fp.Detection.MinSignatures > 0 {
		return fp.Detection.MinSignatures
	}
	return defaultMinSignatures
}

// Validate checks that the pattern has all required fields.
func (fp *FormatPattern) Validate() error {
	if errs := ValidateSchema(fp); len(errs) > 0 {
		return errs
	}
	return nil
}
