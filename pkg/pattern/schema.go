package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaVersion is the current pattern schema version
const SchemaVersion = "1.0.0"

// ValidationError represents a schema validation error with context
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "no errors"
	}
	if len(errs) == 1 {
		return errs[0].Error()
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(errs), strings.Join(messages, "\n  - "))
}

// ValidateSchema performs comprehensive validation of a FormatPattern.
// It returns descriptive errors for all validation failures.
func ValidateSchema(fp *FormatPattern) ValidationErrors {
	var errs ValidationErrors

	if fp.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "required field is missing",
		})
	}

	if fp.FormatID == "" {
		errs = append(errs, ValidationError{
			Field:   "format_id",
			Message: "required field is missing",
		})
	} else if !isValidFormatID(fp.FormatID) {
		errs = append(errs, ValidationError{
			Field:   "format_id",
			Message: "must be lowercase alphanumeric with underscores, starting with a letter",
			Value:   fp.FormatID,
		})
	} else if fp.FormatID == FormatUnknown {
		errs = append(errs, ValidationError{
			Field:   "format_id",
			Message: "is reserved",
			Value:   fp.FormatID,
		})
	}

	if fp.Version == "" {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "required field is missing",
		})
	} else if !isValidVersion(fp.Version) {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: "must be semantic version (e.g., 1.0.0)",
			Value:   fp.Version,
		})
	}

	if fp.Priority < 0 {
		errs = append(errs, ValidationError{
			Field:   "priority",
			Message: "must be non-negative",
			Value:   fp.Priority,
		})
	}

	errs = append(errs, validateDetection(&fp.Detection)...)

	return errs
}

func validateDetection(d *DetectionConfig) ValidationErrors {
	var errs ValidationErrors

	if len(d.Signatures) == 0 {
		errs = append(errs, ValidationError{
			Field:   "detection.signatures",
			Message: "at least one signature is needed",
		})
	}

	if d.MinSignatures < 0 {
		errs = append(errs, ValidationError{
			Field:   "detection.min_signatures",
			Message: "must be non-negative",
			Value:   d.MinSignatures,
		})
	} else if d.MinSignatures > len(d.Signatures) && len(d.Signatures) > 0 {
		errs = append(errs, ValidationError{
			Field:   "detection.min_signatures",
			Message: "exceeds the number of signatures",
			Value:   d.MinSignatures,
		})
	}

	for i, ind := range d.Signatures {
		field := fmt.Sprintf("detection.signatures[%d]", i)
		errs = append(errs, validateIndicator(field, &ind)...)
	}

	for i, ind := range d.StrongIndicators {
		field := fmt.Sprintf("detection.strong_indicators[%d]", i)
		errs = append(errs, validateIndicator(field, &ind)...)
	}

	return errs
}

func validateIndicator(field string, ind *Indicator) ValidationErrors {
	var errs ValidationErrors

	if ind.Pattern == "" {
		errs = append(errs, ValidationError{
			Field:   field + ".pattern",
			Message: "pattern is required",
		})
	} else if _, err := regexp.Compile(ind.Pattern); err != nil {
		errs = append(errs, ValidationError{
			Field:   field + ".pattern",
			Message: "invalid regular expression",
			Value:   ind.Pattern,
		})
	}

	if ind.Weight < 1 {
		errs = append(errs, ValidationError{
			Field:   field + ".weight",
			Message: "weight must be positive (>= 1)",
			Value:   ind.Weight,
		})
	}
	if ind.Weight > 100 {
		errs = append(errs, ValidationError{
			Field:   field + ".weight",
			Message: "weight must be <= 100",
			Value:   ind.Weight,
		})
	}

	return errs
}

func isValidFormatID(id string) bool {
	if len(id) == 0 {
		return false
	}
	// Must start with lowercase letter
	if id[0] < 'a' || id[0] > 'z' {
		return false
	}
	for _, c := range id[1:] {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}

func isValidVersion(v string) bool {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if len(part) == 0 {
			return false
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
