package pattern

import (
	"strings"
	"testing"
)

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*FormatPattern)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(*FormatPattern) {},
		},
		{
			name:       "bad format id",
			mutate:     func(p *FormatPattern) { p.FormatID = "Test-Bureau" },
			wantFields: []string{"format_id"},
		},
		{
			name:       "bad version",
			mutate:     func(p *FormatPattern) { p.Version = "1.0" },
			wantFields: []string{"version"},
		},
		{
			name:       "negative priority",
			mutate:     func(p *FormatPattern) { p.Priority = -1 },
			wantFields: []string{"priority"},
		},
		{
			name:       "negative min signatures",
			mutate:     func(p *FormatPattern) { p.Detection.MinSignatures = -1 },
			wantFields: []string{"detection.min_signatures"},
		},
		{
			name: "indicator weight out of range",
			mutate: func(p *FormatPattern) {
				p.Detection.Signatures[0].Weight = 0
				p.Detection.Signatures[1].Weight = 101
			},
			wantFields: []string{"detection.signatures[0].weight", "detection.signatures[1].weight"},
		},
		{
			name:       "empty strong indicator",
			mutate:     func(p *FormatPattern) { p.Detection.StrongIndicators[0].Pattern = "" },
			wantFields: []string{"detection.strong_indicators[0].pattern"},
		},
		{
			name: "collects every error",
			mutate: func(p *FormatPattern) {
				p.Name = ""
				p.Version = ""
				p.Detection.Signatures = nil
			},
			wantFields: []string{"name", "version", "detection.signatures"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPattern()
			tt.mutate(&p)
			errs := ValidateSchema(&p)

			if len(errs) != len(tt.wantFields) {
				t.Fatalf("ValidateSchema() = %d errors (%v), want %d", len(errs), errs, len(tt.wantFields))
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("error[%d].Field = %q, want %q", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestValidationErrorsString(t *testing.T) {
	var none ValidationErrors
	if none.Error() != "no errors" {
		t.Errorf("empty Error() = %q", none.Error())
	}

	one := ValidationErrors{{Field: "version", Message: "bad", Value: "x"}}
	if got := one.Error(); got != "version: bad (got: x)" {
		t.Errorf("single Error() = %q", got)
	}

	two := ValidationErrors{{Field: "a", Message: "m1"}, {Field: "b", Message: "m2"}}
	got := two.Error()
	if !strings.HasPrefix(got, "2 validation errors") || !strings.Contains(got, "b: m2") {
		t.Errorf("multi Error() = %q", got)
	}
}

func TestIsValidFormatID(t *testing.T) {
	tests := map[string]bool{
		"experian":             true,
		"annual_credit_report": true,
		"bureau2":              true,
		"":                     false,
		"2bureau":              false,
		"Experian":             false,
		"credit-karma":         false,
	}
	for id, want := range tests {
		if got := isValidFormatID(id); got != want {
			t.Errorf("isValidFormatID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestIsValidVersion(t *testing.T) {
	tests := map[string]bool{
		"1.0.0":  true,
		"10.2.3": true,
		"1.0":    false,
		"1.0.x":  false,
		"1..0":   false,
		"v1.0.0": false,
	}
	for v, want := range tests {
		if got := isValidVersion(v); got != want {
			t.Errorf("isValidVersion(%q) = %v, want %v", v, got, want)
		}
	}
}
