// Package creditor resolves noisy creditor labels found on credit reports to canonical
// creditor identities.
package creditor

import (
	"errors"
	"fmt"
	"slices"
)

// Type classifies a creditor by the kind of credit it extends.
type Type string

const (
	TypeCreditCard       Type = "credit_card"
	TypeBank             Type = "bank"
	TypeMortgage         Type = "mortgage"
	TypeAutoLoan         Type = "auto_loan"
	TypeStudentLoan      Type = "student_loan"
	TypePersonalLoan     Type = "personal_loan"
	TypeCollectionAgency Type = "collection_agency"
	TypeUtility          Type = "utility"
	TypeRetail           Type = "retail"
	TypeMedical          Type = "medical"
	TypeOther            Type = "other"
)

// AllTypes lists every creditor type in declaration order.
var AllTypes = []Type{
	TypeCreditCard, TypeBank, TypeMortgage, TypeAutoLoan, TypeStudentLoan, TypePersonalLoan,
	TypeCollectionAgency, TypeUtility, TypeRetail, TypeMedical, TypeOther,
}

// Valid reports whether t is one of the known creditor types.
func (t Type) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// MatchType records which tier of the resolution cascade produced a match.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchAlias   MatchType = "alias"
	MatchFuzzy   MatchType = "fuzzy"
	MatchPartial MatchType = "partial"
)

var (
	// ErrEmptyKey is returned when a creditor key normalizes to the empty string.
	ErrEmptyKey = errors.New("creditor key is empty")

	// ErrInvalidCreditor is returned when an identity fails validation.
	ErrInvalidCreditor = errors.New("invalid creditor")
)

// Identity is a known creditor.
type Identity struct {
	Name           string   `json:"name" yaml:"name"`
	Type           Type     `json:"type" yaml:"type"`
	Aliases        []string `json:"aliases" yaml:"aliases"`
	BaseConfidence float64  `json:"base_confidence" yaml:"confidence"`
	Category       string   `json:"category,omitempty" yaml:"category,omitempty"`
	Website        string   `json:"website,omitempty" yaml:"website,omitempty"`
}

// Validate checks that the identity can be registered.
func (id Identity) Validate() error {
	if id.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCreditor)
	}
	if !id.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q for %s", ErrInvalidCreditor, id.Type, id.Name)
	}
	if id.BaseConfidence < 0 || id.BaseConfidence > 1 {
		return fmt.Errorf("%w: confidence %.2f for %s is outside [0, 1]", ErrInvalidCreditor, id.BaseConfidence, id.Name)
	}
	return nil
}

func (id Identity) clone() Identity {
	out := id
	out.Aliases = append([]string{}, id.Aliases...)
	return out
}

// Match is the outcome of resolving one free-text creditor label.
type Match struct {
	Creditor     Identity  `json:"creditor"`
	Confidence   float64   `json:"confidence"`
	MatchType    MatchType `json:"match_type"`
	OriginalName string    `json:"original_name"`
}

// IsUnmatched reports whether the match is the synthetic no-match result.
func (m Match) IsUnmatched() bool {
	return m.MatchType == MatchExact && m.Confidence == noMatchConfidence &&
		m.Creditor.Type == TypeOther && m.Creditor.Name == m.OriginalName
}
