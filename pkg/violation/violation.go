// Package violation reviews a parsed credit report for reporting problems a
// consumer can dispute under the FCRA or the Metro 2 reporting format.
package violation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/coolbeans/creditai/pkg/report"
)

// Type identifies the rule a violation breaks.
type Type string

const (
	TypeObsoleteInfo      Type = "fcra_obsolete_info"
	TypeAccuracy          Type = "fcra_accuracy"
	TypeIncompleteInfo    Type = "fcra_incomplete_info"
	TypeMetro2FormatError Type = "metro2_format_error"
	TypeDuplicateAccount  Type = "duplicate_account"
	TypeInaccurateBalance Type = "inaccurate_balance"
)

// Severity ranks how strong a dispute the violation supports.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	}
	return 0
}

// Legal bases cited on violations.
const (
	BasisObsolete   = "FCRA § 605(a)"
	BasisAccuracy   = "FCRA § 607(b)"
	BasisFurnisher  = "FCRA § 623(a)(1)"
	BasisIncomplete = "FCRA § 623(a)(2)"
	BasisMetro2     = "Metro 2 Format (CRRG)"
)

const defaultDisputeReason = "Inaccurate information"

// Reporting periods after which adverse items become obsolete.
const (
	obsoleteYears           = 7
	obsoleteBankruptcyYears = 10
)

// Violation is one reporting problem found in a parsed report, phrased so it
// can back a dispute letter.
type Violation struct {
	Type            Type     `json:"violation_type"`
	Severity        Severity `json:"severity"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	AffectedAccount string   `json:"affected_account,omitempty"`
	AccountNumber   string   `json:"account_number,omitempty"`
	LegalBasis      string   `json:"legal_basis,omitempty"`
	DisputeReason   string   `json:"dispute_reason"`
}

// Review applies every rule to r as of the given date and returns the
// violations sorted by severity (highest first) then affected account.
// A zero asOf means now.
func Review(r *report.ParsedCreditReport, asOf time.Time) []Violation {
	if r == nil {
		return []Violation{}
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	out := make([]Violation, 0)
	out = append(out, obsoleteItems(r, asOf)...)
	out = append(out, incompleteAccounts(r)...)
	out = append(out, duplicateAccounts(r)...)
	out = append(out, inaccurateBalances(r)...)
	out = append(out, unsupportedDelinquencies(r)...)
	out = append(out, unknownStatuses(r)...)

	sort.SliceStable(out, func(i, j int) bool {
		if a, b := out[i].Severity.rank(), out[j].Severity.rank(); a != b {
			return a > b
		}
		return out[i].AffectedAccount < out[j].AffectedAccount
	})
	return out
}

func obsoleteItems(r *report.ParsedCreditReport, asOf time.Time) []Violation {
	var out []Violation

	check := func(kind, date, affected string) {
		d, ok := report.ParseDate(date)
		if !ok {
			return
		}
		years := obsoleteYears
		if kind == "bankruptcy" {
			years = obsoleteBankruptcyYears
		}
		if !asOf.After(d.AddDate(years, 0, 0)) {
			return
		}
		out = append(out, Violation{
			Type:            TypeObsoleteInfo,
			Severity:        SeverityHigh,
			Title:           "Obsolete " + strings.ReplaceAll(kind, "_", " ") + " still reported",
			Description:     fmt.Sprintf("Item dated %s is older than the %d-year reporting period.", date, years),
			AffectedAccount: affected,
			LegalBasis:      BasisObsolete,
			DisputeReason:   "Obsolete information",
		})
	}

	for _, item := range r.NegativeItems {
		kind := item.Type
		if kind == "" {
			kind = "negative item"
		}
		check(kind, item.Date, item.Creditor)
	}
	for _, rec := range r.PublicRecords {
		check(rec.Type, rec.Date, rec.Description)
	}
	return out
}

func incompleteAccounts(r *report.ParsedCreditReport) []Violation {
	var out []Violation
	for _, acct := range r.Accounts {
		var missing []string
		if acct.OpenDate == "" {
			missing = append(missing, "date opened")
		}
		if acct.AccountType == "" {
			missing = append(missing, "account type")
		}
		if acct.Status == "" {
			missing = append(missing, "status")
		}
		if len(missing) == 0 {
			continue
		}
		out = append(out, Violation{
			Type:            TypeIncompleteInfo,
			Severity:        SeverityLow,
			Title:           "Incomplete account information",
			Description:     "Account is reported without " + strings.Join(missing, ", ") + ".",
			AffectedAccount: acct.Creditor,
			AccountNumber:   acct.AccountNumber,
			LegalBasis:      BasisIncomplete,
			DisputeReason:   "Incomplete information",
		})
	}
	return out
}

func duplicateAccounts(r *report.ParsedCreditReport) []Violation {
	var out []Violation
	seen := make(map[string]bool)
	for _, acct := range r.Accounts {
		if acct.AccountNumber == "" {
			continue
		}
		key := canonicalCreditor(acct.Creditor, acct.CreditorMatch) + "|" + acct.AccountNumber
		if !seen[key] {
			seen[key] = true
			continue
		}
		out = append(out, Violation{
			Type:            TypeDuplicateAccount,
			Severity:        SeverityMedium,
			Title:           "Duplicate account",
			Description:     fmt.Sprintf("Account %s is reported more than once.", acct.AccountNumber),
			AffectedAccount: acct.Creditor,
			AccountNumber:   acct.AccountNumber,
			LegalBasis:      BasisAccuracy,
			DisputeReason:   "Duplicate reporting",
		})
	}
	return out
}

func inaccurateBalances(r *report.ParsedCreditReport) []Violation {
	var out []Violation
	for _, acct := range r.Accounts {
		if acct.Balance == nil {
			continue
		}
		var desc string
		switch {
		case acct.StatusCode == report.StatusPaid && !acct.Balance.IsZero():
			desc = fmt.Sprintf("Account is reported paid with a balance of $%s.", acct.Balance.StringFixed(2))
		case acct.StatusCode == report.StatusClosed && acct.CreditLimit != nil && acct.Balance.GreaterThan(*acct.CreditLimit):
			desc = fmt.Sprintf("Closed account balance $%s exceeds its limit of $%s.", acct.Balance.StringFixed(2), acct.CreditLimit.StringFixed(2))
		default:
			continue
		}
		out = append(out, Violation{
			Type:            TypeInaccurateBalance,
			Severity:        SeverityMedium,
			Title:           "Inaccurate balance",
			Description:     desc,
			AffectedAccount: acct.Creditor,
			AccountNumber:   acct.AccountNumber,
			LegalBasis:      BasisFurnisher,
			DisputeReason:   defaultDisputeReason,
		})
	}
	return out
}

// unsupportedDelinquencies flags late or charged-off accounts with a zero
// balance that no negative item backs up.
func unsupportedDelinquencies(r *report.ParsedCreditReport) []Violation {
	negative := make(map[string]bool)
	for _, item := range r.NegativeItems {
		if item.Creditor != "" {
			negative[canonicalCreditor(item.Creditor, item.CreditorMatch)] = true
		}
	}

	var out []Violation
	for _, acct := range r.Accounts {
		if !acct.StatusCode.IsDerogatory() || acct.StatusCode == report.StatusCollection {
			continue
		}
		if acct.Balance == nil || !acct.Balance.IsZero() {
			continue
		}
		if negative[canonicalCreditor(acct.Creditor, acct.CreditorMatch)] {
			continue
		}
		out = append(out, Violation{
			Type:            TypeAccuracy,
			Severity:        SeverityMedium,
			Title:           "Delinquency reported on a zero balance",
			Description:     fmt.Sprintf("Account is reported %q with a zero balance and no supporting negative item.", acct.Status),
			AffectedAccount: acct.Creditor,
			AccountNumber:   acct.AccountNumber,
			LegalBasis:      BasisAccuracy,
			DisputeReason:   defaultDisputeReason,
		})
	}
	return out
}

func unknownStatuses(r *report.ParsedCreditReport) []Violation {
	var out []Violation
	for _, acct := range r.Accounts {
		if acct.Status == "" || acct.StatusCode != report.StatusUnknown {
			continue
		}
		out = append(out, Violation{
			Type:            TypeMetro2FormatError,
			Severity:        SeverityLow,
			Title:           "Unrecognized account status",
			Description:     fmt.Sprintf("Status %q does not map to a Metro 2 account status.", acct.Status),
			AffectedAccount: acct.Creditor,
			AccountNumber:   acct.AccountNumber,
			LegalBasis:      BasisMetro2,
			DisputeReason:   defaultDisputeReason,
		})
	}
	return out
}

// canonicalCreditor keys a creditor by its resolved name, falling back to the
// normalized label when resolution failed.
func canonicalCreditor(raw string, m *creditor.Match) string {
	if m != nil && !m.IsUnmatched() {
		return m.Creditor.Name
	}
	return creditor.Normalize(raw)
}
