package report

import (
	"regexp"
	"strings"
)

// AccountStatus is the normalized payment status of an account.
type AccountStatus string

const (
	StatusCurrent     AccountStatus = "current"
	Status30DaysLate  AccountStatus = "30_days_late"
	Status60DaysLate  AccountStatus = "60_days_late"
	Status90DaysLate  AccountStatus = "90_days_late"
	Status120DaysLate AccountStatus = "120_days_late"
	StatusChargeOff   AccountStatus = "charge_off"
	StatusCollection  AccountStatus = "collection"
	StatusClosed      AccountStatus = "closed"
	StatusPaid        AccountStatus = "paid"
	StatusUnknown     AccountStatus = "unknown"
)

// IsDerogatory reports whether the status is a late, charged-off or collection status.
func (s AccountStatus) IsDerogatory() bool {
	switch s {
	case Status30DaysLate, Status60DaysLate, Status90DaysLate, Status120DaysLate,
		StatusChargeOff, StatusCollection:
		return true
	}
	return false
}

var (
	chargeOffStatus  = regexp.MustCompile(`charge[sd]?[\s\-]*off`)
	lateDaysStatus   = regexp.MustCompile(`\b(30|60|90|120|150|180)\b[\s\-+]*(?:days?|day\s+late)?`)
	lateMarkerStatus = regexp.MustCompile(`late|past\s+due|delinquen`)
	currentStatus    = regexp.MustCompile(`as\s+agreed|never\s+late|\bcurrent\b|good\s+standing|\bok\b`)
	paidStatus       = regexp.MustCompile(`\bpaid\b`)
	closedStatus     = regexp.MustCompile(`\bclosed\b|transferred|refinanced`)
	openStatus       = regexp.MustCompile(`\bopen\b`)
)

// NormalizeStatus maps free-text status wording to an AccountStatus.
// Derogatory wording wins over neutral wording in the same text.
func NormalizeStatus(raw string) AccountStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return StatusUnknown
	}

	switch {
	case chargeOffStatus.MatchString(s):
		return StatusChargeOff
	case strings.Contains(s, "collection"):
		return StatusCollection
	}

	if lateMarkerStatus.MatchString(s) {
		if m := lateDaysStatus.FindStringSubmatch(s); m != nil {
			switch m[1] {
			case "30":
				return Status30DaysLate
			case "60":
				return Status60DaysLate
			case "90":
				return Status90DaysLate
			default:
				return Status120DaysLate
			}
		}
	}

	switch {
	case currentStatus.MatchString(s):
		return StatusCurrent
	case paidStatus.MatchString(s):
		return StatusPaid
	case closedStatus.MatchString(s):
		return StatusClosed
	case openStatus.MatchString(s):
		return StatusCurrent
	}
	return StatusUnknown
}
