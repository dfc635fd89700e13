// Package report turns the raw text of a credit report into structured records.
//
// Parsing is best effort: the parser never returns an error. Fields that cannot
// be found are left empty, and a failing section extractor is recorded in
// Metadata.ParsingErrors while the remaining sections are still extracted.
package report

import (
	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/shopspring/decimal"
)

// Format identifies the bureau or vendor that produced a report.
type Format string

const (
	FormatExperian           Format = "experian"
	FormatEquifax            Format = "equifax"
	FormatTransUnion         Format = "transunion"
	FormatAnnualCreditReport Format = "annual_credit_report"
	FormatCreditKarma        Format = "credit_karma"
	FormatGeneric            Format = "generic"
	FormatUnknown            Format = "unknown"
)

// Bureau names as reported on CreditScore.
const (
	BureauExperian   = "Experian"
	BureauEquifax    = "Equifax"
	BureauTransUnion = "TransUnion"
)

// InquiryType classifies a credit inquiry.
type InquiryType string

const (
	InquiryHard    InquiryType = "hard"
	InquirySoft    InquiryType = "soft"
	InquiryUnknown InquiryType = "unknown"
)

// ParsedCreditReport is the result of parsing one document. Every populated
// record carries its own confidence (0-100) and Confidence is derived from them.
type ParsedCreditReport struct {
	Format        Format         `json:"format"`
	Confidence    float64        `json:"confidence"`
	PersonalInfo  PersonalInfo   `json:"personal_info"`
	CreditScores  []CreditScore  `json:"credit_scores"`
	Accounts      []Account      `json:"accounts"`
	NegativeItems []NegativeItem `json:"negative_items"`
	Inquiries     []Inquiry      `json:"inquiries"`
	PublicRecords []PublicRecord `json:"public_records"`
	Metadata      Metadata       `json:"metadata"`
}

// Metadata describes how a report was parsed.
type Metadata struct {
	DetectedFormat   Format    `json:"detected_format"`
	DetectionMethod  string    `json:"detection_method"`
	ProcessingTimeMs float64   `json:"processing_time_ms"`
	SectionsFound    []Section `json:"sections_found"`
	ParsingErrors    []string  `json:"parsing_errors"`
	QualityScore     int       `json:"quality_score"`
}

// PersonalInfo holds consumer identification. SSN is always masked.
type PersonalInfo struct {
	Name        string  `json:"name,omitempty"`
	Address     string  `json:"address,omitempty"`
	SSN         string  `json:"ssn,omitempty"`
	DateOfBirth string  `json:"date_of_birth,omitempty"`
	Confidence  float64 `json:"confidence"`
}

type CreditScore struct {
	Score      int     `json:"score"`
	Bureau     string  `json:"bureau,omitempty"`
	Model      string  `json:"model,omitempty"`
	Date       string  `json:"date,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Account is one tradeline.
type Account struct {
	Creditor       string           `json:"creditor"`
	CreditorMatch  *creditor.Match  `json:"creditor_match,omitempty"`
	AccountNumber  string           `json:"account_number,omitempty"`
	AccountType    string           `json:"account_type,omitempty"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`
	CreditLimit    *decimal.Decimal `json:"credit_limit,omitempty"`
	PaymentHistory string           `json:"payment_history,omitempty"`
	Status         string           `json:"status,omitempty"`
	StatusCode     AccountStatus    `json:"status_code,omitempty"`
	OpenDate       string           `json:"open_date,omitempty"`
	LastActivity   string           `json:"last_activity,omitempty"`
	Confidence     float64          `json:"confidence"`
}

type NegativeItem struct {
	Type          string           `json:"type,omitempty"`
	Creditor      string           `json:"creditor,omitempty"`
	CreditorMatch *creditor.Match  `json:"creditor_match,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Date          string           `json:"date,omitempty"`
	Confidence    float64          `json:"confidence"`
}

type Inquiry struct {
	Creditor      string          `json:"creditor"`
	CreditorMatch *creditor.Match `json:"creditor_match,omitempty"`
	Date          string          `json:"date"`
	Type          InquiryType     `json:"type"`
	Confidence    float64         `json:"confidence"`
}

type PublicRecord struct {
	Type        string           `json:"type"`
	Description string           `json:"description,omitempty"`
	Date        string           `json:"date,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Confidence  float64          `json:"confidence"`
}

func newReport() *ParsedCreditReport {
	return &ParsedCreditReport{
		Format:        FormatUnknown,
		CreditScores:  []CreditScore{},
		Accounts:      []Account{},
		NegativeItems: []NegativeItem{},
		Inquiries:     []Inquiry{},
		PublicRecords: []PublicRecord{},
		Metadata: Metadata{
			DetectedFormat: FormatUnknown,
			SectionsFound:  []Section{},
			ParsingErrors:  []string{},
		},
	}
}
