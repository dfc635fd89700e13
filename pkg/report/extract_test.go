package report

import (
	"testing"

	"github.com/coolbeans/creditai/pkg/creditor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstOf(t *testing.T) {
	m := captures(`no-(\d+)`, `(?i)id[:=](\w+)`, `(\w+)`)

	v, ok := m("ID=abc no-12")
	require.True(t, ok)
	assert.Equal(t, "12", v, "first pattern wins even when a later one matches earlier in the text")

	v, ok = m("id:xyz")
	require.True(t, ok)
	assert.Equal(t, "xyz", v)

	_, ok = m("!!!")
	assert.False(t, ok)
}

func TestExtractPersonalInfo(t *testing.T) {
	tests := []struct {
		name string
		text string
		want PersonalInfo
	}{
		{
			name: "labeled fields",
			text: "PERSONAL INFORMATION\nName: Jane Q. Public\nCurrent Address: 9 Elm St, Springfield, IL 62701\nSocial Security Number: 123-45-6789\nDOB: 1980-02-29",
			want: PersonalInfo{Name: "Jane Q. Public", Address: "9 Elm St, Springfield, IL 62701", SSN: "XXX-XX-6789", DateOfBirth: "1980-02-29", Confidence: 100},
		},
		{
			name: "prepared for and street address",
			text: "Prepared For: JOHN SMITH\n42 Oak Avenue Apt 3\nBoston, MA 02108",
			want: PersonalInfo{Name: "JOHN SMITH", Address: "42 Oak Avenue Apt 3, Boston, MA 02108", Confidence: 70},
		},
		{
			name: "masked ssn without label",
			text: "ID on file: ***-**-4321\nYear of Birth: 1975",
			want: PersonalInfo{SSN: "XXX-XX-4321", DateOfBirth: "1975", Confidence: 30},
		},
		{
			name: "last four digits",
			text: "SSN ending in 5555",
			want: PersonalInfo{SSN: "XXX-XX-5555", Confidence: 20},
		},
		{
			name: "nothing",
			text: "PERSONAL INFORMATION\n\n",
			want: PersonalInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractPersonalInfo(tt.text))
		})
	}
}

func TestExtractCreditScores(t *testing.T) {
	t.Run("labeled with bureau", func(t *testing.T) {
		got := extractCreditScores("FICO® Score 8: 712 (TransUnion)")
		require.Len(t, got, 1)
		assert.Equal(t, CreditScore{Score: 712, Bureau: BureauTransUnion, Model: "FICO", Confidence: 85}, got[0])
	})

	t.Run("tabular rows", func(t *testing.T) {
		got := extractCreditScores("Bureau    Score  Date\nExperian  750    01/15/2024\nEquifax   742    01/16/2024\nTrans Union 738  01/17/2024")
		require.Len(t, got, 3)
		assert.Equal(t, BureauExperian, got[0].Bureau)
		assert.Equal(t, 742, got[1].Score)
		assert.Equal(t, "01/16/2024", got[1].Date)
		assert.Equal(t, BureauTransUnion, got[2].Bureau)
	})

	t.Run("vantage score", func(t *testing.T) {
		got := extractCreditScores("VantageScore 3.0: 688")
		require.Len(t, got, 1)
		assert.Equal(t, 688, got[0].Score)
		assert.Equal(t, "VantageScore", got[0].Model)
	})

	t.Run("context inference", func(t *testing.T) {
		got := extractCreditScores("Equifax\nCredit Score: 701 as of 02/01/2024")
		require.Len(t, got, 1)
		assert.Equal(t, BureauEquifax, got[0].Bureau)
		assert.Equal(t, "02/01/2024", got[0].Date)
		assert.Empty(t, got[0].Model)
	})

	t.Run("out of range", func(t *testing.T) {
		assert.Empty(t, extractCreditScores("FICO Score: 299\nCredit Score: 851\nExperian 999"))
		got := extractCreditScores("FICO Score: 300\nFICO Score: 850")
		require.Len(t, got, 2)
	})
}

func TestSplitAccountBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"single block", "ACCOUNTS\nCreditor: Chase\nBalance: $1", 1},
		{"uppercase headings", "CHASE BANK\nBalance: $1\n\nCAPITAL ONE\nBalance: $2", 2},
		{"continuation paragraph", "CHASE BANK\nBalance: $1\n\nopened long ago\nStatus: Current", 1},
		{"account index lines", "Account 1: CHASE\nBalance: $1\nAccount 2: CAPITAL ONE\nBalance: $2", 2},
		{"creditor labels", "Creditor: Chase\nBalance: $1\nCreditor: Capital One\nBalance: $2\nCreditor: Best Buy", 3},
		{"heading stays with first creditor", "CHASE BANK\nCreditor: Chase Bank\nBalance: $1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, splitAccountBlocks(tt.text), tt.want)
		})
	}
}

func TestParseAccount(t *testing.T) {
	p := newTestParser(t)

	acct, ok := p.parseAccount(`CAPITAL ONE BANK
Account #: XXXX-XXXX-9876
Account Type: Revolving
Date Opened: 03/2015
Current Balance: $2,500.50
Credit Limit: $5,000
Payment Status: 30 days late
Last Reported: 11/30/2023
Payment History: OK OK 30 OK`)
	require.True(t, ok)
	assert.Equal(t, "CAPITAL ONE BANK", acct.Creditor)
	assert.Equal(t, creditor.MatchAlias, acct.CreditorMatch.MatchType)
	assert.Equal(t, "XXXX-XXXX-9876", acct.AccountNumber)
	assert.Equal(t, "Revolving", acct.AccountType)
	assert.Equal(t, "03/2015", acct.OpenDate)
	assert.Equal(t, "2500.5", acct.Balance.String())
	assert.Equal(t, "5000", acct.CreditLimit.String())
	assert.Equal(t, "30 days late", acct.Status)
	assert.Equal(t, Status30DaysLate, acct.StatusCode)
	assert.Equal(t, "11/30/2023", acct.LastActivity)
	assert.Equal(t, "OK OK 30 OK", acct.PaymentHistory)
	assert.Equal(t, 100.0, acct.Confidence)

	t.Run("creditor only", func(t *testing.T) {
		acct, ok := p.parseAccount("Lender: Hometown Credit Union")
		require.True(t, ok)
		assert.Equal(t, 50.0, acct.Confidence)
		assert.Nil(t, acct.Balance)
		assert.Empty(t, acct.StatusCode)
	})

	t.Run("no creditor", func(t *testing.T) {
		_, ok := p.parseAccount("Balance: $100\nStatus: Current")
		assert.False(t, ok)
	})

	t.Run("creditor name does not set the account type", func(t *testing.T) {
		for _, block := range []string{
			"CHASE MORTGAGE\nAccount Number: 1234\nBalance: $100",
			"Creditor: Chase Mortgage\nBalance: $100",
			"Account 1: Rocket Mortgage\nBalance: $100",
		} {
			acct, ok := p.parseAccount(block)
			require.True(t, ok, block)
			assert.Empty(t, acct.AccountType, block)
		}
	})

	t.Run("bare account type outside the creditor line", func(t *testing.T) {
		acct, ok := p.parseAccount("Creditor: Chase Mortgage\nInstallment loan, 30 year term\nBalance: $100")
		require.True(t, ok)
		assert.Equal(t, "Installment", acct.AccountType)
	})

	t.Run("report furniture is not a creditor", func(t *testing.T) {
		_, ok := p.parseAccount("ACCOUNT SUMMARY\nTotal: 3")
		assert.False(t, ok)
	})
}

func TestParseNegativeItems(t *testing.T) {
	p := newTestParser(t)
	r := p.ParseText(`NEGATIVE ITEMS
MIDLAND FUNDING
Type: Collection
Amount: $812.00
Date of First Delinquency: 04/12/2016

Charge-off reported 06/2019 balance $1,450

just a note
`)

	require.Len(t, r.NegativeItems, 2)

	first := r.NegativeItems[0]
	assert.Equal(t, "collection", first.Type)
	assert.Equal(t, "MIDLAND FUNDING", first.Creditor)
	assert.Equal(t, "Midland Credit Management", first.CreditorMatch.Creditor.Name)
	assert.Equal(t, "812", first.Amount.String())
	assert.Equal(t, "04/12/2016", first.Date)
	assert.Equal(t, 70.0, first.Confidence)

	second := r.NegativeItems[1]
	assert.Equal(t, "charge_off", second.Type)
	assert.Empty(t, second.Creditor)
	assert.Nil(t, second.CreditorMatch)
	assert.Equal(t, "1450", second.Amount.String())
}

func TestExtractInquiries(t *testing.T) {
	p := newTestParser(t)
	var got []Inquiry
	p.extractInquiries(`INQUIRIES
BEST BUY 12/01/2023 hard
Capital One Bank - 03/15/2024 SOFT
Date: 04/01/2024
AUTO LENDER LLC   05/05/2024`, func(inq Inquiry) { got = append(got, inq) })

	require.Len(t, got, 3)
	assert.Equal(t, Inquiry{Creditor: "BEST BUY", CreditorMatch: got[0].CreditorMatch, Date: "12/01/2023", Type: InquiryHard, Confidence: 75}, got[0])
	assert.Equal(t, "Capital One Bank", got[1].Creditor)
	assert.Equal(t, InquirySoft, got[1].Type)
	assert.Equal(t, "AUTO LENDER LLC", got[2].Creditor)
	assert.Equal(t, InquiryUnknown, got[2].Type)
	assert.True(t, got[2].CreditorMatch.IsUnmatched())
}

func TestExtractPublicRecords(t *testing.T) {
	got := extractPublicRecords(`PUBLIC RECORDS
Bankruptcy Chapter 7 - Filed 03/15/2016 - Discharged
Civil Judgment: Plaintiff ACME, $2,300.00
Tax Lien`)

	require.Len(t, got, 3)
	assert.Equal(t, "bankruptcy", got[0].Type)
	assert.Equal(t, "Chapter 7 - Filed 03/15/2016 - Discharged", got[0].Description)
	assert.Equal(t, "03/15/2016", got[0].Date)
	assert.Equal(t, "judgment", got[1].Type)
	assert.Equal(t, "2300", got[1].Amount.String())
	assert.Equal(t, "tax_lien", got[2].Type)
	assert.Empty(t, got[2].Description)
	assert.Equal(t, 70.0, got[2].Confidence)
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[string]AccountStatus{
		"Pays as agreed":         StatusCurrent,
		"Current":                StatusCurrent,
		"Open":                   StatusCurrent,
		"Never late":             StatusCurrent,
		"30 days late":           Status30DaysLate,
		"Late 60":                Status60DaysLate,
		"90 Days Past Due":       Status90DaysLate,
		"120+ days delinquent":   Status120DaysLate,
		"180 days late":          Status120DaysLate,
		"Charged off":            StatusChargeOff,
		"Charge-Off":             StatusChargeOff,
		"In collections":         StatusCollection,
		"Paid in full":           StatusPaid,
		"Closed":                 StatusClosed,
		"Transferred to another": StatusClosed,
		"":                       StatusUnknown,
		"Frozen":                 StatusUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeStatus(in), in)
	}

	assert.True(t, StatusChargeOff.IsDerogatory())
	assert.False(t, StatusPaid.IsDerogatory())
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"01/15/2024", "1/5/2024", "2024-01-15", "01/2024", "January 15, 2024", "Jan 15, 2024"} {
		_, ok := ParseDate(s)
		assert.True(t, ok, s)
	}
	d, ok := ParseDate("03/2015")
	require.True(t, ok)
	assert.Equal(t, 2015, d.Year())
	assert.Equal(t, 1, d.Day())

	_, ok = ParseDate("soon")
	assert.False(t, ok)
}
