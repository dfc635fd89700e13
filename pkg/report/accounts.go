package report

import (
	"regexp"
	"strings"
)

const (
	accountBaseConfidence = 50
	accountNumberWeight   = 15
	accountBalanceWeight  = 15
	accountStatusWeight   = 10
	accountLimitWeight    = 10
)

var (
	creditorLabelLine = regexp.MustCompile(`(?im)^[ \t]*(?:creditor|company|lender|furnisher|subscriber)(?:[ \t]+name)?[ \t]*:`)
	accountIndexLine  = regexp.MustCompile(`(?im)^[ \t]*account[ \t]+#?\d{1,3}[ \t]*(?:[:.)\-][^\n]*)?$`)

	creditorField = firstOf(
		captures(
			`(?im)^[ \t]*(?:creditor|company|lender|furnisher|subscriber)(?:[ \t]+name)?[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`,
			`(?im)^[ \t]*account[ \t]+#?\d{1,3}[ \t]*[:.)\-][ \t]*([A-Za-z][^\n]*?)[ \t]*$`,
		),
		headingCreditor,
	)

	accountNumberField = captures(
		`(?i)\baccount[ \t]*(?:number|no\.?|#)[ \t]*[:\-]?[ \t]*([X*\d][X*\d\-]{2,})`,
		`(?i)\bacct\.?[ \t]*(?:number|no\.?|#)?[ \t]*[:\-]?[ \t]*([X*\d][X*\d\-]{2,})`,
		`(?i)((?:x|\*){3,}[\- ]?\d{2,6})\b`,
	)

	balanceField = captures(
		`(?im)^[ \t]*(?:current[ \t]+)?balance[ \t]*[:\-]?[ \t]*\$?[ \t]*(-?\d[\d,]*(?:\.\d{1,2})?)`,
		`(?i)\b(?:balance(?:[ \t]+owed)?|amount[ \t]+owed)\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(-?\d[\d,]*(?:\.\d{1,2})?)`,
	)

	creditLimitField = captures(
		`(?i)\b(?:credit[ \t]+limit|credit[ \t]+line|limit)\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`,
		`(?i)\bhigh[ \t]+(?:credit|balance)\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`,
		`(?i)\boriginal[ \t]+(?:loan[ \t]+)?amount\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`,
	)

	statusField = captures(
		`(?im)^[ \t]*(?:account[ \t]+)?status[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`,
		`(?im)^[ \t]*(?:payment[ \t]+status|pay[ \t]+status|condition)[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`,
		`(?i)\b(pays?[ \t]+as[ \t]+agreed|never[ \t]+late|charged?[ \t\-]*off|in[ \t]+collections?|paid[ \t]+in[ \t]+full|\d{2,3}[ \t]+days?[ \t]+(?:late|past[ \t]+due))\b`,
	)

	accountTypeWord  = regexp.MustCompile(`(?i)\b(revolving|installment|mortgage)\b`)
	accountTypeField = firstOf(
		captures(`(?im)^[ \t]*(?:account[ \t]+type|type[ \t]+of[ \t]+account|loan[ \t]+type|type)[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`),
		bareAccountType,
	)

	openDateField = captures(
		`(?i)\b(?:date[ \t]+opened|opened|open[ \t]+date|date[ \t]+open)\b[ \t]*[:\-]?[ \t]*(\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}/\d{4})`,
	)

	lastActivityField = captures(
		`(?i)\b(?:date[ \t]+of[ \t]+last[ \t]+activity|last[ \t]+activity(?:[ \t]+date)?|last[ \t]+reported|date[ \t]+reported|last[ \t]+payment(?:[ \t]+date)?)\b[ \t]*[:\-]?[ \t]*(\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}/\d{4})`,
	)

	paymentHistoryField = captures(
		`(?im)^[ \t]*(?:payment[ \t]+history|\d{1,2}[ \t\-]*(?:month|year)[ \t]+(?:payment[ \t]+)?history)[ \t]*[:\-][ \t]*([^\n]+?)[ \t]*$`,
	)
)

// bareAccountType finds an unlabelled account-type word on a line that does
// not name the creditor, so "CHASE MORTGAGE" is not read as a mortgage.
func bareAccountType(block string) (string, bool) {
	heading, hasHeading := headingCreditor(block)
	for _, line := range strings.Split(block, "\n") {
		if creditorLabelLine.MatchString(line) || accountIndexLine.MatchString(line) ||
			hasHeading && strings.TrimSpace(line) == heading {
			continue
		}
		if m := accountTypeWord.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// splitAccountBlocks applies the block splitters in order, each re-splitting
// the output of the previous one.
func splitAccountBlocks(text string) []string {
	blocks := headingParagraphs(stripHeaders(text))
	blocks = splitBefore(blocks, accountIndexLine)
	blocks = splitBefore(blocks, creditorLabelLine)
	return blocks
}

// headingParagraphs splits on blank lines, starting a new block only where the
// paragraph opens with an upper-case heading, an "Account N" line or a
// creditor label. Other paragraphs continue the previous block.
func headingParagraphs(text string) []string {
	var blocks []string
	for _, p := range paragraphs(text) {
		first := firstLine(p)
		opens := upperHeading.MatchString(first) && hasUpper.MatchString(first) ||
			accountIndexLine.MatchString(first) ||
			creditorLabelLine.MatchString(first)
		if opens || len(blocks) == 0 {
			blocks = append(blocks, p)
			continue
		}
		blocks[len(blocks)-1] += "\n\n" + p
	}
	return blocks
}

// parseAccount extracts one account from a block. A block without a creditor
// yields no account.
func (p *Parser) parseAccount(block string) (Account, bool) {
	name, ok := creditorField(block)
	if !ok {
		return Account{}, false
	}

	acct := Account{
		Creditor:      name,
		CreditorMatch: p.resolve(name),
		Confidence:    accountBaseConfidence,
	}

	if v, ok := accountNumberField(block); ok {
		acct.AccountNumber = strings.TrimRight(v, "-")
		acct.Confidence += accountNumberWeight
	}
	if d, ok := moneyField(balanceField, block); ok {
		acct.Balance = d
		acct.Confidence += accountBalanceWeight
	}
	if v, ok := statusField(block); ok {
		acct.Status = v
		acct.StatusCode = NormalizeStatus(v)
		acct.Confidence += accountStatusWeight
	}
	if d, ok := moneyField(creditLimitField, block); ok {
		acct.CreditLimit = d
		acct.Confidence += accountLimitWeight
	}

	if v, ok := accountTypeField(block); ok {
		acct.AccountType = v
	}
	if v, ok := openDateField(block); ok {
		acct.OpenDate = v
	}
	if v, ok := lastActivityField(block); ok {
		acct.LastActivity = v
	}
	if v, ok := paymentHistoryField(block); ok {
		acct.PaymentHistory = v
	}

	return acct, true
}
