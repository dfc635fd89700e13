package report

const (
	minQualityLength = 1000
	maxQualityLength = 50000
)

// aggregateConfidence averages personal info, mean score confidence and mean
// account confidence, skipping empty components. It is 0 when all are empty.
func aggregateConfidence(r *ParsedCreditReport) float64 {
	var parts []float64
	if r.PersonalInfo.Confidence > 0 {
		parts = append(parts, r.PersonalInfo.Confidence)
	}
	if len(r.CreditScores) > 0 {
		var sum float64
		for _, s := range r.CreditScores {
			sum += s.Confidence
		}
		parts = append(parts, sum/float64(len(r.CreditScores)))
	}
	if len(r.Accounts) > 0 {
		var sum float64
		for _, a := range r.Accounts {
			sum += a.Confidence
		}
		parts = append(parts, sum/float64(len(r.Accounts)))
	}

	if len(parts) == 0 {
		return 0
	}
	var total float64
	for _, v := range parts {
		total += v
	}
	return total / float64(len(parts))
}

// qualityScore rewards structural completeness independently of extraction
// confidence.
func qualityScore(r *ParsedCreditReport, length int) int {
	score := 0
	if length >= minQualityLength && length <= maxQualityLength {
		score += 20
	}
	if r.PersonalInfo.Confidence > 0 {
		score += 15
	}
	if len(r.CreditScores) > 0 {
		score += 20
	}
	if len(r.Accounts) > 0 {
		score += 25
	}
	if len(r.NegativeItems) > 0 {
		score += 10
	}
	if len(r.Inquiries) > 0 {
		score += 10
	}
	return min(score, 100)
}
