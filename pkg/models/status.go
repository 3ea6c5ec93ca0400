package models

// URL verdicts.
const (
	SafetySafe     = "Safe"
	SafetyPhishing = "Phishing"
	SafetyUnknown  = "Unknown"
)

// URL reputation grades.
const (
	ReputationExcellent = "Excellent"
	ReputationGood      = "Good"
	ReputationPoor      = "Poor"
	ReputationUnknown   = "Unknown"
)

// Email verdicts, ordered from best to worst.
const (
	EmailSafe       = "Safe"
	EmailCaution    = "Caution"
	EmailSuspicious = "Suspicious"
	EmailDangerous  = "Dangerous"
)

// Quick-scan risk labels.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskSafe   = "Safe"
)

// Spam risk levels.
const (
	SpamLow    = "Low"
	SpamMedium = "Medium"
	SpamHigh   = "High"
)

// Page-speed ratings.
const (
	RatingGood             = "Good"
	RatingNeedsImprovement = "Needs Improvement"
	RatingPoor             = "Poor"
)

// Sentinels written into report fields whose lookup produced nothing.
const (
	NotAvailable     = "N/A"
	Unknown          = "Unknown"
	UnableToResolve  = "Unable to resolve"
	UnknownIssuer    = "Unknown issuer"
	UnknownRegistrar = "Unknown registrar"
)

// EmailStatus maps a 0-100 safety score to its verdict.
// It returns:
// - EmailSafe for scores of 80 and above
// - EmailCaution for 60-79
// - EmailSuspicious for 40-59
// - EmailDangerous otherwise
func EmailStatus(score int) string {
	switch {
	case score >= 80:
		return EmailSafe
	case score >= 60:
		return EmailCaution
	case score >= 40:
		return EmailSuspicious
	default:
		return EmailDangerous
	}
}

// RiskLabel maps a quick-scan score to its label.
func RiskLabel(score int) string {
	switch {
	case score < 40:
		return RiskHigh
	case score < 70:
		return RiskMedium
	default:
		return RiskSafe
	}
}
