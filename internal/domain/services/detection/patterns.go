package detection

import (
	"regexp"
	"strings"
)

// ScamKeywords are phrases commonly found in fraud attempts. Each one present adds to the rule score.
var ScamKeywords = []string{
	"otp",
	"one time password",
	"kyc",
	"account verify",
	"urgent",
	"prize",
	"reward",
	"bank",
	"upi",
	"ifsc",
	"account number",
	"password",
	"pin",
	"click",
	"link",
	"suspend",
	"blocked",
	"lottery",
	"refund",
	"chargeback",
	"crypto",
	"investment",
}

// BenignSignals are disclaimer phrases typical of legitimate notifications
var BenignSignals = []string{
	"no action required",
	"no action is required",
	"if you did not",
	"terms of service",
	"help center",
	"official website",
	"we will never ask",
	"security is our priority",
}

// HighRiskActions are phrases that request a concrete action from the reader
var HighRiskActions = []string{
	"verify",
	"update",
	"confirm",
	"login",
	"sign in",
	"click",
	"pay",
	"payment",
	"refund",
	"transfer",
	"wire",
	"fee",
	"upi",
	"ifsc",
	"account number",
	"password",
	"otp",
	"pin",
}

// verificationWords get an extra bump on top of the keyword pass
var verificationWords = []string{"verify", "update"}

// Structured artifact patterns
var (
	URLPattern     = regexp.MustCompile(`(?i)https?://[^\s]+`)
	UPIPattern     = regexp.MustCompile(`\b[\w.\-]{2,}@[a-zA-Z]{2,}\b`)
	IFSCPattern    = regexp.MustCompile(`\b[A-Z]{4}0[A-Z0-9]{6}\b`)
	AccountPattern = regexp.MustCompile(`\b\d{9,18}\b`)
	EmailPattern   = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)
	PhonePattern   = regexp.MustCompile(`\b\+?\d{10,15}\b`)
)

// urlTrailing is stripped from extracted URLs so sentence punctuation is not captured.
// A trailing ')' is handled separately by trimURL.
const urlTrailing = ".,;:!?"

// containsAny reports whether lowered contains any of the phrases
func containsAny(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// countContained returns how many of the phrases occur in lowered
func countContained(lowered string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			n++
		}
	}
	return n
}

// hasFinancialArtifact reports whether text carries a payment handle, routing code or account number
func hasFinancialArtifact(text string) bool {
	return UPIPattern.MatchString(text) ||
		IFSCPattern.MatchString(text) ||
		AccountPattern.MatchString(text)
}
