package detection

import "strings"

// Rule score weights
const (
	keywordWeight      = 10
	urlWeight          = 15
	financialWeight    = 20
	verificationWeight = 10
	benignPenalty      = 15
	maxScore           = 100
)

// RuleScorer scores text with an additive bag-of-signals heuristic
type RuleScorer struct{}

// NewRuleScorer creates a rule scorer
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Score returns a value in [0,100]. Signals are summed, so their order never matters.
func (s *RuleScorer) Score(text string) int {
	lowered := strings.ToLower(text)
	score := keywordWeight * countContained(lowered, ScamKeywords)

	if URLPattern.MatchString(text) {
		score += urlWeight
	}

	if hasFinancialArtifact(text) {
		score += financialWeight
	}

	// Stacks with keyword hits that contain the same word, e.g. "account verify".
	if containsAny(lowered, verificationWords) {
		score += verificationWeight
	}

	if containsAny(lowered, BenignSignals) {
		score = max(0, score-benignPenalty)
	}

	return min(score, maxScore)
}
