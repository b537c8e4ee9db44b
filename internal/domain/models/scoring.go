package models

// Guardrail names a short-circuit rule of the decision engine
type Guardrail string

const (
	GuardrailNone      Guardrail = ""
	GuardrailShortText Guardrail = "short_low_signal" // Very short message with weak signal
	GuardrailBenign    Guardrail = "benign_override"  // Disclaimer language without a requested action
)

// Signals are the boolean features computed on the lower-cased message
type Signals struct {
	Benign         bool `json:"benign"`
	HighRiskAction bool `json:"high_risk_action"`
	HasURL         bool `json:"has_url"`
}

// ScoreResult is the verdict for one inbound message. Scores are in [0,100].
type ScoreResult struct {
	RuleScore  int       `json:"rule_score"`
	MLScore    int       `json:"ml_score"`
	FinalScore int       `json:"final_score"`
	Detected   bool      `json:"detected"`
	Signals    Signals   `json:"signals"`
	Guardrail  Guardrail `json:"guardrail,omitempty"`
}
