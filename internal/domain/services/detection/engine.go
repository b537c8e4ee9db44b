package detection

import (
	"strings"
	"unicode/utf8"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// Decision thresholds
const (
	// MLThreshold is the classifier score at or above which a message is flagged
	MLThreshold = 70
	// RuleThreshold is the rule score at or above which a message is flagged
	RuleThreshold = 30
	// BenignScoreCap bounds the final score when the benign override fires
	BenignScoreCap = 25

	shortTextRunes     = 20
	shortTextRuleFloor = 20
)

// Scorer converts text into a [0,100] score
type Scorer interface {
	Score(text string) int
}

// Engine combines the rule and statistical scores with guardrails into a verdict
type Engine struct {
	rules       Scorer
	statistical Scorer
	logger      *logger.Logger
}

// NewEngine creates a decision engine
func NewEngine(rules, statistical Scorer, log *logger.Logger) *Engine {
	return &Engine{
		rules:       rules,
		statistical: statistical,
		logger:      log.WithComponent("decision-engine"),
	}
}

// Decide scores a message. Any string, including empty, yields a valid result.
func (e *Engine) Decide(text string) models.ScoreResult {
	t := strings.TrimSpace(text)

	result := models.ScoreResult{
		RuleScore: e.rules.Score(t),
		MLScore:   e.statistical.Score(t),
	}
	result.FinalScore = clampScore(max(result.RuleScore, result.MLScore))

	lowered := strings.ToLower(t)
	result.Signals = models.Signals{
		Benign:         containsAny(lowered, BenignSignals),
		HighRiskAction: containsAny(lowered, HighRiskActions),
		HasURL:         URLPattern.MatchString(t),
	}

	// Guardrails are evaluated in order and each one short-circuits the threshold rule.
	switch {
	case utf8.RuneCountInString(t) < shortTextRunes &&
		result.RuleScore < shortTextRuleFloor &&
		result.MLScore < MLThreshold:
		result.Guardrail = models.GuardrailShortText

	case result.Signals.Benign && !result.Signals.HighRiskAction:
		result.Guardrail = models.GuardrailBenign
		result.FinalScore = min(result.FinalScore, BenignScoreCap)

	default:
		result.Detected = result.RuleScore >= RuleThreshold || result.MLScore >= MLThreshold
	}

	e.logger.Debug().
		Int("rule_score", result.RuleScore).
		Int("ml_score", result.MLScore).
		Int("final_score", result.FinalScore).
		Bool("detected", result.Detected).
		Str("guardrail", string(result.Guardrail)).
		Msg("message scored")

	return result
}

func clampScore(v int) int {
	return min(max(v, 0), maxScore)
}
