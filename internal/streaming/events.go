package streaming

import (
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
)

// EventType represents the type of verdict event
type EventType string

const (
	EventTypeScamDetected EventType = "scam_detected"
	EventTypeClean        EventType = "clean"
)

// VerdictEvent is published after every scored inbound message
type VerdictEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`

	RiskScore  int                   `json:"risk_score"`
	RuleScore  int                   `json:"rule_score"`
	MLScore    int                   `json:"ml_score"`
	Guardrail  models.Guardrail      `json:"guardrail,omitempty"`
	Signals    models.Signals        `json:"signals"`
	Extracted  models.ExtractedIntel `json:"extracted"`
	IntelCount int                   `json:"intel_count"`
}

// NewVerdictEvent builds the event for one decision
func NewVerdictEvent(sessionID string, score models.ScoreResult, intel models.ExtractedIntel) *VerdictEvent {
	eventType := EventTypeClean
	if score.Detected {
		eventType = EventTypeScamDetected
	}

	return &VerdictEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionID,
		RiskScore:  score.FinalScore,
		RuleScore:  score.RuleScore,
		MLScore:    score.MLScore,
		Guardrail:  score.Guardrail,
		Signals:    score.Signals,
		Extracted:  intel,
		IntelCount: intel.Count(),
	}
}
