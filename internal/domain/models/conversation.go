package models

import "time"

// Role identifies who produced a message in a conversation
type Role string

const (
	RoleSystem       Role = "system"       // Bookkeeping, never shown to the counterparty
	RoleCounterparty Role = "counterparty" // Suspected fraudster
	RoleAgent        Role = "agent"        // Decoy persona
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleCounterparty, RoleAgent:
		return true
	}
	return false
}

// Message is a single role-tagged turn. It is never mutated after it is appended.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// EventRecord is one line of the append-only conversation journal
type EventRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
}

// NewEventRecord builds the journal record for a message appended to a session
func NewEventRecord(sessionID string, msg Message) EventRecord {
	return EventRecord{
		Timestamp: msg.Timestamp,
		SessionID: sessionID,
		Role:      msg.Role,
		Text:      msg.Text,
	}
}

// StartResult is returned when a new decoy conversation begins
type StartResult struct {
	SessionID string  `json:"session_id"`
	Persona   Persona `json:"persona"`
	Message   string  `json:"message"`
}

// IngestResult is the assembled response for one processed inbound message
type IngestResult struct {
	SessionID    string         `json:"session_id"`
	DetectedScam bool           `json:"detected_scam"`
	RiskScore    int            `json:"risk_score"`
	Persona      Persona        `json:"persona"`
	AgentReply   string         `json:"agent_reply"`
	Extracted    ExtractedIntel `json:"extracted"`
	Conversation []Message      `json:"conversation"`
}
