package detection

import (
	"fmt"

	"honeypot-lab/internal/domain/models"
)

// UrgentThreshold is the risk score at or above which the urgent template is used
const UrgentThreshold = 70

// Reply templates
const (
	ClarifyReply = "Hi, could you please clarify what this is about? " +
		"I want to make sure I understand before I proceed."

	UrgentReply = "Okay, I want to resolve this quickly. Please send the exact " +
		"beneficiary name, bank account number, and IFSC. If UPI works, " +
		"share the UPI ID too. Also send the official link I should use."

	CooperativeReply = "Thanks for letting me know. I can proceed, but I need the official " +
		"payment details: beneficiary name, bank account number, IFSC, and " +
		"any UPI ID or link you want me to use."
)

// ReplyPolicy picks the persona's next message from the verdict
type ReplyPolicy struct{}

// NewReplyPolicy creates a reply policy
func NewReplyPolicy() *ReplyPolicy {
	return &ReplyPolicy{}
}

// Reply selects one of the fixed templates. history is accepted but not consulted yet.
func (p *ReplyPolicy) Reply(detected bool, riskScore int, history []models.Message) string {
	if !detected {
		return ClarifyReply
	}
	if riskScore >= UrgentThreshold {
		return UrgentReply
	}
	return CooperativeReply
}

// Greeting is the persona's opening message for a new session
func (p *ReplyPolicy) Greeting(persona models.Persona) string {
	return fmt.Sprintf(
		"Hello, this is %s. I received a message about my account. Can you explain what I need to do?",
		persona.Name,
	)
}
