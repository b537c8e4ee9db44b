package services

import (
	"context"
	"errors"
	"strings"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services/detection"
	"honeypot-lab/internal/domain/services/ledger"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// ErrSessionIDRequired is returned when an inbound message carries no session identifier
var ErrSessionIDRequired = errors.New("session_id is required")

// VerdictPublisher receives every verdict for downstream consumers
type VerdictPublisher interface {
	PublishVerdict(ctx context.Context, event *streaming.VerdictEvent) error
}

// HoneypotDeps holds the collaborators of HoneypotService. IntelStore and Publisher are optional.
type HoneypotDeps struct {
	Engine     *detection.Engine
	Extractor  *detection.Extractor
	Replies    *detection.ReplyPolicy
	Ledger     *ledger.Ledger
	IntelStore IntelStore
	Publisher  VerdictPublisher
	Logger     *logger.Logger
}

// HoneypotService runs the score, extract and reply pipeline for each inbound message
type HoneypotService struct {
	engine    *detection.Engine
	extractor *detection.Extractor
	replies   *detection.ReplyPolicy
	ledger    *ledger.Ledger
	intel     IntelStore
	publisher VerdictPublisher
	logger    *logger.Logger
}

// NewHoneypotService creates the response assembler
func NewHoneypotService(deps HoneypotDeps) *HoneypotService {
	return &HoneypotService{
		engine:    deps.Engine,
		extractor: deps.Extractor,
		replies:   deps.Replies,
		ledger:    deps.Ledger,
		intel:     deps.IntelStore,
		publisher: deps.Publisher,
		logger:    deps.Logger.WithComponent("honeypot"),
	}
}

// Persona returns the decoy identity
func (s *HoneypotService) Persona() models.Persona {
	return s.ledger.Persona()
}

// Start opens a session and records the persona's greeting as the first agent turn
func (s *HoneypotService) Start(ctx context.Context) (*models.StartResult, error) {
	id, err := s.ledger.StartSession(ctx)
	if err := s.tolerateJournal(id, err); err != nil {
		return nil, err
	}

	persona := s.ledger.Persona()
	greeting := s.replies.Greeting(persona)
	_, err = s.ledger.Append(ctx, id, models.RoleAgent, greeting)
	if err := s.tolerateJournal(id, err); err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", id).Msg("decoy session started")

	return &models.StartResult{
		SessionID: id,
		Persona:   persona,
		Message:   greeting,
	}, nil
}

// Ingest processes one counterparty message and returns the assembled response
func (s *HoneypotService) Ingest(ctx context.Context, sessionID, text string) (*models.IngestResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionIDRequired
	}
	log := s.logger.WithSessionID(sessionID)

	_, err := s.ledger.Append(ctx, sessionID, models.RoleCounterparty, text)
	if err := s.tolerateJournal(sessionID, err); err != nil {
		return nil, err
	}

	score := s.engine.Decide(text)
	intel := s.extractor.Extract(text)
	reply := s.replies.Reply(score.Detected, score.FinalScore, s.ledger.History(sessionID))

	_, err = s.ledger.Append(ctx, sessionID, models.RoleAgent, reply)
	if err := s.tolerateJournal(sessionID, err); err != nil {
		return nil, err
	}

	s.recordIntel(ctx, log, sessionID, intel)
	s.publishVerdict(ctx, log, sessionID, score, intel)

	log.Info().
		Bool("detected_scam", score.Detected).
		Int("risk_score", score.FinalScore).
		Int("rule_score", score.RuleScore).
		Int("ml_score", score.MLScore).
		Str("guardrail", string(score.Guardrail)).
		Int("artifacts", intel.Count()).
		Msg("message ingested")

	return &models.IngestResult{
		SessionID:    sessionID,
		DetectedScam: score.Detected,
		RiskScore:    score.FinalScore,
		Persona:      s.ledger.Persona(),
		AgentReply:   reply,
		Extracted:    intel,
		Conversation: s.ledger.History(sessionID),
	}, nil
}

// History returns the ordered conversation of a session; unknown ids yield an empty slice
func (s *HoneypotService) History(sessionID string) []models.Message {
	return s.ledger.History(sessionID)
}

// SessionIntel returns the artifacts collected across all turns of a session.
// Without an intel store the result is empty.
func (s *HoneypotService) SessionIntel(ctx context.Context, sessionID string) (models.ExtractedIntel, error) {
	if s.intel == nil {
		return models.NewExtractedIntel(), nil
	}
	return s.intel.Lookup(ctx, sessionID)
}

// SessionCount returns the number of live sessions
func (s *HoneypotService) SessionCount() int {
	return s.ledger.SessionCount()
}

// tolerateJournal downgrades journal failures to a warning; the ledger already holds the message
func (s *HoneypotService) tolerateJournal(sessionID string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ledger.ErrJournal) {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("event journal write failed")
		return nil
	}
	return err
}

func (s *HoneypotService) recordIntel(ctx context.Context, log *logger.Logger, sessionID string, intel models.ExtractedIntel) {
	if s.intel == nil || intel.Count() == 0 {
		return
	}
	if err := s.intel.Record(ctx, sessionID, intel); err != nil {
		log.Warn().Err(err).Msg("failed to index extracted intel")
	}
}

func (s *HoneypotService) publishVerdict(ctx context.Context, log *logger.Logger, sessionID string, score models.ScoreResult, intel models.ExtractedIntel) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishVerdict(ctx, streaming.NewVerdictEvent(sessionID, score, intel)); err != nil {
		log.Warn().Err(err).Msg("failed to publish verdict")
	}
}
