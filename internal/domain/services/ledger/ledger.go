package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

// ErrJournal wraps failures to persist an event. The in-memory append has already happened.
var ErrJournal = errors.New("journal append failed")

// ErrInvalidRole rejects a message whose role is not one of the known roles. Nothing is appended.
var ErrInvalidRole = errors.New("invalid message role")

// session is one conversation. mu serialises appends so ledger order matches journal order.
type session struct {
	mu       sync.Mutex
	messages []models.Message
}

// Ledger keeps the ordered message log of every session for the process lifetime
type Ledger struct {
	mu       sync.RWMutex
	sessions map[string]*session

	journal Journal
	persona models.Persona
	now     func() time.Time
	logger  *logger.Logger
}

// New creates a ledger that journals every appended message
func New(journal Journal, persona models.Persona, log *logger.Logger) *Ledger {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Ledger{
		sessions: make(map[string]*session),
		journal:  journal,
		persona:  persona,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.WithComponent("ledger"),
	}
}

// StartSession allocates a new session and records the active persona as a system message
func (l *Ledger) StartSession(ctx context.Context) (string, error) {
	id := uuid.NewString()

	l.mu.Lock()
	l.sessions[id] = &session{}
	l.mu.Unlock()

	persona, err := json.Marshal(l.persona)
	if err != nil {
		return "", fmt.Errorf("failed to marshal persona: %w", err)
	}

	if _, err := l.Append(ctx, id, models.RoleSystem, "Persona: "+string(persona)); err != nil {
		return id, err
	}

	l.logger.Debug().Str("session_id", id).Msg("session started")
	return id, nil
}

// Append records a message at the end of a session, creating the session if it is unknown.
// The journal write happens while the session is locked, before Append returns.
func (l *Ledger) Append(ctx context.Context, sessionID string, role models.Role, text string) (models.Message, error) {
	if !role.Valid() {
		return models.Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	s := l.getOrCreate(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.Message{
		Role:      role,
		Text:      text,
		Timestamp: l.now(),
	}
	s.messages = append(s.messages, msg)

	if err := l.journal.Append(ctx, models.NewEventRecord(sessionID, msg)); err != nil {
		return msg, fmt.Errorf("%w: %w", ErrJournal, err)
	}
	return msg, nil
}

// History returns a copy of a session's messages in append order.
// An unknown session yields an empty, non-nil slice.
func (l *Ledger) History(sessionID string) []models.Message {
	l.mu.RLock()
	s, ok := l.sessions[sessionID]
	l.mu.RUnlock()
	if !ok {
		return []models.Message{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Exists reports whether a session has been seen
func (l *Ledger) Exists(sessionID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.sessions[sessionID]
	return ok
}

// SessionCount returns the number of sessions held in memory
func (l *Ledger) SessionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}

// Persona returns the persona recorded at session start
func (l *Ledger) Persona() models.Persona {
	return l.persona
}

func (l *Ledger) getOrCreate(id string) *session {
	l.mu.RLock()
	s, ok := l.sessions[id]
	l.mu.RUnlock()
	if ok {
		return s
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok = l.sessions[id]; ok {
		return s
	}
	s = &session{}
	l.sessions[id] = s
	return s
}
