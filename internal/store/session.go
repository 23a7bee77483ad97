package store

import (
	"strings"

	"go.uber.org/zap"

	"mission-clinic-server/internal/models"
)

// Session identifies who is acting. It replaces an ambient "current user".
type Session struct {
	ParticipantID string
}

// SessionFor builds a session for an already authenticated participant.
func SessionFor(participantID string) *Session {
	return &Session{ParticipantID: participantID}
}

// LoggedIn reports whether the session points at a participant.
func (sess *Session) LoggedIn() bool {
	return sess != nil && sess.ParticipantID != ""
}

// Login finds the participant by case-insensitive email, creating one when
// none exists. It never fails.
func (s *Store) Login(email, name string) (*Session, models.Participant) {
	s.mu.Lock()
	for _, p := range s.state.Participants {
		if p.HasEmail(email) {
			s.mu.Unlock()
			return SessionFor(p.ID), p
		}
	}

	email = strings.TrimSpace(email)
	if strings.TrimSpace(name) == "" {
		name = email
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}
	p := models.Participant{
		ID:        s.newID(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		CreatedAt: s.now(),
	}
	s.state.Participants = append(s.state.Participants, p)
	s.mu.Unlock()

	s.logger.Info("participant created on login", zap.String("participant_id", p.ID))
	s.enqueue(upsert(models.CollectionParticipants, p.ID, p))
	return SessionFor(p.ID), p
}

// Logout clears the session pointer. No other state changes.
func (s *Store) Logout(sess *Session) {
	if sess != nil {
		sess.ParticipantID = ""
	}
}
