// Package contact captures messages sent through the public contact form
// and persists them alongside the content document. Submissions that
// arrive faster than a human could plausibly fill the form are rejected.
package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StorageKey is where the message list lives in the key-value store.
const StorageKey = "contact_messages"

// Storage is the durable key-value collaborator, the same contract the
// content store uses.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Message is one captured contact form submission.
type Message struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Company    string    `json:"company,omitempty"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// ErrTooFast is returned when the form was submitted faster than the
// configured minimum fill time.
var ErrTooFast = errors.New("form submitted too quickly")

// ErrIncomplete is returned when a required field is empty.
var ErrIncomplete = errors.New("name, email and message are required")

// Service validates and stores contact messages.
type Service struct {
	mu      sync.Mutex
	storage Storage
	minFill time.Duration
	now     func() time.Time
}

// NewService builds a contact service. minFill of zero disables the
// fill-time check.
func NewService(storage Storage, minFill time.Duration) *Service {
	return &Service{storage: storage, minFill: minFill, now: time.Now}
}

// Submit validates the submission and appends it to the stored list.
// startedAt is when the visitor opened the form, carried through a hidden
// field.
func (s *Service) Submit(m Message, startedAt time.Time) (Message, error) {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Body) == "" {
		return Message{}, ErrIncomplete
	}
	now := s.now()
	if s.minFill > 0 && !startedAt.IsZero() && now.Sub(startedAt) < s.minFill {
		return Message{}, ErrTooFast
	}

	m.ID = uuid.NewString()
	m.ReceivedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, err := s.load()
	if err != nil {
		return Message{}, err
	}
	msgs = append([]Message{m}, msgs...)
	raw, err := json.Marshal(msgs)
	if err != nil {
		return Message{}, fmt.Errorf("failed to serialize messages: %w", err)
	}
	if err := s.storage.Set(StorageKey, raw); err != nil {
		return Message{}, fmt.Errorf("failed to persist messages: %w", err)
	}
	return m, nil
}

// Messages returns all captured messages, newest first.
func (s *Service) Messages() ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Service) load() ([]Message, error) {
	raw, err := s.storage.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("failed to parse stored messages: %w", err)
	}
	return msgs, nil
}
