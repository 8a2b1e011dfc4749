package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/store"

	"github.com/google/uuid"
)

const keyPrefix = "session:"

// Session is the typed per-token state. The whole record is stored as a
// single JSON value, so establish/terminate are one KV operation each
// and never partially observable by a concurrent request.
type Session struct {
	OrganizationID   int64  `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	IsLoggedIn       bool   `json:"is_logged_in"`
}

// Manager stores sessions in the KV under opaque uuid tokens.
type Manager struct {
	kv  store.KV
	ttl time.Duration
}

func NewManager(kv store.KV, ttl time.Duration) *Manager {
	return &Manager{kv: kv, ttl: ttl}
}

// Establish creates a session for the organization and returns its token.
func (m *Manager) Establish(ctx context.Context, org *domain.Organization) (string, error) {
	sess := Session{
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		IsLoggedIn:       true,
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}
	token := uuid.NewString()
	if err := m.kv.Set(ctx, keyPrefix+token, string(raw), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Load returns the session for a token, or ErrUnauthorized when the
// token is unknown or expired.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	raw, err := m.kv.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// Corrupt session state counts as no session.
		return nil, domain.ErrUnauthorized
	}
	return &sess, nil
}

// Terminate removes the session. Removing an absent token is not an
// error: the whole record lives under one key, so the clear is atomic
// and idempotent.
func (m *Manager) Terminate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.kv.Del(ctx, keyPrefix+token); err != nil && !errors.Is(err, store.ErrMiss) {
		return fmt.Errorf("terminate session: %w", err)
	}
	return nil
}
