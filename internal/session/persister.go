package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pawhub/internal/models"
)

// Persister is the durable backing of session stores: one opaque value per key.
type Persister interface {
	// Load returns the session saved under key; found is false when nothing is.
	Load(ctx context.Context, key string) (s models.Session, found bool, err error)
	Save(ctx context.Context, key string, s models.Session) error
	Delete(ctx context.Context, key string) error
}

// Key builds the persisted key of one visitor's session of one kind.
func Key(prefix string, kind models.SessionKind, visitorID string) string {
	k := string(kind) + "-auth-storage:" + visitorID
	if prefix = strings.TrimSuffix(prefix, ":"); prefix != "" {
		return prefix + ":" + k
	}
	return k
}

// persisted is the stored shape: the session under a state envelope with a
// version, so the format can evolve.
type persisted struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type persistedState struct {
	Session *models.Session `json:"session"`
}

const persistedVersion = 1

func encode(s models.Session) ([]byte, error) {
	b, err := json.Marshal(persisted{State: persistedState{Session: &s}, Version: persistedVersion})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return b, nil
}

// decode returns found=false for an envelope without a session.
func decode(b []byte) (models.Session, bool, error) {
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		return models.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	if p.Version != persistedVersion {
		return models.Session{}, false, fmt.Errorf("decode session: unsupported version %d", p.Version)
	}
	if p.State.Session == nil {
		return models.Session{}, false, nil
	}
	return *p.State.Session, true, nil
}
