package session

import (
	"context"
	"errors"

	"github.com/echo-shopbot/server/internal/agent/model"
)

// ErrNotFound signals an absent session. It is a normal outcome: callers are
// expected to create a new session and retry.
var ErrNotFound = errors.New("session not found")

// ProfileUpdate carries optional customer profile fields. Empty fields leave
// the stored value untouched.
type ProfileUpdate struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	LastOrder string `json:"last_order,omitempty"`
}

// Store is the per-conversation state registry. The in-memory implementation
// is the default; a Redis-backed one exists for deployments that share state
// across replicas.
type Store interface {
	// Create generates a fresh unique identifier and registers an empty session.
	Create(ctx context.Context) (string, error)

	// Get returns a snapshot of the session, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Session, error)

	// AppendMessage appends a turn to the session's history and bumps the
	// last-updated timestamp. Returns ErrNotFound when the session is absent.
	AppendMessage(ctx context.Context, id string, role model.Role, content string, metadata map[string]any) (*model.Message, error)

	// History returns the ordered message sequence, or ErrNotFound.
	History(ctx context.Context, id string) ([]model.Message, error)

	// CustomerProfile returns the session's profile snapshot, or ErrNotFound.
	CustomerProfile(ctx context.Context, id string) (*model.CustomerProfile, error)

	// UpdateCustomerProfile overwrites only the non-empty fields of upd.
	// Reports false when the session is absent.
	UpdateCustomerProfile(ctx context.Context, id string, upd ProfileUpdate) (bool, error)

	// Delete removes the session entirely; reports false when it did not exist.
	Delete(ctx context.Context, id string) (bool, error)

	// ListIDs returns the identifiers of all live sessions.
	ListIDs(ctx context.Context) ([]string, error)
}

func applyProfileUpdate(p *model.CustomerProfile, upd ProfileUpdate) {
	if upd.Name != "" {
		p.Name = upd.Name
	}
	if upd.Email != "" {
		p.Email = upd.Email
	}
	if upd.LastOrder != "" {
		p.LastOrder = upd.LastOrder
	}
}
