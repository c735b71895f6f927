// Package session provides graph exploration sessions.
//
// A session starts from one root address and accumulates a merged
// relationship graph as the caller expands neighboring addresses or
// loads further transaction pages. Two storage backends are provided:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for server deployments
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chainlens/chainlens/pkg/txgraph"
)

// DefaultTTL is how long an idle session is retained.
const DefaultTTL = 24 * time.Hour

// Session is one exploration rooted at a single address.
//
// Offsets tracks, per fetched address, the offset at which the next
// transaction page starts. An address missing from the map has not been
// paged yet.
type Session struct {
	ID          string         `json:"id" bson:"_id"`
	RootAddress string         `json:"rootAddress" bson:"rootAddress"`
	Graph       txgraph.Graph  `json:"graph" bson:"graph"`
	Offsets     map[string]int `json:"offsets" bson:"offsets"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
	ExpiresAt   time.Time      `json:"expiresAt" bson:"expiresAt"`
}

// IsExpired returns true if the session has exceeded its TTL.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// New creates an empty session rooted at the given address.
func New(rootAddress string, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:          uuid.NewString(),
		RootAddress: rootAddress,
		Offsets:     make(map[string]int),
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
