package session

import (
	"context"
	"time"

	"github.com/chainlens/chainlens/pkg/blockchain"
	"github.com/chainlens/chainlens/pkg/errors"
	"github.com/chainlens/chainlens/pkg/txgraph"
)

// Fetcher retrieves transaction pages. Satisfied by [blockchain.Client].
type Fetcher interface {
	FetchAddress(ctx context.Context, addr string, limit, offset int, refresh bool) (*blockchain.AddressDetails, error)
}

// Service drives exploration sessions: it fetches pages, converts them
// to partial graphs, and merges them into the session's accumulated
// graph.
type Service struct {
	fetcher   Fetcher
	store     Store
	pageLimit int
	ttl       time.Duration
}

// NewService creates a session service. A nil store falls back to an
// in-memory store; a non-positive page limit or TTL falls back to the
// package defaults.
func NewService(fetcher Fetcher, store Store, pageLimit int, ttl time.Duration) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	if pageLimit <= 0 {
		pageLimit = blockchain.DefaultPageLimit
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		fetcher:   fetcher,
		store:     store,
		pageLimit: pageLimit,
		ttl:       ttl,
	}
}

// Create starts a session rooted at rootAddress and loads its first
// transaction page.
func (s *Service) Create(ctx context.Context, rootAddress string) (*Session, error) {
	sess := New(rootAddress, s.ttl)
	if err := s.fetchInto(ctx, sess, rootAddress, 0); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "storing session")
	}
	return sess, nil
}

// Get returns the session with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "loading session")
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

// Expand fetches the first transaction page of another address and
// merges it into the session graph. Expanding an address that was
// already fetched returns the session unchanged.
func (s *Service) Expand(ctx context.Context, id, addr string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, done := sess.Offsets[addr]; done {
		return sess, nil
	}

	if err := s.fetchInto(ctx, sess, addr, 0); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "storing session")
	}
	return sess, nil
}

// LoadMore fetches the next transaction page of an address already in
// the session and merges it into the session graph. An address the
// session has never fetched is rejected before any budget is spent.
func (s *Service) LoadMore(ctx context.Context, id, addr string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	offset, ok := sess.Offsets[addr]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"address %s has not been fetched in this session", addr)
	}

	if err := s.fetchInto(ctx, sess, addr, offset); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "storing session")
	}
	return sess, nil
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "deleting session")
	}
	return nil
}

// fetchInto loads one page for addr and merges it into the session.
func (s *Service) fetchInto(ctx context.Context, sess *Session, addr string, offset int) error {
	details, err := s.fetcher.FetchAddress(ctx, addr, s.pageLimit, offset, false)
	if err != nil {
		return err
	}
	g, err := txgraph.Build(details)
	if err != nil {
		return err
	}

	sess.Graph = *txgraph.Merge(&sess.Graph, g)
	if sess.Offsets == nil {
		sess.Offsets = make(map[string]int)
	}
	sess.Offsets[addr] = offset + s.pageLimit
	sess.UpdatedAt = time.Now()
	return nil
}
