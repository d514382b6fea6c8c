package memory

import (
	"time"

	"github.com/yndnr/kvmesh-go/internal/core/domain"
)

// ExpireReason tells which path removed an expired key.
type ExpireReason string

const (
	ExpireLazy   ExpireReason = "lazy"
	ExpireActive ExpireReason = "active"
)

// Store holds string values with optional per-key expiry.
type Store struct {
	values map[string]string
	expiry map[string]time.Time

	activeExpiry bool
	now          func() time.Time
	onExpire     func(reason ExpireReason, n int)
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces time.Now. Tests use it to move time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithActiveExpiry sets whether SweepExpired does any work. Default true.
func WithActiveExpiry(enabled bool) Option {
	return func(s *Store) {
		s.activeExpiry = enabled
	}
}

// WithExpireHook registers a callback invoked after expired keys are removed.
func WithExpireHook(fn func(reason ExpireReason, n int)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		values:       make(map[string]string),
		expiry:       make(map[string]time.Time),
		activeExpiry: true,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the value of key. A key whose expiry instant is at or before
// now is evicted and reported absent. The error is always nil; it is part of
// the signature so the store satisfies service.Repository.
func (s *Store) Get(key string) (string, bool, error) {
	if s.expired(key, s.now()) {
		s.remove(key)
		s.notify(ExpireLazy, 1)
		return "", false, nil
	}

	value, ok := s.values[key]
	return value, ok, nil
}

// Set writes value under key subject to opts.
//
// Existence for NX/XX is judged against the raw map, so a key that expired
// but was not yet evicted still counts as present. A write replaces the whole
// entry: any earlier expiry is dropped unless opts carries a new one. A
// skipped write changes nothing.
func (s *Store) Set(key, value string, opts domain.SetOptions) (domain.SetResult, error) {
	now := s.now()
	_, existed := s.values[key]

	res := domain.SetResult{Existed: existed}
	if !opts.Existence.Allows(existed) {
		return res, nil
	}

	s.values[key] = value
	delete(s.expiry, key)
	if opts.HasExpiry() {
		s.expiry[key] = now.Add(opts.TTL)
	}
	res.Written = true

	return res, nil
}

// SweepExpired removes every key whose expiry instant is strictly before now
// and returns how many were removed. It does nothing while active expiry is
// disabled.
func (s *Store) SweepExpired() int {
	if !s.activeExpiry {
		return 0
	}

	now := s.now()
	var toDelete []string
	for key, exp := range s.expiry {
		if exp.Before(now) {
			toDelete = append(toDelete, key)
		}
	}

	for _, key := range toDelete {
		s.remove(key)
	}

	if len(toDelete) > 0 {
		s.notify(ExpireActive, len(toDelete))
	}
	return len(toDelete)
}

// expiresAt returns the expiry instant recorded for key, if any.
func (s *Store) expiresAt(key string) (time.Time, bool) {
	exp, ok := s.expiry[key]
	return exp, ok
}

// Len returns the number of stored keys, including expired keys that have
// not been evicted yet.
func (s *Store) Len() int {
	return len(s.values)
}

// SetActiveExpiry turns the periodic sweep on or off. Lazy expiry on Get is
// not affected.
func (s *Store) SetActiveExpiry(enabled bool) {
	s.activeExpiry = enabled
}

// ActiveExpiry reports whether SweepExpired is enabled.
func (s *Store) ActiveExpiry() bool {
	return s.activeExpiry
}

func (s *Store) expired(key string, now time.Time) bool {
	exp, ok := s.expiry[key]
	return ok && !now.Before(exp)
}

func (s *Store) remove(key string) {
	delete(s.values, key)
	delete(s.expiry, key)
}

func (s *Store) notify(reason ExpireReason, n int) {
	if s.onExpire != nil {
		s.onExpire(reason, n)
	}
}
