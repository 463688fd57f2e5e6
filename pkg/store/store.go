// Package store provides in-memory storage for server-side calculator
// sessions.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpnkit/rpnkit/pkg/rpn"
	"github.com/rpnkit/rpnkit/pkg/session"
)

// ErrNotFound is returned when a session id is not in the store.
var ErrNotFound = errors.New("session not found")

// Record is a stored calculator session and its bookkeeping.
type Record struct {
	ID         string
	Session    *session.Session
	CreateTime time.Time
	LastUsed   time.Time

	evalCount int64 // accessed atomically
}

// CountEval increments the record's evaluation count and returns it.
func (r *Record) CountEval() int64 {
	return atomic.AddInt64(&r.evalCount, 1)
}

// Evaluations reports how many evaluations the session has served.
func (r *Record) Evaluations() int64 {
	return atomic.LoadInt64(&r.evalCount)
}

// Store is a thread-safe registry of calculator sessions. Sessions idle for
// longer than the TTL are removed by the sweeper.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	limits  rpn.Limits
	ttl     time.Duration
}

// New creates an empty store. Sessions created through it share limits.
// A zero ttl disables expiry.
func New(limits rpn.Limits, ttl time.Duration) *Store {
	return &Store{
		records: make(map[string]*Record),
		limits:  limits,
		ttl:     ttl,
	}
}

// Create registers a new session and returns its record.
func (s *Store) Create() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec := &Record{
		ID:         uuid.NewString(),
		Session:    session.New(s.limits),
		CreateTime: now,
		LastUsed:   now,
	}
	s.records[rec.ID] = rec
	return rec
}

// Get retrieves a session by id and marks it as used.
func (s *Store) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	rec.LastUsed = time.Now()
	return rec, nil
}

// List returns all sessions ordered by creation time.
func (s *Store) List() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreateTime.Equal(result[j].CreateTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreateTime.Before(result[j].CreateTime)
	})
	return result
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// PurgeExpired removes sessions idle past the TTL and reports how many.
func (s *Store) PurgeExpired() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	deadline := time.Now().Add(-s.ttl)
	for id, rec := range s.records {
		if rec.LastUsed.Before(deadline) {
			delete(s.records, id)
			count++
		}
	}
	return count
}

// StartSweeper purges expired sessions every interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.PurgeExpired(); n > 0 {
					logrus.Debugf("purged %d expired session(s)", n)
				}
			}
		}
	}()
}
