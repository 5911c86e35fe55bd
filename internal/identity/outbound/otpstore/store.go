package otpstore

import (
	"sync"
	"time"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/clock"
)

const (
	DefaultTTL         = 10 * time.Minute
	DefaultMaxAttempts = 3
)

type item struct {
	rec   entity.OTPRecord
	timer *time.Timer
	seq   uint64
}

// Memory is the single source of truth for live one-time codes. Codes live in
// process memory only; a restart discards all outstanding codes and users
// simply request a new one.
type Memory struct {
	mu          sync.Mutex
	items       map[string]*item
	seq         uint64
	ttl         time.Duration
	maxAttempts int
	clock       clock.Clocker
	closed      bool
}

type Config struct {
	TTL         time.Duration
	MaxAttempts int
	Clock       clock.Clocker
}

func NewMemory(cfg Config) *Memory {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	return &Memory{
		items:       make(map[string]*item),
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		clock:       cfg.Clock,
	}
}

func (s *Memory) TTL() time.Duration { return s.ttl }

func (s *Memory) MaxAttempts() int { return s.maxAttempts }

// Put overwrites any existing record for identity with a fresh one. The
// previous record's expiry timer is invalidated so a stale timer can never
// delete a newer code.
func (s *Memory) Put(identity, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if old, ok := s.items[identity]; ok && old.timer != nil {
		old.timer.Stop()
	}

	s.seq++
	seq := s.seq
	it := &item{
		rec: entity.OTPRecord{
			Identity: identity,
			Code:     code,
			IssuedAt: s.clock.Now(),
		},
		seq: seq,
	}
	it.timer = time.AfterFunc(s.ttl, func() { s.expire(identity, seq) })
	s.items[identity] = it
}

// Get returns a copy of the current record for identity, if any.
func (s *Memory) Get(identity string) (entity.OTPRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[identity]
	if !ok {
		return entity.OTPRecord{}, false
	}

	return it.rec, true
}

// Remove deletes the record for identity if present.
func (s *Memory) Remove(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(identity)
}

// RecordFailedAttempt increments the failed-attempt counter for identity as a
// single atomic step. When the counter reaches the configured ceiling the
// record is purged. It returns the new counter value and whether a record
// existed.
func (s *Memory) RecordFailedAttempt(identity string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[identity]
	if !ok {
		return 0, false
	}

	it.rec.Attempts++
	if it.rec.Attempts >= s.maxAttempts {
		s.removeLocked(identity)
	}

	return it.rec.Attempts, true
}

// Len reports the number of live records.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// Snapshot returns copies of all live records.
func (s *Memory) Snapshot() []entity.OTPRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.OTPRecord, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.rec)
	}

	return out
}

// Close stops all pending expiry timers and discards live records.
func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for identity := range s.items {
		s.removeLocked(identity)
	}
	s.closed = true

	return nil
}

func (s *Memory) removeLocked(identity string) {
	it, ok := s.items[identity]
	if !ok {
		return
	}

	if it.timer != nil {
		it.timer.Stop()
	}
	delete(s.items, identity)
}

// expire is the timer callback. The sequence guard makes sure a timer armed
// for an older generation of the record never deletes a newer one.
func (s *Memory) expire(identity string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[identity]
	if !ok || it.seq != seq {
		return
	}

	delete(s.items, identity)
}
