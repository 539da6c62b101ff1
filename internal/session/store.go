package session

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidID is returned for session ids that are not safe to use as keys and file names.
var ErrInvalidID = errors.New("invalid session id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id may name a session.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Config sets the eviction policy. Zero values disable the corresponding limit.
type Config struct {
	TTL         time.Duration `mapstructure:"ttl"`
	MaxSessions int           `mapstructure:"max-sessions"`
}

type entry[T any] struct {
	value    T
	created  time.Time
	lastSeen time.Time
}

// Info describes a stored session.
type Info struct {
	ID       string
	Created  time.Time
	LastSeen time.Time
}

// Store is a concurrency-safe registry of sessions keyed by id.
type Store[T any] struct {
	mu      sync.Mutex
	items   map[string]*entry[T]
	cfg     Config
	factory func(id string) T
	now     func() time.Time
	logger  *zap.Logger
}

// NewStore creates a store that builds missing sessions with factory.
func NewStore[T any](cfg Config, factory func(id string) T, logger *zap.Logger) *Store[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store[T]{
		items:   make(map[string]*entry[T]),
		cfg:     cfg,
		factory: factory,
		now:     time.Now,
		logger:  logger,
	}
}

// GetOrCreate returns the session for id, creating it when absent. An empty id gets a new random one.
// created reports whether the session was made by this call.
func (s *Store[T]) GetOrCreate(id string) (string, T, bool, error) {
	var zero T
	if id == "" {
		id = uuid.NewString()
	} else if !ValidID(id) {
		return "", zero, false, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.items[id]; ok {
		e.lastSeen = now
		return id, e.value, false, nil
	}

	if s.cfg.MaxSessions > 0 && len(s.items) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}

	e := &entry[T]{value: s.factory(id), created: now, lastSeen: now}
	s.items[id] = e
	return id, e.value, true, nil
}

// Get returns the session for id and marks it as used.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = s.now()
	return e.value, true
}

// Delete removes the session and reports whether it existed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

// Len returns the number of sessions.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Range calls fn for every session in creation order until fn returns false. fn runs without the store lock held.
func (s *Store[T]) Range(fn func(info Info, value T) bool) {
	type item struct {
		info  Info
		value T
	}

	s.mu.Lock()
	items := make([]item, 0, len(s.items))
	for id, e := range s.items {
		items = append(items, item{info: Info{ID: id, Created: e.created, LastSeen: e.lastSeen}, value: e.value})
	}
	s.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].info.Created.Equal(items[j].info.Created) {
			return items[i].info.ID < items[j].info.ID
		}
		return items[i].info.Created.Before(items[j].info.Created)
	})

	for _, it := range items {
		if !fn(it.info, it.value) {
			return
		}
	}
}

// Sweep evicts sessions idle for longer than the TTL at now and returns how many were removed.
func (s *Store[T]) Sweep(now time.Time) int {
	if s.cfg.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.items {
		if now.Sub(e.lastSeen) > s.cfg.TTL {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store[T]) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := s.Sweep(s.now()); removed > 0 {
				s.logger.Info("expired sessions evicted", zap.Int("removed", removed), zap.Int("left", s.Len()))
			}
		}
	}
}

func (s *Store[T]) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.items {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.items, oldestID)
		s.logger.Info("session evicted by capacity", zap.String("session_id", oldestID))
	}
}
