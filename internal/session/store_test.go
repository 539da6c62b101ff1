package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	id string
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(cfg Config) (*Store[*counter], *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(cfg, func(id string) *counter { return &counter{id: id} }, zap.NewNop())
	s.now = clock.Now
	return s, clock
}

func TestGetOrCreate(t *testing.T) {
	s, _ := newTestStore(Config{})

	id, first, created, err := s.GetOrCreate("")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, ValidID(id))
	assert.Equal(t, id, first.id)

	again, second, created, err := s.GetOrCreate(id)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)
	assert.Same(t, first, second)

	_, _, _, err = s.GetOrCreate("../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Equal(t, 1, s.Len())
}

func TestDeleteAndGet(t *testing.T) {
	s, _ := newTestStore(Config{})
	_, _, _, err := s.GetOrCreate("alpha")
	require.NoError(t, err)

	_, ok := s.Get("alpha")
	assert.True(t, ok)
	assert.True(t, s.Delete("alpha"))
	assert.False(t, s.Delete("alpha"))

	_, ok = s.Get("alpha")
	assert.False(t, ok)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	s, clock := newTestStore(Config{TTL: time.Hour})

	for _, id := range []string{"a", "b", "c"} {
		_, _, _, err := s.GetOrCreate(id)
		require.NoError(t, err)
	}

	clock.Advance(45 * time.Minute)
	_, ok := s.Get("b")
	require.True(t, ok)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 2, s.Sweep(clock.Now()))
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get("b")
	assert.True(t, ok)
}

func TestSweepWithoutTTLKeepsEverything(t *testing.T) {
	s, clock := newTestStore(Config{})
	_, _, _, err := s.GetOrCreate("a")
	require.NoError(t, err)

	clock.Advance(1000 * time.Hour)
	assert.Equal(t, 0, s.Sweep(clock.Now()))
}

func TestMaxSessionsEvictsLeastRecentlyUsed(t *testing.T) {
	s, clock := newTestStore(Config{MaxSessions: 2})

	_, _, _, _ = s.GetOrCreate("a")
	clock.Advance(time.Second)
	_, _, _, _ = s.GetOrCreate("b")
	clock.Advance(time.Second)
	s.Get("a")
	clock.Advance(time.Second)
	_, _, _, _ = s.GetOrCreate("c")

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("b")
	assert.False(t, ok, "b was the least recently used session")
	_, ok = s.Get("a")
	assert.True(t, ok)
}

func TestRangeVisitsInCreationOrder(t *testing.T) {
	s, clock := newTestStore(Config{})
	for _, id := range []string{"z", "y", "x"} {
		_, _, _, err := s.GetOrCreate(id)
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	var seen []string
	s.Range(func(info Info, value *counter) bool {
		seen = append(seen, info.ID)
		assert.Equal(t, info.ID, value.id)
		return len(seen) < 2
	})
	assert.Equal(t, []string{"z", "y"}, seen)
}

func TestRunStopsWithContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewStore(Config{TTL: time.Nanosecond}, func(id string) *counter { return &counter{id: id} }, zap.New(core))
	_, _, _, err := s.GetOrCreate("a")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
	assert.GreaterOrEqual(t, logs.FilterMessage("expired sessions evicted").Len(), 1)
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newTestStore(Config{MaxSessions: 50})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				id, _, _, err := s.GetOrCreate("")
				if err != nil {
					t.Errorf("worker %d: %v", i, err)
					return
				}
				if j%2 == 0 {
					s.Delete(id)
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Len(), 50)
}
