package ranking

import (
	"strconv"
	"sync"
)

// toggle carries the enabled state shared by every bonus.
type toggle struct {
	mu       sync.RWMutex
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.disabled
}

func (t *toggle) status(name string, points int) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Status{
		Name:    name,
		Enabled: !t.disabled,
		Reason:  t.reason,
		Details: map[string]string{"points": strconv.Itoa(points)},
	}
}
