package alert

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// Notifier shows a desktop notification. Delivery is best-effort.
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier sends native notifications through beeep and drops any
// notification that arrives within the cooldown of the previous one.
type DesktopNotifier struct {
	cooldown time.Duration
	send     func(title, body string) error
	now      func() time.Time

	mu      sync.Mutex
	last    time.Time
	sent    int
	dropped int
}

// NewDesktopNotifier creates a notifier with the given cooldown.
func NewDesktopNotifier(cooldown time.Duration) *DesktopNotifier {
	return &DesktopNotifier{
		cooldown: cooldown,
		send: func(title, body string) error {
			return beeep.Notify(title, body, "")
		},
		now: time.Now,
	}
}

// Notify shows the notification unless the cooldown is still running.
// Notifications dropped by the cooldown are not an error.
func (n *DesktopNotifier) Notify(title, body string) error {
	n.mu.Lock()
	now := n.now()
	if !n.last.IsZero() && now.Sub(n.last) < n.cooldown {
		n.dropped++
		n.mu.Unlock()
		return nil
	}
	n.last = now
	n.sent++
	n.mu.Unlock()

	return n.send(title, body)
}

// Stats returns how many notifications were sent and dropped.
func (n *DesktopNotifier) Stats() (sent, dropped int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent, n.dropped
}
