package model

import "time"

// Notification is transient operator feedback. At most one is visible
// at a time; a new one replaces the current one immediately.
type Notification struct {
	Message   string
	ItemCount int
	Duration  time.Duration
	ShownAt   time.Time
}

// Remaining reports how much display time is left at now, clipped to
// [0, Duration]. Purely presentational.
func (n *Notification) Remaining(now time.Time) time.Duration {
	left := n.Duration - now.Sub(n.ShownAt)
	if left < 0 {
		return 0
	}
	if left > n.Duration {
		return n.Duration
	}
	return left
}
