package service

import (
	"sync"
	"time"

	"pos/pkg/notification/domain/model"
)

// Observer receives the currently visible notification, or nil when
// the display goes empty.
type Observer func(*model.Notification)

type Presenter interface {
	Show(message string, itemCount int, duration time.Duration)
	Dismiss()
	Current() *model.Notification
	Close()
}

// NewPresenter builds a presenter. observer may be nil.
func NewPresenter(observer Observer) Presenter {
	return &presenter{observer: observer}
}

type presenter struct {
	mu       sync.Mutex
	current  *model.Notification
	timer    *time.Timer
	seq      uint64
	closed   bool
	observer Observer
}

// Show replaces any visible notification and restarts the countdown.
// Last writer wins; there is no queue.
func (p *presenter) Show(message string, itemCount int, duration time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	p.stopTimerLocked()
	p.seq++
	seq := p.seq
	p.current = &model.Notification{
		Message:   message,
		ItemCount: itemCount,
		Duration:  duration,
		ShownAt:   time.Now(),
	}
	p.timer = time.AfterFunc(duration, func() { p.expire(seq) })
	current := p.current
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer(current)
	}
}

func (p *presenter) Dismiss() {
	p.mu.Lock()
	if p.closed || p.current == nil {
		p.mu.Unlock()
		return
	}
	p.stopTimerLocked()
	p.current = nil
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer(nil)
	}
}

func (p *presenter) Current() *model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close cancels the pending countdown. The presenter stays silent
// afterwards, so a disposed screen never receives a late expiry.
func (p *presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopTimerLocked()
	p.current = nil
	p.closed = true
}

// expire hides the notification unless a newer one replaced it while
// the timer was in flight.
func (p *presenter) expire(seq uint64) {
	p.mu.Lock()
	if p.closed || p.seq != seq || p.current == nil {
		p.mu.Unlock()
		return
	}
	p.current = nil
	p.timer = nil
	observer := p.observer
	p.mu.Unlock()

	if observer != nil {
		observer(nil)
	}
}

func (p *presenter) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
