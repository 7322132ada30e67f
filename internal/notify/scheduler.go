// Package notify carries refresh requests for ignored cells from other
// goroutines to the goroutine that owns the display.
package notify

// Scheduler coalesces refresh requests. Any number of requests made before
// the owner drains C result in a single pending refresh.
type Scheduler struct {
	ch chan struct{}
}

// NewScheduler returns an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{ch: make(chan struct{}, 1)}
}

// Request marks a refresh as pending. It never blocks.
func (s *Scheduler) Request() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C delivers one value per pending refresh.
func (s *Scheduler) C() <-chan struct{} {
	return s.ch
}

// Pending reports whether a refresh is waiting, consuming it if so.
func (s *Scheduler) Pending() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}
