package frameloop

import (
	"sync"
	"time"
)

// FramePacer schedules a callback to run before the next repaint. Each call
// registers exactly one invocation.
type FramePacer interface {
	RequestFrame(fn func())
}

// Clock is the time source for elapsed-time computation.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// QueuePacer is a FramePacer for hosts that own their render loop. Callbacks
// are queued until the host calls Flush once per repaint.
type QueuePacer struct {
	mu      sync.Mutex
	pending []func()
}

func (p *QueuePacer) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, fn)
	p.mu.Unlock()
}

// Flush runs the callbacks queued before the call. Callbacks requested while
// flushing run on the next Flush. It returns how many callbacks ran.
func (p *QueuePacer) Flush() int {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (p *QueuePacer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
