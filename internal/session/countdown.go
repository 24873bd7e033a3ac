package session

import (
	"sync"
	"time"
)

// Countdown is the external periodic driver for a Machine: every interval it
// ticks the remaining time down by one second while Active, and calls
// onExpire once when it reaches zero. It holds while Paused and stops on its
// own once the session is no longer running.
type Countdown struct {
	machine   *Machine
	scheduler Scheduler
	interval  time.Duration
	onTick    func(remaining int)
	onExpire  func()

	mu      sync.Mutex
	task    Task
	running bool
	gen     int
}

// NewCountdown wires the callbacks; onTick runs after every decrement that
// took effect, before onExpire. Either may be nil.
func NewCountdown(machine *Machine, scheduler Scheduler, interval time.Duration, onTick func(remaining int), onExpire func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		machine:   machine,
		scheduler: scheduler,
		interval:  interval,
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start begins ticking; it is a no-op if already running.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.gen++
	c.scheduleLocked(c.gen)
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Countdown) stopLocked() {
	c.running = false
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
}

func (c *Countdown) scheduleLocked(gen int) {
	c.task = c.scheduler.Schedule(c.interval, func() { c.tick(gen) })
}

func (c *Countdown) tick(gen int) {
	c.mu.Lock()
	if !c.running || gen != c.gen {
		c.mu.Unlock()
		return
	}

	remaining, ticked := c.machine.Decrement()
	expired := ticked && remaining == 0
	switch {
	case expired:
		c.stopLocked()
	case ticked, c.machine.State() == StatePaused:
	default:
		c.stopLocked()
	}

	if c.running {
		c.scheduleLocked(gen)
	}
	c.mu.Unlock()

	if ticked && c.onTick != nil {
		c.onTick(remaining)
	}
	if expired && c.onExpire != nil {
		c.onExpire()
	}
}
