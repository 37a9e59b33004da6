package demo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Clock is the time source of a Player
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock
var RealClock Clock = realClock{}

// Event reports one fired step
type Event struct {
	Pass    int
	Index   int
	Action  string
	Elapsed time.Duration
}

// Player walks a script one step at a time. Steps never overlap: the next
// delay starts once the callback for the previous step has returned.
type Player struct {
	script Script
	clock  Clock
	log    *zap.Logger
}

func NewPlayer(s Script, clock Clock, log *zap.Logger) *Player {
	if clock == nil {
		clock = RealClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{script: s, clock: clock, log: log.Named("demo")}
}

// Run plays the script, calling fn for every step, until it ends or ctx is
// done. It returns ctx.Err() when cancelled.
func (p *Player) Run(ctx context.Context, fn func(Event)) error {
	if err := p.script.Validate(); err != nil {
		return err
	}
	start := p.clock.Now()
	for pass := 0; ; pass++ {
		for i, st := range p.script.Steps {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-p.clock.After(st.Delay):
			}
			ev := Event{Pass: pass, Index: i, Action: st.Action, Elapsed: p.clock.Now().Sub(start)}
			p.log.Debug("Step", zap.Int("pass", pass), zap.String("action", st.Action), zap.Duration("elapsed", ev.Elapsed))
			fn(ev)
		}
		if !p.script.Loop {
			return nil
		}
	}
}

// Play runs the script in a goroutine and streams its events. The channel
// is closed when playback ends or ctx is done.
func (p *Player) Play(ctx context.Context) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		err := p.Run(ctx, func(ev Event) {
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		})
		if err != nil && ctx.Err() == nil {
			p.log.Warn("Playback stopped", zap.Error(err))
		}
	}()
	return ch
}

// ManualClock only moves when Advance is called
type ManualClock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	waiters []waiter
}

type waiter struct {
	at time.Time
	ch chan time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	c := &ManualClock{now: start}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, waiter{at: c.now.Add(d), ch: ch})
	c.cond.Broadcast()
	return ch
}

// Advance moves the clock forward and fires every timer that came due
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if w.at.After(c.now) {
			pending = append(pending, w)
			continue
		}
		w.ch <- c.now
	}
	c.waiters = pending
}

// BlockUntil waits until n timers are pending
func (c *ManualClock) BlockUntil(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters) < n {
		c.cond.Wait()
	}
}
