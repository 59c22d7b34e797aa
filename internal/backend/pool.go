// Package backend runs folder scans off the UI loop. Each submitted job gets
// its own goroutine; completions, including recovered panics, are published
// on a single events channel that the UI drains one at a time.
package backend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Event conveys the outcome of one background job.
type Event struct {
	Ticket  uint64
	Key     string
	Data    interface{}
	Err     error
	Elapsed time.Duration
}

// Job is the blocking work run off the UI loop.
type Job func(ctx context.Context) (interface{}, error)

// Pool runs each submitted job on its own goroutine and publishes every
// completion on a single events channel, drained by the UI loop.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
	seq    atomic.Uint64

	mu      sync.Mutex
	stopped bool
}

// NewPool creates a pool whose events channel holds up to buffer completions
// before jobs block on delivery.
func NewPool(buffer int) *Pool {
	if buffer < 0 {
		buffer = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, buffer),
	}
}

// Events returns the completion channel. It is closed once Stop has been
// called and every running job has returned.
func (p *Pool) Events() <-chan Event {
	return p.events
}

// Submit starts job and returns its ticket. Jobs are never cancelled; the
// context only reports shutdown. A ticket of zero means the pool is stopped
// and the job was not started.
func (p *Pool) Submit(key string, job Job) uint64 {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return 0
	}
	p.wg.Add(1)
	p.mu.Unlock()

	ticket := p.seq.Add(1)
	go p.run(ticket, key, job)
	return ticket
}

func (p *Pool) run(ticket uint64, key string, job Job) {
	defer p.wg.Done()
	start := time.Now()
	data, err := p.safeRun(key, job)
	evt := Event{Ticket: ticket, Key: key, Data: data, Err: err, Elapsed: time.Since(start)}
	select {
	case <-p.ctx.Done():
	case p.events <- evt:
	}
}

func (p *Pool) safeRun(key string, job Job) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("backend: job %s panicked: %v", key, r)
		}
	}()
	return job(p.ctx)
}

// Stop refuses further jobs. Completions of running jobs that have not been
// delivered yet are dropped; use Wait if a clean drain is required (e.g. in
// tests).
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	go func() {
		p.wg.Wait()
		close(p.events)
	}()
}

// Wait blocks until all running jobs have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}
