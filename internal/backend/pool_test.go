package backend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, p *Pool) Event {
	t.Helper()
	select {
	case evt, ok := <-p.Events():
		if !ok {
			t.Fatalf("expected event, channel closed")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func TestPoolDeliversResults(t *testing.T) {
	p := NewPool(4)
	defer p.Stop()

	ticket := p.Submit("/tmp", func(context.Context) (interface{}, error) {
		return []string{"a"}, nil
	})
	if ticket == 0 {
		t.Fatalf("expected non-zero ticket")
	}
	evt := receive(t, p)
	if evt.Ticket != ticket || evt.Key != "/tmp" {
		t.Fatalf("expected ticket %d for /tmp, got %d for %s", ticket, evt.Ticket, evt.Key)
	}
	if evt.Err != nil {
		t.Fatalf("unexpected error: %v", evt.Err)
	}
	if got := evt.Data.([]string); len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected data %#v", evt.Data)
	}
}

func TestPoolReportsErrors(t *testing.T) {
	p := NewPool(1)
	defer p.Stop()
	boom := errors.New("boom")
	p.Submit("x", func(context.Context) (interface{}, error) { return nil, boom })
	if evt := receive(t, p); !errors.Is(evt.Err, boom) {
		t.Fatalf("expected boom, got %v", evt.Err)
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	p := NewPool(1)
	defer p.Stop()
	p.Submit("bad", func(context.Context) (interface{}, error) { panic("kaput") })
	evt := receive(t, p)
	if evt.Err == nil || !strings.Contains(evt.Err.Error(), "kaput") {
		t.Fatalf("expected panic converted to error, got %v", evt.Err)
	}
}

func TestPoolTicketsAreUnique(t *testing.T) {
	p := NewPool(8)
	defer p.Stop()
	seen := make(map[uint64]bool)
	for i := 0; i < 5; i++ {
		ticket := p.Submit("k", func(context.Context) (interface{}, error) { return nil, nil })
		if seen[ticket] {
			t.Fatalf("duplicate ticket %d", ticket)
		}
		seen[ticket] = true
	}
	for i := 0; i < 5; i++ {
		receive(t, p)
	}
}

func TestPoolStopClosesEventsAndRejectsJobs(t *testing.T) {
	p := NewPool(0)
	release := make(chan struct{})
	p.Submit("slow", func(context.Context) (interface{}, error) {
		<-release
		return nil, nil
	})
	p.Stop()
	if ticket := p.Submit("late", func(context.Context) (interface{}, error) { return nil, nil }); ticket != 0 {
		t.Fatalf("expected zero ticket after stop, got %d", ticket)
	}
	close(release)
	p.Wait()

	select {
	case _, ok := <-p.Events():
		if ok {
			t.Fatalf("expected undelivered completion to be dropped")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected events channel to close")
	}
}
