package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/retrolist/games-service/internal/datatypes"
)

type recordingProvider struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingProvider) HandleEvent(_ context.Context, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
}

func (p *recordingProvider) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Event(nil), p.events...)
}

func TestManager_PublishFansOutToProviders(t *testing.T) {
	m := NewManager(8)

	first := &recordingProvider{}
	second := &recordingProvider{}
	m.RegisterProvider(first)
	m.RegisterProvider(second)

	m.Publish(context.Background(), datatypes.GameCreated, "a@x.com", map[string]string{"title": "Doom"})
	m.Publish(context.Background(), datatypes.GameDeleted, "a@x.com", nil)

	m.Shutdown()

	for _, p := range []*recordingProvider{first, second} {
		got := p.snapshot()
		if len(got) != 2 {
			t.Fatalf("provider saw %d events, want 2", len(got))
		}

		if got[0].Type != datatypes.GameCreated || got[1].Type != datatypes.GameDeleted {
			t.Errorf("event order = %v, %v; want GameCreated then GameDeleted", got[0].Type, got[1].Type)
		}

		if got[0].Owner != "a@x.com" {
			t.Errorf("owner = %q, want a@x.com", got[0].Owner)
		}

		if got[0].ID == got[1].ID {
			t.Error("events must carry distinct ids")
		}
	}
}

func TestManager_PublishDoesNotBlockWhenFull(t *testing.T) {
	// A 1-slot buffer with a slow provider: extra publishes must drop, not block.
	m := NewManager(1)

	release := make(chan struct{})
	m.RegisterProvider(providerFunc(func(context.Context, Event) {
		<-release
	}))

	done := make(chan struct{})

	go func() {
		for range 10 {
			m.Publish(context.Background(), datatypes.GameUpdated, "a@x.com", nil)
		}

		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full channel")
	}

	close(release)
	m.Shutdown()
}

type providerFunc func(ctx context.Context, event Event)

func (f providerFunc) HandleEvent(ctx context.Context, event Event) { f(ctx, event) }
