// Package events provides the decoupled event pipeline: entity mutations
// publish events onto a buffered channel, and a background worker fans each
// event out to registered providers (webhook dispatch, test sinks). The
// triggering request never waits on delivery.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retrolist/games-service/internal/datatypes"
)

// defaultBufferSize is the event channel buffer size used when the
// configured size is not positive.
const defaultBufferSize = 1024

// Event is an ephemeral value constructed by the triggering operation;
// it is fanned out to providers and never persisted.
type Event struct {
	ID        uuid.UUID           // Unique event id (UUID v7, time-ordered)
	Type      datatypes.EventType // e.g. GameCreated
	Owner     string              // Identity that triggered the mutation
	Timestamp int64               // Unix timestamp
	Data      any                 // Snapshot of the created/updated/deleted entity
}

// Publisher is the interface mutation services use to emit events.
type Publisher interface {
	Publish(ctx context.Context, eventType datatypes.EventType, owner string, data any)
}

// provider receives a full Event from the background worker.
type provider interface {
	HandleEvent(ctx context.Context, event Event)
}

// DropRecorder counts events dropped on a full channel. May be nil.
type DropRecorder interface {
	RecordEventDropped(eventType string)
}

// Manager coordinates event fan-out to all registered providers.
type Manager struct {
	eventChan chan Event
	providers []provider
	dropped   DropRecorder
	wg        sync.WaitGroup
}

// NewManager creates a manager and starts its background worker.
func NewManager(bufferSize int) *Manager {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	m := &Manager{
		eventChan: make(chan Event, bufferSize),
		providers: make([]provider, 0),
	}

	m.wg.Add(1)
	go m.startWorker()

	return m
}

// RegisterProvider registers an event provider.
// Must only be called during startup, before any events are published.
func (m *Manager) RegisterProvider(p provider) {
	m.providers = append(m.providers, p)
}

// SetDropRecorder installs a counter for dropped events.
// Must only be called during startup, before any events are published.
func (m *Manager) SetDropRecorder(r DropRecorder) {
	m.dropped = r
}

// Publish constructs an Event and hands it to the background worker without
// blocking. When the buffer is full the event is dropped with a warning;
// delivery is best-effort and must never delay the triggering request.
func (m *Manager) Publish(_ context.Context, eventType datatypes.EventType, owner string, data any) {
	event := Event{
		ID:        uuid.Must(uuid.NewV7()),
		Type:      eventType,
		Owner:     owner,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	select {
	case m.eventChan <- event:
		slog.Debug("Event published to channel", "event_id", event.ID, "event_type", event.Type.String())
	default:
		if m.dropped != nil {
			m.dropped.RecordEventDropped(event.Type.String())
		}

		slog.Warn("Event channel full, event dropped", "event_id", event.ID, "event_type", event.Type.String())
	}
}

// startWorker runs in a dedicated goroutine, reading events from the channel
// and fanning out each event to all registered providers. The loop ends when
// the channel is closed by Shutdown.
func (m *Manager) startWorker() {
	defer m.wg.Done()

	bgCtx := context.Background()

	for event := range m.eventChan {
		// Per-event timeout so one stuck lookup cannot freeze the worker.
		ctx, cancel := context.WithTimeout(bgCtx, 10*time.Second)

		for _, p := range m.providers {
			p.HandleEvent(ctx, event)
		}

		cancel()
	}
}

// Shutdown stops the background worker and waits for the buffer to drain.
func (m *Manager) Shutdown() {
	close(m.eventChan)
	m.wg.Wait()
}
