package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/models"
)

type mockLookup struct {
	webhooks []models.Webhook
	err      error

	globalCalls int
	scopedCalls int
	scopedOwner string
}

func (m *mockLookup) ListByEventType(_ context.Context, _ datatypes.EventType) ([]models.Webhook, error) {
	m.globalCalls++

	return m.webhooks, m.err
}

func (m *mockLookup) ListByEventTypeAndOwner(_ context.Context, _ datatypes.EventType, owner string) ([]models.Webhook, error) {
	m.scopedCalls++
	m.scopedOwner = owner

	return m.webhooks, m.err
}

// mockSender records sends and fails for the URLs in failFor.
type mockSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (m *mockSender) Send(_ context.Context, webhook models.Webhook, _ []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, webhook.RecipientURL)

	if m.failFor[webhook.RecipientURL] {
		return errors.New("connection refused")
	}

	return nil
}

func testEvent(t *testing.T) Event {
	t.Helper()

	return Event{
		ID:        uuid.Must(uuid.NewV7()),
		Type:      datatypes.GameCreated,
		Owner:     "a@x.com",
		Timestamp: time.Now().Unix(),
		Data:      map[string]string{"resource_id": "n64/goldeneye-007"},
	}
}

func registration(owner, url string) models.Webhook {
	return models.Webhook{
		ID:           uuid.Must(uuid.NewV7()),
		Owner:        owner,
		EventType:    datatypes.GameCreated,
		RecipientURL: url,
		SigningKey:   "whsec_abcdefghijklmnopqrstuvwxyz123456",
		CreatedAt:    time.Now(),
	}
}

func TestDispatcher_ZeroRegistrations(t *testing.T) {
	lookup := &mockLookup{}
	sender := &mockSender{}
	d := NewDispatcher(lookup, sender, 4, false, nil)

	d.HandleEvent(context.Background(), testEvent(t))
	d.Wait()

	if len(sender.sent) != 0 {
		t.Errorf("sent = %v, want no deliveries", sender.sent)
	}
}

func TestDispatcher_PartialFailuresStillAttemptAll(t *testing.T) {
	lookup := &mockLookup{
		webhooks: []models.Webhook{
			registration("a@x.com", "http://h/1"),
			registration("b@x.com", "http://h/2"),
			registration("c@x.com", "http://h/3"),
		},
	}
	sender := &mockSender{failFor: map[string]bool{"http://h/2": true}}
	d := NewDispatcher(lookup, sender, 2, false, nil)

	d.HandleEvent(context.Background(), testEvent(t))
	d.Wait()

	if len(sender.sent) != 3 {
		t.Errorf("attempted %d deliveries, want 3 (failures must not abort siblings)", len(sender.sent))
	}
}

func TestDispatcher_LookupErrorSwallowed(t *testing.T) {
	lookup := &mockLookup{err: errors.New("storage unavailable")}
	sender := &mockSender{}
	d := NewDispatcher(lookup, sender, 4, false, nil)

	// Must not panic or deliver anything; the caller never sees the error.
	d.HandleEvent(context.Background(), testEvent(t))
	d.Wait()

	if len(sender.sent) != 0 {
		t.Errorf("sent = %v, want none after lookup failure", sender.sent)
	}
}

func TestDispatcher_GlobalLookupByDefault(t *testing.T) {
	lookup := &mockLookup{}
	d := NewDispatcher(lookup, &mockSender{}, 4, false, nil)

	d.HandleEvent(context.Background(), testEvent(t))
	d.Wait()

	if lookup.globalCalls != 1 || lookup.scopedCalls != 0 {
		t.Errorf("global calls = %d, scoped calls = %d, want 1/0", lookup.globalCalls, lookup.scopedCalls)
	}
}

func TestDispatcher_OwnerScopedLookup(t *testing.T) {
	lookup := &mockLookup{}
	d := NewDispatcher(lookup, &mockSender{}, 4, true, nil)

	d.HandleEvent(context.Background(), testEvent(t))
	d.Wait()

	if lookup.scopedCalls != 1 || lookup.globalCalls != 0 {
		t.Errorf("scoped calls = %d, global calls = %d, want 1/0", lookup.scopedCalls, lookup.globalCalls)
	}

	if lookup.scopedOwner != "a@x.com" {
		t.Errorf("scoped owner = %q, want a@x.com", lookup.scopedOwner)
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *countingRecorder) RecordDelivery(_, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}

	r.outcomes[outcome]++
}

func TestDispatcher_RecordsOutcomes(t *testing.T) {
	lookup := &mockLookup{
		webhooks: []models.Webhook{
			registration("a@x.com", "http://h/ok"),
			registration("a@x.com", "http://h/bad"),
		},
	}
	sender := &mockSender{failFor: map[string]bool{"http://h/bad": true}}
	rec := &countingRecorder{}
	d := NewDispatcher(lookup, sender, 2, false, rec)

	d.HandleEvent(context.Background(), testEvent(t))
	d.Wait()

	if rec.outcomes["delivered"] != 1 || rec.outcomes["failed"] != 1 {
		t.Errorf("outcomes = %v, want 1 delivered / 1 failed", rec.outcomes)
	}
}
