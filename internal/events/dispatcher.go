package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/models"
)

// defaultMaxConcurrent bounds outbound HTTP calls when no cap is configured.
const defaultMaxConcurrent = 100

// RegistrationLookup is the subset of the webhooks repository the dispatcher
// needs. Lookups always hit storage so a dispatch observes the current
// registration snapshot.
type RegistrationLookup interface {
	ListByEventType(ctx context.Context, eventType datatypes.EventType) ([]models.Webhook, error)
	ListByEventTypeAndOwner(ctx context.Context, eventType datatypes.EventType, owner string) ([]models.Webhook, error)
}

// DeliveryRecorder records delivery outcomes (e.g. Prometheus counters).
// May be nil when metrics are disabled.
type DeliveryRecorder interface {
	RecordDelivery(eventType, outcome string)
}

// Dispatcher is the event provider that broadcasts each event to every
// matching webhook registration. Deliveries run concurrently, bounded by a
// semaphore; each recipient's failure is isolated from the others and from
// the triggering request.
type Dispatcher struct {
	lookup      RegistrationLookup
	sender      Sender
	metrics     DeliveryRecorder
	ownerScoped bool
	sem         chan struct{}
	wg          sync.WaitGroup
}

// NewDispatcher creates a dispatcher. When ownerScoped is true, dispatch only
// notifies registrations belonging to the owner who triggered the event;
// otherwise lookup is global across owners (the default interpretation).
// metrics may be nil.
func NewDispatcher(lookup RegistrationLookup, sender Sender, maxConcurrent int, ownerScoped bool, metrics DeliveryRecorder) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Dispatcher{
		lookup:      lookup,
		sender:      sender,
		metrics:     metrics,
		ownerScoped: ownerScoped,
		sem:         make(chan struct{}, maxConcurrent),
	}
}

// HandleEvent broadcasts one event to all matching registrations. Lookup or
// marshal failures are logged and dropped; they never surface to the caller.
// Zero matching registrations means zero HTTP calls.
func (d *Dispatcher) HandleEvent(ctx context.Context, event Event) {
	var (
		webhooks []models.Webhook
		err      error
	)

	if d.ownerScoped {
		webhooks, err = d.lookup.ListByEventTypeAndOwner(ctx, event.Type, event.Owner)
	} else {
		webhooks, err = d.lookup.ListByEventType(ctx, event.Type)
	}

	if err != nil {
		slog.Error("Failed to list webhook registrations for event type",
			"event_type", event.Type.String(),
			"error", err,
		)

		return
	}

	if len(webhooks) == 0 {
		return
	}

	payloadJSON, err := json.Marshal(&Payload{
		ID:        event.ID.String(),
		Type:      event.Type.String(),
		Timestamp: time.Unix(event.Timestamp, 0).UTC(),
		Data:      event.Data,
	})
	if err != nil {
		slog.Error("Failed to marshal webhook payload",
			"event_type", event.Type.String(),
			"error", err,
		)

		return
	}

	messageID := event.ID.String()

	// Deliveries outlive HandleEvent and must not die with the per-event
	// context; the sender's own timeout bounds each call.
	sendCtx := context.WithoutCancel(ctx)

	for _, webhook := range webhooks {
		d.sem <- struct{}{} // acquire (blocks at cap)
		d.wg.Add(1)

		go func(w models.Webhook) {
			defer func() {
				<-d.sem
				d.wg.Done()
			}()

			start := time.Now()

			err := d.sender.Send(sendCtx, w, payloadJSON, messageID)
			duration := time.Since(start)

			if err != nil {
				if d.metrics != nil {
					d.metrics.RecordDelivery(event.Type.String(), "failed")
				}

				slog.Warn("Failed to deliver webhook",
					"message_id", messageID,
					"webhook_id", w.ID,
					"url", w.RecipientURL,
					"event_type", event.Type.String(),
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)

				return
			}

			if d.metrics != nil {
				d.metrics.RecordDelivery(event.Type.String(), "delivered")
			}

			slog.Debug("Webhook delivered",
				"message_id", messageID,
				"webhook_id", w.ID,
				"url", w.RecipientURL,
				"event_type", event.Type.String(),
				"duration_ms", duration.Milliseconds(),
			)
		}(webhook)
	}
}

// Wait blocks until all in-flight deliveries finish. Used by graceful
// shutdown and tests; callers on the request path never wait.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
