// Package events records per-account domain events and pushes them to live
// websocket listeners and the message bus.
package events

import (
	"context"
	"time"

	"metastor/internal/database"

	"github.com/rs/zerolog"
)

type Journal interface {
	LogEvent(ctx context.Context, accountID int64, eventType string, payload interface{}) (*database.Event, error)
}

type Pusher interface {
	PublishEvent(accountID int64, eventData []byte)
}

type Message struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"accountId"`
	EventType string    `json:"eventType"`
	EventTime time.Time `json:"eventTime"`
	Payload   any       `json:"payload"`
}

// Notifier never fails the caller: journal, push and bus errors are logged.
type Notifier struct {
	journal   Journal
	pusher    Pusher
	publisher Publisher
	log       zerolog.Logger
}

func NewNotifier(journal Journal, pusher Pusher, publisher Publisher, log zerolog.Logger) *Notifier {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Notifier{
		journal:   journal,
		pusher:    pusher,
		publisher: publisher,
		log:       log.With().Str("component", "events").Logger(),
	}
}

func (n *Notifier) Notify(ctx context.Context, accountID int64, eventType string, payload any) {
	// detached so a cancelled request still records what already happened
	ctx = context.WithoutCancel(ctx)

	event, err := n.journal.LogEvent(ctx, accountID, eventType, payload)
	if err != nil {
		n.log.Error().Err(err).Int64("account_id", accountID).Str("event_type", eventType).Msg("failed to journal event")
		return
	}

	if n.pusher != nil {
		n.pusher.PublishEvent(accountID, event.Payload)
	}

	msg := Message{
		ID:        event.ID,
		AccountID: accountID,
		EventType: eventType,
		EventTime: event.EventTime,
		Payload:   payload,
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.publisher.Publish(pubCtx, eventType, msg); err != nil {
		n.log.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event to bus")
	}
}
