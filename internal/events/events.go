// Package events describes order lifecycle notifications and the
// publishers that deliver them to the staff dashboard and the message bus.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/enum"
	"github.com/shirt-orders/api/internal/order"
)

// Event is one change to the order record set.
type Event struct {
	Type     string    `json:"type"`
	GroupID  string    `json:"group_id,omitempty"`
	OrderIDs []string  `json:"order_ids"`
	Paid     bool      `json:"paid"`
	At       time.Time `json:"at"`
}

// Publisher delivers events. Delivery is best-effort: a failed publish never
// undoes the write that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// New builds an event of type typ describing records.
func New(typ string, at time.Time, records ...order.Record) Event {
	ev := Event{Type: typ, At: at, OrderIDs: make([]string, 0, len(records))}
	for i, r := range records {
		if i == 0 {
			ev.GroupID = r.GroupKey()
			ev.Paid = r.Paid
		}
		ev.OrderIDs = append(ev.OrderIDs, r.ID.String())
	}
	return ev
}

// Created is published after a submission was persisted.
func Created(at time.Time, records ...order.Record) Event {
	return New(enum.EventOrderCreated, at, records...)
}

// Fanout publishes every event to all of its publishers.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("event", ev.Type).Msg("publish event")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
