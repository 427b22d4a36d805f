package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/enum"
	"github.com/shirt-orders/api/internal/events"
	"github.com/shirt-orders/api/internal/order"
)

// ShirtStore defines the DB methods the gateway needs.
// Satisfied by *database.Queries; narrow interface for testability.
type ShirtStore interface {
	InsertShirt(ctx context.Context, r order.Record) (order.Record, error)
	GetShirt(ctx context.Context, id uuid.UUID) (order.Record, error)
	UpdateShirt(ctx context.Context, r order.Record) (order.Record, error)
	SetShirtPaid(ctx context.Context, id uuid.UUID, paid bool) (order.Record, error)
	DeleteShirt(ctx context.Context, id uuid.UUID) error
	ListShirts(ctx context.Context, f order.Filter) ([]order.Record, error)
	CountObjectReferences(ctx context.Context, url string, exclude uuid.UUID) (int64, error)
}

// OrderGateway is the persistence gateway for order records. Every write
// is a single row; successful writes are announced through the publisher.
type OrderGateway struct {
	store     ShirtStore
	objects   ObjectRemover
	catalog   *catalog.Catalog
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderGateway(store ShirtStore, objects ObjectRemover, c *catalog.Catalog, publisher events.Publisher) *OrderGateway {
	if publisher == nil {
		publisher = events.Fanout{}
	}
	return &OrderGateway{store: store, objects: objects, catalog: c, publisher: publisher, now: time.Now}
}

// Insert writes records one by one. On failure it returns the records
// written so far together with a *order.PersistenceError.
func (g *OrderGateway) Insert(ctx context.Context, records []order.Record) ([]order.Record, error) {
	saved := make([]order.Record, 0, len(records))
	for _, r := range records {
		out, err := g.store.InsertShirt(ctx, r)
		if err != nil {
			return saved, &order.PersistenceError{Op: "insert order", Err: err}
		}
		saved = append(saved, out)
	}
	g.publish(ctx, events.Created(g.now(), saved...))
	return saved, nil
}

func (g *OrderGateway) Get(ctx context.Context, id uuid.UUID) (order.Record, error) {
	r, err := g.store.GetShirt(ctx, id)
	if err != nil {
		return order.Record{}, wrap("get order", err)
	}
	return r, nil
}

// Update applies a staff edit. Changing the model number re-derives color
// and material from the catalog unless the edit sets them explicitly.
// A changed model or size must exist in the catalog; unchanged values are
// accepted so legacy rows stay editable.
func (g *OrderGateway) Update(ctx context.Context, id uuid.UUID, p order.Patch) (order.Record, error) {
	if err := p.Validate(); err != nil {
		return order.Record{}, err
	}

	current, err := g.store.GetShirt(ctx, id)
	if err != nil {
		return order.Record{}, wrap("get order", err)
	}

	fields := map[string]string{}
	var variant catalog.Variant
	modelChanged := p.VariantNumber != nil && *p.VariantNumber != current.VariantNumber
	if modelChanged {
		v, ok := g.catalog.VariantByNumber(*p.VariantNumber)
		if !ok {
			fields["model_number"] = fmt.Sprintf("unknown model %d", *p.VariantNumber)
		}
		variant = v
	}
	if p.Size != nil && *p.Size != current.Size && !g.catalog.ValidSize(*p.Size) {
		fields["size"] = "unknown size " + *p.Size
	}
	if len(fields) > 0 {
		return order.Record{}, &order.ValidationError{Fields: fields}
	}

	next := p.Apply(current)
	if modelChanged {
		if p.Color == nil {
			next.Color = variant.Color
		}
		if p.Material == nil {
			next.Material = variant.Material
		}
	}

	updated, err := g.store.UpdateShirt(ctx, next)
	if err != nil {
		return order.Record{}, wrap("update order", err)
	}
	g.publish(ctx, events.New(enum.EventOrderUpdated, g.now(), updated))
	return updated, nil
}

// SetPaid is the payment state toggle. It only touches the paid flag and
// is idempotent; concurrent toggles are last-write-wins.
func (g *OrderGateway) SetPaid(ctx context.Context, id uuid.UUID, paid bool) (order.Record, error) {
	r, err := g.store.SetShirtPaid(ctx, id, paid)
	if err != nil {
		return order.Record{}, wrap("set paid", err)
	}
	g.publish(ctx, events.New(enum.EventOrderPaid, g.now(), r))
	return r, nil
}

// Delete removes a record. Objects it owns are removed first on a
// best-effort basis: a storage failure is logged and the row is deleted
// anyway. An object another record still references is kept.
func (g *OrderGateway) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := g.store.GetShirt(ctx, id)
	if err != nil {
		return wrap("get order", err)
	}

	if g.objects != nil {
		for _, url := range r.StoredObjects() {
			g.removeUnshared(ctx, id, url)
		}
	}

	if err := g.store.DeleteShirt(ctx, id); err != nil {
		return wrap("delete order", err)
	}
	g.publish(ctx, events.New(enum.EventOrderDeleted, g.now(), r))
	return nil
}

func (g *OrderGateway) removeUnshared(ctx context.Context, id uuid.UUID, url string) {
	key, ok := g.objects.KeyFromURL(url)
	if !ok {
		return
	}
	logger := log.With().Str("order_id", id.String()).Str("key", key).Logger()

	refs, err := g.store.CountObjectReferences(ctx, url, id)
	if err != nil {
		// Keep the object; the sweep removes it once it is truly orphaned.
		logger.Warn().Err(err).Msg("count object references")
		return
	}
	if refs > 0 {
		logger.Debug().Int64("references", refs).Msg("stored object still referenced")
		return
	}
	if err := g.objects.Remove(ctx, key); err != nil {
		logger.Warn().Err(err).Msg("remove stored object")
	}
}

func (g *OrderGateway) List(ctx context.Context, f order.Filter) ([]order.Record, error) {
	records, err := g.store.ListShirts(ctx, f)
	if err != nil {
		return nil, wrap("list orders", err)
	}
	return records, nil
}

// Groups lists the records matching f and rebuilds the composite orders.
// Filtering happens per record, so a group may show only its matching
// members.
func (g *OrderGateway) Groups(ctx context.Context, f order.Filter) ([]order.Composite, error) {
	records, err := g.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return order.Group(records), nil
}

func (g *OrderGateway) publish(ctx context.Context, ev events.Event) {
	if err := g.publisher.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("publish order event")
	}
}

func wrap(op string, err error) error {
	if errors.Is(err, order.ErrNotFound) {
		return order.ErrNotFound
	}
	return &order.PersistenceError{Op: op, Err: err}
}
