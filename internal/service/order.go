package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/enum"
	"github.com/shirt-orders/api/internal/order"
	"github.com/shirt-orders/api/internal/storage"
)

// Submission is one customer order form as received.
type Submission struct {
	CustomerName   string
	Size           string
	Description    string
	VariantIDs     []string
	Quantity       int32
	AddonID        string
	PayNow         bool
	CatalogVersion string
	Proof          *storage.File

	// FormErrors are syntax problems found while reading the form. They are
	// reported together with the rule violations Assemble finds.
	FormErrors map[string]string
}

// ProofUploader stores a payment proof and returns its URL.
// Satisfied by *storage.ProofUploader; narrow interface for testability.
type ProofUploader interface {
	Upload(ctx context.Context, f storage.File) (string, error)
}

// ObjectRemover deletes stored objects by URL.
// Satisfied by *storage.MinioStore.
type ObjectRemover interface {
	Remove(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, bool)
}

// RecordInserter persists assembled records.
// Satisfied by *OrderGateway.
type RecordInserter interface {
	Insert(ctx context.Context, records []order.Record) ([]order.Record, error)
}

// OrderService turns submissions into priced, grouped records.
type OrderService struct {
	catalog  *catalog.Catalog
	uploader ProofUploader
	inserter RecordInserter
	objects  ObjectRemover
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewOrderService wires the assembler. objects may be nil, in which case a
// proof orphaned by a failed insert is left for the sweep.
func NewOrderService(c *catalog.Catalog, uploader ProofUploader, inserter RecordInserter, objects ObjectRemover) *OrderService {
	return &OrderService{
		catalog:  c,
		uploader: uploader,
		inserter: inserter,
		objects:  objects,
		now:      time.Now,
		newID:    newRecordID,
	}
}

// Submit assembles and persists a submission. Nothing is written when
// validation or the proof upload fails.
func (s *OrderService) Submit(ctx context.Context, sub Submission) ([]order.Record, error) {
	records, _, err := s.Assemble(ctx, sub)
	if err != nil {
		return nil, err
	}

	saved, err := s.inserter.Insert(ctx, records)
	if err != nil {
		if len(saved) == 0 {
			s.discardProof(records[0].ProofURL)
		}
		return saved, err
	}
	return saved, nil
}

// Assemble validates the submission, resolves prices server-side and
// uploads the proof if one was attached. It returns one record per selected
// variant, all sharing a fresh group id.
func (s *OrderService) Assemble(ctx context.Context, sub Submission) ([]order.Record, string, error) {
	fields := map[string]string{}

	name := strings.TrimSpace(sub.CustomerName)
	if name == "" {
		fields["name"] = "name is required"
	}

	if sub.CatalogVersion != "" && sub.CatalogVersion != s.catalog.Version {
		fields["catalog_version"] = fmt.Sprintf("prices changed, catalog is now %s", s.catalog.Version)
	}

	var variants []catalog.Variant
	if len(sub.VariantIDs) == 0 {
		fields["model"] = "select a model"
	}
	seen := map[string]bool{}
	for _, id := range sub.VariantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		v, err := s.catalog.Variant(id)
		if err != nil {
			fields["model"] = "unknown model " + id
			continue
		}
		variants = append(variants, v)
	}

	var addon *order.Addon
	if sub.AddonID == "" {
		if s.catalog.Policy.RequireAddon {
			fields["ticket"] = "select a ticket type"
		}
	} else if a, err := s.catalog.Addon(sub.AddonID); err != nil {
		fields["ticket"] = "unknown ticket type " + sub.AddonID
	} else {
		addon = &order.Addon{Type: a.ID, Price: a.Price}
	}

	if sub.Quantity < 1 {
		fields["quantity"] = "quantity must be at least 1"
	}

	if sub.PayNow && sub.Proof == nil {
		fields["payment_proof"] = "attach the payment proof"
	}

	size := strings.TrimSpace(sub.Size)
	if size == "" {
		size = s.catalog.Policy.DefaultSize
	}
	if !s.catalog.ValidSize(size) {
		fields["size"] = "unknown size " + size
	}

	for field, msg := range sub.FormErrors {
		fields[field] = msg
	}

	if len(fields) > 0 {
		return nil, "", &order.ValidationError{Fields: fields}
	}

	var proofURL string
	if sub.Proof != nil {
		url, err := s.uploader.Upload(ctx, *sub.Proof)
		if err != nil {
			return nil, "", &order.UploadError{Err: err}
		}
		proofURL = url
	}

	groupID := s.newID().String()
	createdAt := s.now()
	records := make([]order.Record, 0, len(variants))
	for i, v := range variants {
		r := order.Record{
			ID:            s.newID(),
			GroupID:       groupID,
			CustomerName:  name,
			Size:          size,
			Color:         v.Color,
			Material:      v.Material,
			VariantNumber: v.Number,
			Quantity:      sub.Quantity,
			UnitPrice:     v.Price,
			Description:   strings.TrimSpace(sub.Description),
			CreatedAt:     createdAt,
			ImageURL:      v.ImageURL,
		}
		// The add-on is bought once per submission.
		if i == 0 && addon != nil {
			a := *addon
			r.Addon = &a
		}
		if proofURL != "" {
			r.Paid = true
			r.PaymentMethod = enum.PaymentMethodPix
			r.ProofURL = proofURL
		}
		records = append(records, r)
	}
	return records, groupID, nil
}

// newRecordID returns time-ordered ids so records created in the same
// instant still sort in submission order.
func newRecordID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func (s *OrderService) discardProof(url string) {
	if url == "" || s.objects == nil {
		return
	}
	key, ok := s.objects.KeyFromURL(url)
	if !ok {
		return
	}
	// The request context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.objects.Remove(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("remove proof after failed insert")
	}
}

// IsClientError reports whether err was caused by the request rather than
// by a backing service.
func IsClientError(err error) bool {
	var ve *order.ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, storage.ErrInvalidType) || errors.Is(err, storage.ErrTooLarge)
}
