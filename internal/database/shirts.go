package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shirt-orders/api/internal/order"
)

const shirtColumns = `id, name, COALESCE(size, ''), COALESCE(color, ''), COALESCE(material, ''),
	quantity, price, COALESCE(description, ''), paid, created_at, COALESCE(model_number, 0),
	COALESCE(order_group, ''), COALESCE(image_url, ''), COALESCE(payment_method, ''),
	COALESCE(payment_proof_url, ''), ticket_type, ticket_price`

func scanShirt(row pgx.Row) (order.Record, error) {
	var (
		r           order.Record
		id          pgtype.UUID
		price       pgtype.Numeric
		ticketType  pgtype.Text
		ticketPrice pgtype.Numeric
	)
	err := row.Scan(
		&id, &r.CustomerName, &r.Size, &r.Color, &r.Material,
		&r.Quantity, &price, &r.Description, &r.Paid, &r.CreatedAt, &r.VariantNumber,
		&r.GroupID, &r.ImageURL, &r.PaymentMethod,
		&r.ProofURL, &ticketType, &ticketPrice,
	)
	if err != nil {
		return order.Record{}, err
	}
	r.ID = id.Bytes

	if r.UnitPrice, err = numericToDecimal(price); err != nil {
		return order.Record{}, fmt.Errorf("scan price: %w", err)
	}
	if ticketType.Valid {
		p, err := numericToDecimal(ticketPrice)
		if err != nil {
			return order.Record{}, fmt.Errorf("scan ticket price: %w", err)
		}
		r.Addon = &order.Addon{Type: ticketType.String, Price: p}
	}
	return r, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return order.ErrNotFound
	}
	return err
}

// InsertShirt writes one record. The caller supplies the id and creation
// time so every record of a submission shares the same clock reading.
func (q *Queries) InsertShirt(ctx context.Context, r order.Record) (order.Record, error) {
	price, err := decimalToNumeric(r.UnitPrice)
	if err != nil {
		return order.Record{}, err
	}
	var ticketType pgtype.Text
	var ticketPrice pgtype.Numeric
	if r.Addon != nil {
		ticketType = pgtype.Text{String: r.Addon.Type, Valid: true}
		if ticketPrice, err = decimalToNumeric(r.Addon.Price); err != nil {
			return order.Record{}, err
		}
	}

	row := q.db.QueryRow(ctx, `
		INSERT INTO shirts (id, name, size, color, material, quantity, price, description, paid,
			created_at, model_number, order_group, image_url, payment_method, payment_proof_url,
			ticket_type, ticket_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+shirtColumns,
		pgUUID(r.ID), r.CustomerName, nullText(r.Size), nullText(r.Color), nullText(r.Material),
		r.Quantity, price, nullText(r.Description), r.Paid,
		r.CreatedAt, nullInt4(r.VariantNumber), nullText(r.GroupID), nullText(r.ImageURL),
		nullText(r.PaymentMethod), nullText(r.ProofURL), ticketType, ticketPrice,
	)
	return scanShirt(row)
}

func (q *Queries) GetShirt(ctx context.Context, id uuid.UUID) (order.Record, error) {
	row := q.db.QueryRow(ctx, `SELECT `+shirtColumns+` FROM shirts WHERE id = $1`, pgUUID(id))
	r, err := scanShirt(row)
	return r, notFound(err)
}

// UpdateShirt writes the staff-editable columns of r. Group, creation time,
// add-on and stored object references are left alone.
func (q *Queries) UpdateShirt(ctx context.Context, r order.Record) (order.Record, error) {
	price, err := decimalToNumeric(r.UnitPrice)
	if err != nil {
		return order.Record{}, err
	}
	row := q.db.QueryRow(ctx, `
		UPDATE shirts
		SET name = $2, size = $3, color = $4, material = $5, quantity = $6, price = $7,
			description = $8, paid = $9, model_number = $10
		WHERE id = $1
		RETURNING `+shirtColumns,
		pgUUID(r.ID), r.CustomerName, nullText(r.Size), nullText(r.Color), nullText(r.Material),
		r.Quantity, price, nullText(r.Description), r.Paid,
		nullInt4(r.VariantNumber),
	)
	r, err = scanShirt(row)
	return r, notFound(err)
}

// SetShirtPaid touches only the paid column.
func (q *Queries) SetShirtPaid(ctx context.Context, id uuid.UUID, paid bool) (order.Record, error) {
	row := q.db.QueryRow(ctx, `UPDATE shirts SET paid = $2 WHERE id = $1 RETURNING `+shirtColumns, pgUUID(id), paid)
	r, err := scanShirt(row)
	return r, notFound(err)
}

func (q *Queries) DeleteShirt(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM shirts WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListShirts returns the records matching f, newest first.
func (q *Queries) ListShirts(ctx context.Context, f order.Filter) ([]order.Record, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+shirtColumns+`
		FROM shirts
		WHERE ($1::boolean IS NULL OR paid = $1)
		  AND ($2 = '' OR strpos(lower(name), lower($2)) > 0)
		ORDER BY created_at DESC, id`,
		f.Paid, f.Search,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []order.Record
	for rows.Next() {
		r, err := scanShirt(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ReferencedObjects returns every object URL a record still points at.
func (q *Queries) ReferencedObjects(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT payment_proof_url FROM shirts WHERE payment_proof_url IS NOT NULL
		UNION
		SELECT image_url FROM shirts WHERE image_url IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// CountObjectReferences counts the records other than exclude that still
// point at url.
func (q *Queries) CountObjectReferences(ctx context.Context, url string, exclude uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*) FROM shirts
		WHERE id <> $2 AND (payment_proof_url = $1 OR image_url = $1)`,
		url, pgUUID(exclude),
	).Scan(&n)
	return n, err
}

// CheckShirts fails when the shirts table is missing or unreachable.
func (q *Queries) CheckShirts(ctx context.Context) error {
	var n int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM (SELECT 1 FROM shirts LIMIT 1) s`).Scan(&n)
	return err
}
