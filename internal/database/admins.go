package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Admin struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

const adminColumns = `id, email, full_name, password_hash, is_active, created_at`

func scanAdmin(row pgx.Row) (Admin, error) {
	var a Admin
	var id pgtype.UUID
	if err := row.Scan(&id, &a.Email, &a.FullName, &a.PasswordHash, &a.IsActive, &a.CreatedAt); err != nil {
		return Admin{}, err
	}
	a.ID = id.Bytes
	return a, nil
}

func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	return scanAdmin(q.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE lower(email) = lower($1)`, email))
}

func (q *Queries) GetAdminByID(ctx context.Context, id uuid.UUID) (Admin, error) {
	return scanAdmin(q.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, pgUUID(id)))
}

func (q *Queries) ListAdmins(ctx context.Context) ([]Admin, error) {
	rows, err := q.db.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

type CreateAdminParams struct {
	Email        string
	FullName     string
	PasswordHash string
}

func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	return scanAdmin(q.db.QueryRow(ctx, `
		INSERT INTO admins (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+adminColumns,
		arg.Email, arg.FullName, arg.PasswordHash,
	))
}

// DeleteAdmin returns pgx.ErrNoRows when no admin has that id.
func (q *Queries) DeleteAdmin(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM admins WHERE id = $1`, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
