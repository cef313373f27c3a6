package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
)

type FulfillmentRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

var _ fulfillmentDomain.FulfillmentReadRepository = (*FulfillmentRepoSQL)(nil)

func NewFulfillmentRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *FulfillmentRepoSQL {
	return &FulfillmentRepoSQL{db: db, dialect: dialect}
}

// InitFulfillmentSchema crea 'order_fulfillment'. order_id es único: es lo que
// hace idempotente el arranque.
func InitFulfillmentSchema(ctx context.Context, db *sql.DB, dialect sharedDB.Dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS order_fulfillment (
			order_id   TEXT PRIMARY KEY,
			id         TEXT NOT NULL UNIQUE,
			status     TEXT NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		)`, dialect.TimestampType()))
	if err != nil {
		return fmt.Errorf("failed to create order_fulfillment table: %w", err)
	}
	return nil
}

func (r *FulfillmentRepoSQL) GetByOrderID(ctx context.Context, orderID string) (*fulfillmentDomain.Fulfillment, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(
		"SELECT id, order_id, status, created_at, updated_at FROM order_fulfillment WHERE order_id = ?"), orderID)

	var (
		f      fulfillmentDomain.Fulfillment
		id     string
		status string
	)
	if err := row.Scan(&id, &f.OrderID, &status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fulfillmentDomain.ErrFulfillmentNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid fulfillment id %q: %w", id, err)
	}
	f.ID = parsed
	f.Status = fulfillmentDomain.Status(status)
	return &f, nil
}
