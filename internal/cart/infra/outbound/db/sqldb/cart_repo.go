package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
)

// CartRepoSQL lee el read model de carritos de Postgres o SQLite.
type CartRepoSQL struct {
	db      *sql.DB
	dialect sharedDB.Dialect
}

var _ cartDomain.CartReadRepository = (*CartRepoSQL)(nil)

func NewCartRepoSQL(db *sql.DB, dialect sharedDB.Dialect) *CartRepoSQL {
	return &CartRepoSQL{db: db, dialect: dialect}
}

// ------------------ Inicialización del Esquema ------------------

// InitCartSchema crea las tablas 'carts' y 'cart_items' si no existen.
func InitCartSchema(ctx context.Context, db *sql.DB, dialect sharedDB.Dialect) error {
	ts, num := dialect.TimestampType(), dialect.NumericType()
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS carts (
			cart_id     TEXT PRIMARY KEY,
			customer_id TEXT NULL,
			status      TEXT NOT NULL DEFAULT 'STARTED',
			created_at  %[1]s NOT NULL,
			updated_at  %[1]s NOT NULL
		)`, ts))
	if err != nil {
		return fmt.Errorf("failed to create carts table: %w", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS cart_items (
			cart_id        TEXT NOT NULL REFERENCES carts(cart_id),
			product_id     TEXT NOT NULL,
			product_name   TEXT,
			quantity       INTEGER NOT NULL DEFAULT 0,
			currency       TEXT,
			price_per_unit %[2]s,
			tax_rate       %[2]s,
			updated_at     %[1]s NOT NULL,
			PRIMARY KEY (cart_id, product_id)
		)`, ts, num))
	if err != nil {
		return fmt.Errorf("failed to create cart_items table: %w", err)
	}
	return nil
}

// ------------------ Lectura ------------------

const cartColumns = "cart_id, customer_id, status, created_at, updated_at"

func (r *CartRepoSQL) GetByID(ctx context.Context, cartID string) (*cartDomain.Cart, error) {
	row := r.db.QueryRowContext(ctx,
		r.dialect.Rebind("SELECT "+cartColumns+" FROM carts WHERE cart_id = ?"), cartID)

	cart, err := scanCart(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cartDomain.ErrCartNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}

	items, err := r.items(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

func (r *CartRepoSQL) items(ctx context.Context, cartID string) ([]cartDomain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(`
		SELECT cart_id, product_id, product_name, quantity, currency, price_per_unit, tax_rate, updated_at
		FROM cart_items WHERE cart_id = ? ORDER BY product_id`), cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []cartDomain.CartItem
	for rows.Next() {
		var (
			it       cartDomain.CartItem
			name     sql.NullString
			currency sql.NullString
		)
		if err := rows.Scan(&it.CartID, &it.ProductID, &name, &it.Quantity, &currency, &it.PricePerUnit, &it.TaxRate, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.ProductName = name.String
		it.Currency = currency.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// applyCriteria traduce criterios a SQL con marcadores '?'.
func applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	if criteria == nil {
		return "", nil
	}
	conds := criteria.ToConditions()
	if len(conds) == 0 {
		return "", nil
	}
	var clauses []string
	var args []interface{}
	for _, c := range conds {
		clauses = append(clauses, fmt.Sprintf("%s %s ?", sharedDB.QuoteIdent(c.Field), c.Op))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

// ListByCriteria recupera carritos (sin líneas) aplicando filtros, paginación y ordenamiento.
func (r *CartRepoSQL) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, page sharedQuery.OffsetPagination, sort sharedQuery.Sort) ([]*cartDomain.Cart, error) {
	whereSQL, args := applyCriteria(criteria)

	query := "SELECT " + cartColumns + " FROM carts"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sharedDB.QuoteIdent(sort.Field), sort.Direction())
	if page.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []*cartDomain.Cart
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	return carts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCart(s scanner) (*cartDomain.Cart, error) {
	var (
		c        cartDomain.Cart
		customer sql.NullString
		status   string
	)
	if err := s.Scan(&c.CartID, &customer, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if customer.Valid {
		c.CustomerID = &customer.String
	}
	c.Status = cartDomain.CartStatus(status)
	return &c, nil
}
