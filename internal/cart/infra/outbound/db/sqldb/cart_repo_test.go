package sqldb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	cartApp "github.com/davicafu/hexaprojector/internal/cart/application"
	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	sharedEvents "github.com/davicafu/hexaprojector/internal/shared/domain/events"
	sharedDB "github.com/davicafu/hexaprojector/internal/shared/infra/platform/db"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
	"github.com/davicafu/hexaprojector/internal/shared/infra/store/sqlstore"
)

func setup(t *testing.T) (*sqlstore.Store, *CartRepoSQL) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	store := sqlstore.New(db, sharedDB.SQLite, zap.NewNop())
	require.NoError(t, store.InitCheckpointSchema(ctx))
	require.NoError(t, InitCartSchema(ctx, db, sharedDB.SQLite))
	return store, NewCartRepoSQL(db, sharedDB.SQLite)
}

// project aplica una secuencia de eventos como lo haría el proyector.
func project(t *testing.T, store *sqlstore.Store, evts ...sharedEvents.Event) {
	d := cartApp.NewProjection()
	for i, evt := range evts {
		mutations, err := d.Project(evt)
		require.NoError(t, err)
		require.NoError(t, store.Apply(context.Background(), mutations,
			sharedDomain.Checkpoint{ReadModel: cartDomain.ReadModelName, Position: uint64(i)}))
	}
}

var at = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func added(qty int) sharedEvents.ItemAdded {
	return sharedEvents.ItemAdded{
		CartID: "cart-1", ProductID: "p-1", ProductName: "Mouse", Quantity: qty,
		Price: sharedEvents.Price{Currency: "USD", Amount: decimal.RequireFromString("12.50")}, At: at,
	}
}

func TestCartLifecycle_QuantityReachesZeroDeletesItem(t *testing.T) {
	// Arrange
	store, repo := setup(t)
	ctx := context.Background()

	// Act: 3 + 2 = 5
	project(t, store,
		sharedEvents.VisitorStarted{CartID: "cart-1", At: at},
		added(3),
		added(2),
	)

	// Assert
	cart, err := repo.GetByID(ctx, "cart-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "USD", cart.Items[0].Currency)
	assert.True(t, cart.Items[0].PricePerUnit.Equal(decimal.RequireFromString("12.5")))
	assert.Nil(t, cart.CustomerID)
	assert.Equal(t, cartDomain.CartStarted, cart.Status)

	// Act: -5 borra la línea
	project(t, store, sharedEvents.ItemRemoved{CartID: "cart-1", ProductID: "p-1", Quantity: 5, At: at.Add(time.Minute)})

	cart, err = repo.GetByID(ctx, "cart-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.UpdatedAt.Equal(at.Add(time.Minute)))
}

func TestItemAddedToUnknownCart_CreatesCart(t *testing.T) {
	store, repo := setup(t)

	project(t, store, added(1))

	cart, err := repo.GetByID(context.Background(), "cart-1")
	require.NoError(t, err)
	assert.Equal(t, cartDomain.CartStarted, cart.Status)
	assert.Len(t, cart.Items, 1)
}

func TestListByCriteria(t *testing.T) {
	store, repo := setup(t)
	ctx := context.Background()
	project(t, store,
		sharedEvents.CustomerStarted{CartID: "cart-1", CustomerID: "cust-1", At: at},
		sharedEvents.VisitorStarted{CartID: "cart-2", At: at.Add(time.Minute)},
		sharedEvents.ShopperIdentified{CartID: "cart-2", CustomerID: "cust-1", At: at.Add(2 * time.Minute)},
		sharedEvents.CheckedOut{CartID: "cart-1", At: at.Add(3 * time.Minute)},
		sharedEvents.VisitorStarted{CartID: "cart-3", At: at.Add(4 * time.Minute)},
		sharedEvents.Abandoned{CartID: "cart-3", At: at.Add(5 * time.Minute)},
	)

	byCustomer, err := repo.ListByCriteria(ctx, cartDomain.CustomerIDCriteria{CustomerID: "cust-1"},
		sharedQuery.Page(1, 10), sharedQuery.Sort{Field: "created_at"})
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)
	assert.Equal(t, "cart-1", byCustomer[0].CartID)
	assert.Equal(t, cartDomain.CartCheckedOut, byCustomer[0].Status)
	assert.Equal(t, "cart-2", byCustomer[1].CartID)

	abandoned, err := repo.ListByCriteria(ctx, sharedDomain.And(cartDomain.StatusCriteria{Status: cartDomain.CartAbandoned}),
		sharedQuery.Page(1, 10), cartDomain.DefaultSort)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, "cart-3", abandoned[0].CartID)

	paged, err := repo.ListByCriteria(ctx, nil, sharedQuery.Page(2, 2), sharedQuery.Sort{Field: "cart_id"})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "cart-3", paged[0].CartID)
}

func TestGetByID_NotFound(t *testing.T) {
	_, repo := setup(t)

	_, err := repo.GetByID(context.Background(), "nope")

	assert.ErrorIs(t, err, cartDomain.ErrCartNotFound)
}
