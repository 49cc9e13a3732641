package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricescout/internal/domain"
)

// memDB interprets the store's SQL against in-memory tables so the
// writer's coalescing and rollback behavior can be verified without a
// running Postgres. Statements are recognized by their target table.
type memDB struct {
	catalog    map[string]catalogRow
	history    []historyRow
	failOnName string // catalog upsert for this product name errors
}

type catalogRow struct {
	productName string
	imageURL    string
	firstSeen   time.Time
	lastUpdated time.Time
}

type historyRow struct {
	productID     string
	productName   string
	store         string
	price         float64
	originalPrice *float64
	recordedAt    time.Time
	dayOfWeek     int
	dayOfMonth    int
}

func newMemDB() *memDB {
	return &memDB{catalog: make(map[string]catalogRow)}
}

func (m *memDB) snapshot() ([]historyRow, map[string]catalogRow) {
	history := append([]historyRow(nil), m.history...)
	catalog := make(map[string]catalogRow, len(m.catalog))
	for k, v := range m.catalog {
		catalog[k] = v
	}
	return history, catalog
}

func (m *memDB) Begin(context.Context) (pgx.Tx, error) {
	history, catalog := m.snapshot()
	return &memTx{db: m, savedHistory: history, savedCatalog: catalog}, nil
}

func (m *memDB) Ping(context.Context) error { return nil }
func (m *memDB) Close()                     {}

func (m *memDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (m *memDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if !strings.Contains(sql, "FROM products") {
		return fakeRow{err: errors.New("not implemented")}
	}
	productID := args[0].(string)
	row, ok := m.catalog[productID]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = productID
		*dest[1].(*string) = row.productName
		*dest[2].(*string) = ""
		*dest[3].(*string) = ""
		*dest[4].(*string) = row.imageURL
		*dest[5].(*time.Time) = row.firstSeen
		*dest[6].(*time.Time) = row.lastUpdated
		return nil
	}}
}

type fakeRow struct {
	err  error
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return r.scan(dest...)
}

// memTx executes the writer's three statements against memDB. Rollback
// restores the pre-transaction snapshot unless Commit ran first.
type memTx struct {
	pgx.Tx
	db           *memDB
	savedHistory []historyRow
	savedCatalog map[string]catalogRow
	committed    bool
}

func (t *memTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	if !t.committed {
		t.db.history = t.savedHistory
		t.db.catalog = t.savedCatalog
	}
	return nil
}

func (t *memTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO products"):
		productID := args[0].(string)
		name := args[1].(string)
		if name == t.db.failOnName {
			return pgconn.CommandTag{}, errors.New("value too long for type")
		}
		now := args[3].(time.Time)
		row, exists := t.db.catalog[productID]
		if !exists {
			row.firstSeen = now
		}
		row.productName = name
		row.imageURL = args[2].(string)
		row.lastUpdated = now
		t.db.catalog[productID] = row
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE price_history"):
		productID := args[0].(string)
		store := args[1].(string)
		cutoff := args[6].(time.Time)
		best := -1
		for i, row := range t.db.history {
			if row.productID == productID && row.store == store && row.recordedAt.After(cutoff) {
				if best == -1 || row.recordedAt.After(t.db.history[best].recordedAt) {
					best = i
				}
			}
		}
		if best == -1 {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		t.db.history[best].price = args[2].(float64)
		t.db.history[best].originalPrice = args[3].(*float64)
		t.db.history[best].recordedAt = args[4].(time.Time)
		t.db.history[best].productName = args[5].(string)
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case strings.Contains(sql, "INSERT INTO price_history"):
		t.db.history = append(t.db.history, historyRow{
			productID:     args[0].(string),
			productName:   args[1].(string),
			store:         args[2].(string),
			price:         args[3].(float64),
			originalPrice: args[4].(*float64),
			recordedAt:    args[5].(time.Time),
			dayOfWeek:     args[6].(int),
			dayOfMonth:    args[7].(int),
		})
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement: " + sql)
}

func product(id, name string, price float64) domain.Product {
	return domain.Product{
		ProductID: id,
		Name:      name,
		Price:     price,
		Store:     "TestShop",
	}
}

func TestWriteCoalescesWithinHour(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}
	ctx := context.Background()

	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Muis", 49.99)}))
	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Muis", 44.99)}))

	// repeated scrapes within the rolling hour collapse onto one row
	// carrying the latest value
	require.Len(t, db.history, 1)
	assert.Equal(t, 44.99, db.history[0].price)
	assert.Len(t, db.catalog, 1)
}

func TestWriteAppendsOutsideWindow(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}
	ctx := context.Background()

	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Muis", 49.99)}))
	db.history[0].recordedAt = time.Now().Add(-2 * time.Hour)

	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Muis", 44.99)}))

	require.Len(t, db.history, 2)
	assert.Equal(t, 49.99, db.history[0].price)
	assert.Equal(t, 44.99, db.history[1].price)
}

func TestWriteDistinctStoresDoNotCoalesce(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}
	ctx := context.Background()

	other := product("tst-1", "Muis", 52.50)
	other.Store = "OtherShop"
	require.NoError(t, store.WriteObservations(ctx, []domain.Product{
		product("tst-1", "Muis", 49.99),
		other,
	}))

	assert.Len(t, db.history, 2)
	assert.Len(t, db.catalog, 1)
}

func TestWriteDerivesDayFields(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}

	before := time.Now()
	require.NoError(t, store.WriteObservations(context.Background(), []domain.Product{product("tst-1", "Muis", 49.99)}))

	require.Len(t, db.history, 1)
	row := db.history[0]
	assert.Equal(t, int(row.recordedAt.Weekday()), row.dayOfWeek)
	assert.Equal(t, row.recordedAt.Day(), row.dayOfMonth)
	assert.False(t, row.recordedAt.Before(before))
}

func TestWriteCatalogIsLastWriteWins(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}
	ctx := context.Background()

	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Oude naam", 49.99)}))
	firstSeen := db.catalog["tst-1"].firstSeen

	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Nieuwe naam", 49.99)}))

	entry := db.catalog["tst-1"]
	assert.Equal(t, "Nieuwe naam", entry.productName)
	assert.Equal(t, firstSeen, entry.firstSeen)
	assert.False(t, entry.lastUpdated.Before(firstSeen))
}

func TestWriteBatchRollsBackAsOne(t *testing.T) {
	db := newMemDB()
	db.failOnName = "kapot"
	store := &PostgresStore{db: db}

	err := store.WriteObservations(context.Background(), []domain.Product{
		product("tst-1", "Goed", 10),
		product("tst-2", "kapot", 20),
	})
	require.Error(t, err)

	// any row failure rolls back the entire batch
	assert.Empty(t, db.history)
	assert.Empty(t, db.catalog)
}

func TestWriteEmptyBatchIsNoop(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}

	require.NoError(t, store.WriteObservations(context.Background(), nil))
	assert.Empty(t, db.history)
}

func TestGetCatalogEntry(t *testing.T) {
	db := newMemDB()
	store := &PostgresStore{db: db}
	ctx := context.Background()

	require.NoError(t, store.WriteObservations(ctx, []domain.Product{product("tst-1", "Muis", 49.99)}))

	entry, err := store.GetCatalogEntry(ctx, "tst-1")
	require.NoError(t, err)
	assert.Equal(t, "tst-1", entry.ProductID)
	assert.Equal(t, "Muis", entry.ProductName)

	_, err = store.GetCatalogEntry(ctx, "tst-404")
	require.Error(t, err)
	assert.Equal(t, "not_found", err.Error())
}
