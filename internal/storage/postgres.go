package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricescout/internal/domain"
)

// coalesceWindow is the rolling interval within which repeated
// observations of the same product and store overwrite instead of
// append.
const coalesceWindow = time.Hour

// pgDB is the slice of pgxpool.Pool the store uses; narrowed so the
// writer's transaction flow is testable without a running database.
type pgDB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore handles interactions with the PostgreSQL database.
type PostgresStore struct {
	db pgDB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// WriteObservations persists a batch of canonical products as one
// transaction: catalog upsert plus coalesced history row per product.
// Any failure rolls back the whole batch.
func (s *PostgresStore) WriteObservations(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for i := range products {
		if err := writeOne(ctx, tx, &products[i], now); err != nil {
			return fmt.Errorf("write observation for %s: %w", products[i].ProductID, err)
		}
	}

	return tx.Commit(ctx)
}

func writeOne(ctx context.Context, tx pgx.Tx, p *domain.Product, now time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO products (product_id, product_name, image_url, first_seen, last_updated)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (product_id) DO UPDATE SET
		   product_name = EXCLUDED.product_name,
		   image_url = EXCLUDED.image_url,
		   last_updated = EXCLUDED.last_updated`,
		p.ProductID, p.Name, p.ImageURL, now,
	)
	if err != nil {
		return err
	}

	// Coalesce: refresh the row written within the rolling window if one
	// exists, otherwise append. The hour-bucket unique index (schema.sql)
	// makes the insert race-safe under concurrent writers.
	tag, err := tx.Exec(ctx,
		`UPDATE price_history SET
		   price = $3, original_price = $4, recorded_at = $5, product_name = $6
		 WHERE id = (
		   SELECT id FROM price_history
		   WHERE product_id = $1 AND store = $2 AND recorded_at > $7
		   ORDER BY recorded_at DESC LIMIT 1
		 )`,
		p.ProductID, p.Store, p.Price, p.OriginalPrice, now, p.Name, now.Add(-coalesceWindow),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO price_history
		   (product_id, product_name, store, price, original_price, recorded_at, day_of_week, day_of_month)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (product_id, store, date_trunc('hour', recorded_at)) DO UPDATE SET
		   price = EXCLUDED.price,
		   original_price = EXCLUDED.original_price,
		   recorded_at = EXCLUDED.recorded_at,
		   product_name = EXCLUDED.product_name`,
		p.ProductID, p.Name, p.Store, p.Price, p.OriginalPrice,
		now, int(now.Weekday()), now.Day(),
	)
	return err
}

// GetHistory returns a product's observations within the lookback
// window, oldest first.
func (s *PostgresStore) GetHistory(ctx context.Context, productID string, lookbackDays int) ([]domain.PriceObservation, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, product_id, product_name, store, price, original_price, recorded_at, day_of_week, day_of_month
		 FROM price_history
		 WHERE product_id = $1 AND recorded_at > NOW() - ($2 * interval '1 day')
		 ORDER BY recorded_at ASC`,
		productID, lookbackDays,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PriceObservation
	for rows.Next() {
		var obs domain.PriceObservation
		if err := rows.Scan(&obs.ID, &obs.ProductID, &obs.ProductName, &obs.Store,
			&obs.Price, &obs.OriginalPrice, &obs.RecordedAt, &obs.DayOfWeek, &obs.DayOfMonth); err != nil {
			return nil, err
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}

// GetCatalogEntry returns the catalog row for a product id.
func (s *PostgresStore) GetCatalogEntry(ctx context.Context, productID string) (*domain.CatalogEntry, error) {
	var e domain.CatalogEntry
	err := s.db.QueryRow(ctx,
		`SELECT product_id, product_name, COALESCE(brand, ''), COALESCE(category, ''), COALESCE(image_url, ''), first_seen, last_updated
		 FROM products WHERE product_id = $1`,
		productID,
	).Scan(&e.ProductID, &e.ProductName, &e.Brand, &e.Category, &e.ImageURL, &e.FirstSeen, &e.LastUpdated)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("not_found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
