package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staylink/concierge/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS properties (
	seq         BIGSERIAL,
	tenant_id   TEXT NOT NULL,
	id          TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	capacity    INTEGER NOT NULL DEFAULT 0,
	base_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	location    JSONB NOT NULL DEFAULT '""',
	card_image  TEXT NOT NULL DEFAULT '',
	images      JSONB NOT NULL DEFAULT '{}',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, id)
);
CREATE INDEX IF NOT EXISTS idx_properties_tenant_seq ON properties (tenant_id, seq);
`

type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

func (s *Postgres) Close() error {
	s.Pool.Close()
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, postgresSchema)
	return err
}

func (s *Postgres) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) ListProperties(ctx context.Context, tenantID string) ([]models.Property, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, capacity, base_price, location, card_image, images
		FROM properties
		WHERE tenant_id = $1
		ORDER BY seq ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Property{}
	for rows.Next() {
		var (
			p              models.Property
			location, imgs []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Capacity, &p.BasePrice, &location, &p.CardImage, &imgs); err != nil {
			return nil, err
		}
		if err := decodeRow(&p, location, imgs); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertProperties(ctx context.Context, tenantID string, props []models.Property) error {
	if err := validate(tenantID, props); err != nil {
		return err
	}
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range props {
			r, err := encodeRow(p)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO properties (tenant_id, id, name, capacity, base_price, location, card_image, images)
				VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8::jsonb)
				ON CONFLICT (tenant_id, id) DO UPDATE SET
					name = EXCLUDED.name,
					capacity = EXCLUDED.capacity,
					base_price = EXCLUDED.base_price,
					location = EXCLUDED.location,
					card_image = EXCLUDED.card_image,
					images = EXCLUDED.images,
					updated_at = now()`,
				tenantID, p.ID, p.Name, p.Capacity, p.BasePrice, r.location, p.CardImage, r.images)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
