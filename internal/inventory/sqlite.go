package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/staylink/concierge/internal/models"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at dbPath and applies the schema.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS properties (
		tenant_id   TEXT NOT NULL,
		id          TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		capacity    INTEGER NOT NULL DEFAULT 0,
		base_price  REAL NOT NULL DEFAULT 0,
		location    TEXT NOT NULL DEFAULT '""',
		card_image  TEXT NOT NULL DEFAULT '',
		images      TEXT NOT NULL DEFAULT '{}',
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_properties_tenant ON properties(tenant_id);
	`)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) ListProperties(ctx context.Context, tenantID string) ([]models.Property, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, capacity, base_price, location, card_image, images
		FROM properties
		WHERE tenant_id = ?
		ORDER BY rowid ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Property{}
	for rows.Next() {
		var (
			p            models.Property
			location, im string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Capacity, &p.BasePrice, &location, &p.CardImage, &im); err != nil {
			return nil, err
		}
		if err := decodeRow(&p, []byte(location), []byte(im)); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) UpsertProperties(ctx context.Context, tenantID string, props []models.Property) error {
	if err := validate(tenantID, props); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO properties (tenant_id, id, name, capacity, base_price, location, card_image, images, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = excluded.name,
			capacity = excluded.capacity,
			base_price = excluded.base_price,
			location = excluded.location,
			card_image = excluded.card_image,
			images = excluded.images,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range props {
		r, err := encodeRow(p)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, tenantID, p.ID, p.Name, p.Capacity, p.BasePrice, r.location, p.CardImage, r.images, now); err != nil {
			return fmt.Errorf("upsert %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}
