// Package inventory is the read side of the property catalogue: the
// collaborator the availability matcher queries per tenant.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/staylink/concierge/internal/models"
)

var ErrUnknownDriver = errors.New("unknown inventory driver")

// Inventory lists a tenant's properties in insertion order. An unknown tenant
// yields an empty list, not an error.
type Inventory interface {
	ListProperties(ctx context.Context, tenantID string) ([]models.Property, error)
	Ping(ctx context.Context) error
}

// Writer seeds or updates properties. Existing ids keep their position.
type Writer interface {
	UpsertProperties(ctx context.Context, tenantID string, props []models.Property) error
}

type Store interface {
	Inventory
	Writer
	Close() error
}

type Config struct {
	Driver      string `mapstructure:"INVENTORY_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	File        string `mapstructure:"INVENTORY_FILE"`
}

// Open builds the Store selected by cfg.Driver (postgres, sqlite or file).
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres", "postgresql", "pg":
		s, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres inventory: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres inventory: %w", err)
		}
		return s, nil
	case "sqlite", "":
		s, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite inventory: %w", err)
		}
		return s, nil
	case "file", "yaml", "json":
		s, err := NewFile(cfg.File, logger)
		if err != nil {
			return nil, fmt.Errorf("file inventory: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// row is the column-level encoding shared by the SQL backends.
type row struct {
	location string
	images   string
}

func encodeRow(p models.Property) (row, error) {
	loc, err := json.Marshal(p.Location)
	if err != nil {
		return row{}, fmt.Errorf("property %s: location: %w", p.ID, err)
	}
	images := p.ImagesByTag
	if images == nil {
		images = map[string][]string{}
	}
	img, err := json.Marshal(images)
	if err != nil {
		return row{}, fmt.Errorf("property %s: images: %w", p.ID, err)
	}
	return row{location: string(loc), images: string(img)}, nil
}

func decodeRow(p *models.Property, location, images []byte) error {
	if len(location) > 0 {
		if err := json.Unmarshal(location, &p.Location); err != nil {
			return fmt.Errorf("property %s: location: %w", p.ID, err)
		}
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.ImagesByTag); err != nil {
			return fmt.Errorf("property %s: images: %w", p.ID, err)
		}
	}
	return nil
}

func validate(tenantID string, props []models.Property) error {
	if strings.TrimSpace(tenantID) == "" {
		return errors.New("tenant id is required")
	}
	for i, p := range props {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("property #%d: id is required", i)
		}
		if p.Capacity < 0 {
			return fmt.Errorf("property %s: negative capacity", p.ID)
		}
	}
	return nil
}
