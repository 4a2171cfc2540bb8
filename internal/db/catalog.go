package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/clinictariff/internal/model"
	embedsql "github.com/gyeh/clinictariff/internal/sql"
)

// CatalogVersion is one imported catalog file.
type CatalogVersion struct {
	ID          int64      `json:"catalog_version_id"`
	FileName    string     `json:"source_file_name"`
	SHA256      string     `json:"source_file_sha256"`
	Status      string     `json:"status"`
	Active      bool       `json:"is_active"`
	RowCount    int64      `json:"row_count"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
}

// ActiveServices returns the services of the active catalog version in sheet
// order. Only rows that were priced on import are stored.
func ActiveServices(ctx context.Context, pool *pgxpool.Pool) ([]model.Service, error) {
	rows, err := pool.Query(ctx, embedsql.ActiveServices)
	if err != nil {
		return nil, fmt.Errorf("query active services: %w", err)
	}
	services, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Service, error) {
		var s model.Service
		err := row.Scan(&s.Code, &s.TypeMarker, &s.Description, &s.Professional, &s.Technical)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan active services: %w", err)
	}
	return services, nil
}

// ListVersions returns every imported catalog version, newest first.
func ListVersions(ctx context.Context, pool *pgxpool.Pool) ([]CatalogVersion, error) {
	rows, err := pool.Query(ctx, embedsql.ListVersions)
	if err != nil {
		return nil, fmt.Errorf("query catalog versions: %w", err)
	}
	versions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CatalogVersion, error) {
		var v CatalogVersion
		err := row.Scan(&v.ID, &v.FileName, &v.SHA256, &v.Status, &v.Active, &v.RowCount, &v.CreatedAt, &v.ActivatedAt)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan catalog versions: %w", err)
	}
	return versions, nil
}
