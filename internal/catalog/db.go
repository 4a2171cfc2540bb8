package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/clinictariff/internal/db"
)

// ErrNoActiveVersion is returned by LoadDB when no catalog has been imported
// and activated.
var ErrNoActiveVersion = errors.New("no active catalog version")

// LoadDB builds a Catalog from the active version in Postgres.
func LoadDB(ctx context.Context, pool *pgxpool.Pool) (*Catalog, error) {
	services, err := db.ActiveServices(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(services) == 0 {
		return nil, ErrNoActiveVersion
	}
	return New(services), nil
}
