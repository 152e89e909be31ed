// Package store holds the mock facility API's data.
package store

import (
	"context"
	"errors"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference means a building or level names a parent that does not exist.
	ErrInvalidReference = errors.New("referenced parent does not exist")
)

// Store is implemented by the memory and SQLite backends. Entities passed to the Create
// methods with an empty ID are given a new random UUID.
type Store interface {
	CreateSite(ctx context.Context, site servicedef.Site) (servicedef.Site, error)
	GetSite(ctx context.Context, id string) (servicedef.Site, error)
	UpdateSite(ctx context.Context, site servicedef.Site) (servicedef.Site, error)
	DeleteSite(ctx context.Context, id string) error
	ListSites(ctx context.Context) ([]servicedef.Site, error)

	CreateBuilding(ctx context.Context, building servicedef.Building) (servicedef.Building, error)
	GetBuilding(ctx context.Context, id string) (servicedef.Building, error)
	DeleteBuilding(ctx context.Context, id string) error
	// ListBuildings returns every building, or only those of siteID if it is not empty.
	ListBuildings(ctx context.Context, siteID string) ([]servicedef.Building, error)

	// CreateLevels stores all of the levels or none of them.
	CreateLevels(ctx context.Context, levels []servicedef.Level) ([]servicedef.Level, error)
	GetLevel(ctx context.Context, id string) (servicedef.Level, error)
	ListLevels(ctx context.Context, buildingID string) ([]servicedef.Level, error)

	Counts(ctx context.Context) (servicedef.EntityCounts, error)
	Close() error
}
