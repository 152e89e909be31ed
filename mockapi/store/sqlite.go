package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	_ "modernc.org/sqlite"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

//go:embed schema.sql
var schema string

// SQLiteStore keeps the mock's data in a SQLite database, so that it can outlive the process.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the database at path. ":memory:" gives a private
// in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSite(row rowScanner) (servicedef.Site, error) {
	var site servicedef.Site
	err := row.Scan(&site.ID, &site.Name, &site.Location, &site.CreatedAt, &site.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return site, ErrNotFound
	}
	return site, err
}

func scanBuilding(row rowScanner) (servicedef.Building, error) {
	var (
		building servicedef.Building
		floors   sql.NullInt64
	)
	err := row.Scan(&building.ID, &building.SiteID, &building.Name, &floors)
	if errors.Is(err, sql.ErrNoRows) {
		return building, ErrNotFound
	}
	if floors.Valid {
		building.Floors = ldvalue.NewOptionalInt(int(floors.Int64))
	}
	return building, err
}

func scanLevel(row rowScanner) (servicedef.Level, error) {
	var level servicedef.Level
	err := row.Scan(&level.ID, &level.BuildingID, &level.Name, &level.Index)
	if errors.Is(err, sql.ErrNoRows) {
		return level, ErrNotFound
	}
	return level, err
}

func (s *SQLiteStore) CreateSite(ctx context.Context, site servicedef.Site) (servicedef.Site, error) {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	site.CreatedAt = timestamp()
	site.UpdatedAt = site.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (id, name, location, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, location = excluded.location,
			updated_at = excluded.updated_at`,
		site.ID, site.Name, site.Location, site.CreatedAt, site.UpdatedAt)
	if err != nil {
		return servicedef.Site{}, fmt.Errorf("inserting site: %w", err)
	}
	return site, nil
}

func (s *SQLiteStore) GetSite(ctx context.Context, id string) (servicedef.Site, error) {
	return scanSite(s.db.QueryRowContext(ctx,
		`SELECT id, name, location, created_at, updated_at FROM sites WHERE id = ?`, id))
}

func (s *SQLiteStore) UpdateSite(ctx context.Context, site servicedef.Site) (servicedef.Site, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sites SET
			name = CASE WHEN ? = '' THEN name ELSE ? END,
			location = CASE WHEN ? = '' THEN location ELSE ? END,
			updated_at = ?
		WHERE id = ?`,
		site.Name, site.Name, site.Location, site.Location, timestamp(), site.ID)
	if err != nil {
		return servicedef.Site{}, fmt.Errorf("updating site: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return servicedef.Site{}, err
	}
	return s.GetSite(ctx, site.ID)
}

func (s *SQLiteStore) DeleteSite(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "sites", id)
}

func (s *SQLiteStore) ListSites(ctx context.Context) ([]servicedef.Site, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, created_at, updated_at FROM sites ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSite)
}

func (s *SQLiteStore) CreateBuilding(ctx context.Context, building servicedef.Building) (servicedef.Building, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return servicedef.Building{}, err
	}
	defer tx.Rollback()

	if err := requireExists(ctx, tx, "sites", building.SiteID); err != nil {
		return servicedef.Building{}, err
	}
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	var floors sql.NullInt64
	if building.Floors.IsDefined() {
		floors = sql.NullInt64{Int64: int64(building.Floors.IntValue()), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO buildings (id, site_id, name, floors) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET site_id = excluded.site_id, name = excluded.name,
			floors = excluded.floors`,
		building.ID, building.SiteID, building.Name, floors)
	if err != nil {
		return servicedef.Building{}, fmt.Errorf("inserting building: %w", err)
	}
	return building, tx.Commit()
}

func (s *SQLiteStore) GetBuilding(ctx context.Context, id string) (servicedef.Building, error) {
	return scanBuilding(s.db.QueryRowContext(ctx,
		`SELECT id, site_id, name, floors FROM buildings WHERE id = ?`, id))
}

func (s *SQLiteStore) DeleteBuilding(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "buildings", id)
}

func (s *SQLiteStore) ListBuildings(ctx context.Context, siteID string) ([]servicedef.Building, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, name, floors FROM buildings
		WHERE ? = '' OR site_id = ? ORDER BY seq`, siteID, siteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanBuilding)
}

func (s *SQLiteStore) CreateLevels(ctx context.Context, levels []servicedef.Level) ([]servicedef.Level, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]servicedef.Level, len(levels))
	for i, level := range levels {
		if err := requireExists(ctx, tx, "buildings", level.BuildingID); err != nil {
			return nil, err
		}
		if level.ID == "" {
			level.ID = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO levels (id, building_id, name, level_index) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET building_id = excluded.building_id,
				name = excluded.name, level_index = excluded.level_index`,
			level.ID, level.BuildingID, level.Name, level.Index)
		if err != nil {
			return nil, fmt.Errorf("inserting level %d: %w", i, err)
		}
		out[i] = level
	}
	return out, tx.Commit()
}

func (s *SQLiteStore) GetLevel(ctx context.Context, id string) (servicedef.Level, error) {
	return scanLevel(s.db.QueryRowContext(ctx,
		`SELECT id, building_id, name, level_index FROM levels WHERE id = ?`, id))
}

func (s *SQLiteStore) ListLevels(ctx context.Context, buildingID string) ([]servicedef.Level, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, building_id, name, level_index FROM levels
		WHERE ? = '' OR building_id = ? ORDER BY seq`, buildingID, buildingID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanLevel)
}

func (s *SQLiteStore) Counts(ctx context.Context) (servicedef.EntityCounts, error) {
	var counts servicedef.EntityCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM sites), (SELECT COUNT(*) FROM buildings), (SELECT COUNT(*) FROM levels)`,
	).Scan(&counts.Sites, &counts.Buildings, &counts.Levels)
	return counts, err
}

// table is always one of our own constants, never user input.
func (s *SQLiteStore) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return requireAffected(res)
}

func requireExists(ctx context.Context, tx *sql.Tx, table, id string) error {
	var found int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidReference
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
