package facilityapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

// Hierarchy names the entities a test created, any of which may be empty.
type Hierarchy struct {
	SiteID     string
	BuildingID string
	LevelID    string
}

// Cleanup functions are best-effort. A 204 or 404 is silently accepted, any other status is
// logged as a warning, and a transport error is logged. None of them can fail a test.

func CleanupSite(ctx context.Context, api Client, id string) {
	cleanup(ctx, api, "site", servicedef.SitePath(id), id)
}

func CleanupBuilding(ctx context.Context, api Client, id string) {
	cleanup(ctx, api, "building", servicedef.BuildingPath(id), id)
}

func CleanupLevel(ctx context.Context, api Client, id string) {
	cleanup(ctx, api, "level", servicedef.LevelPath(id), id)
}

// CleanupTestHierarchy deletes the level, then the building, then the site.
func CleanupTestHierarchy(ctx context.Context, api Client, h Hierarchy) {
	if h.LevelID != "" {
		CleanupLevel(ctx, api, h.LevelID)
	}
	if h.BuildingID != "" {
		CleanupBuilding(ctx, api, h.BuildingID)
	}
	if h.SiteID != "" {
		CleanupSite(ctx, api, h.SiteID)
	}
}

func cleanup(ctx context.Context, api Client, kind, path, id string) {
	resp, err := api.Delete(ctx, path)
	if err != nil {
		slog.InfoContext(ctx, "cleanup failed", "kind", kind, "id", id, "err", err)
		return
	}
	switch resp.Status() {
	case http.StatusNoContent, http.StatusNotFound:
	default:
		slog.WarnContext(ctx, "unexpected status during cleanup", "kind", kind, "id", id, "status", resp.Status())
	}
}
