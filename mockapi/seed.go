package mockapi

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pointr-qa/facility-contract-tests/mockapi/store"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

var seedNamespace = uuid.MustParse("6f1c9a52-3b0e-4d4f-9a57-2f1e0c7d8b11")

// SeedID returns the fixed identifier of a seeded entity. It is a name-based UUID, so it passes
// the same validation as ids issued at runtime.
func SeedID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

// Seed loads one site with two buildings and four levels. Seeding an already seeded store
// leaves it with the same contents.
func Seed(ctx context.Context, s store.Store) error {
	siteID := SeedID("site-hospital-1")
	mainID := SeedID("bldg-main-1")
	outpatientID := SeedID("bldg-outpatient-1")

	if _, err := s.CreateSite(ctx, servicedef.Site{ID: siteID, Name: "General Hospital Campus"}); err != nil {
		return fmt.Errorf("seeding site: %w", err)
	}
	for _, b := range []servicedef.Building{
		{ID: mainID, SiteID: siteID, Name: "Main Hospital"},
		{ID: outpatientID, SiteID: siteID, Name: "Outpatient Center"},
	} {
		if _, err := s.CreateBuilding(ctx, b); err != nil {
			return fmt.Errorf("seeding building %q: %w", b.Name, err)
		}
	}
	_, err := s.CreateLevels(ctx, []servicedef.Level{
		{ID: SeedID("lvl-b1"), BuildingID: mainID, Name: "Basement B1", Index: -1},
		{ID: SeedID("lvl-g"), BuildingID: mainID, Name: "Ground", Index: 0},
		{ID: SeedID("lvl-l1"), BuildingID: mainID, Name: "L1", Index: 1},
		{ID: SeedID("lvl-g2"), BuildingID: outpatientID, Name: "Ground", Index: 0},
	})
	if err != nil {
		return fmt.Errorf("seeding levels: %w", err)
	}
	return nil
}
