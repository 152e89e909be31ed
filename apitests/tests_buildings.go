package apitests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/facilityapi"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

func DoBuildingTests(t *T) {
	t.Run("create and get", func(t *T) {
		t.metadata("Building Management", "CRUD Operations", "critical", "building", "crud")
		var siteID, buildingID string
		req := servicedef.CreateBuildingRequest{}

		t.Log().StepWithConsole("Create site", func() {
			siteID = t.CreateSite(t.Data().Site(servicedef.CreateSiteRequest{}))
		}, false)
		t.Log().StepWithConsole("Create building", func() {
			req = t.Data().Building(siteID, servicedef.CreateBuildingRequest{})
			buildingID = t.CreateBuilding(req)
		}, false)
		t.Log().StepWithConsole("Get building", func() {
			building := facilityapi.VerifyBuildingExists(t.Ctx(), t, t.API(), buildingID, siteID)
			assert.Equal(t, req.Name, building.Name)
			if building.Floors.IsDefined() && req.Floors != nil {
				assert.Equal(t, *req.Floors, building.Floors.IntValue())
			}
		}, false)
	})

	t.Run("multiple buildings in one site", func(t *T) {
		t.metadata("Building Management", "Extended", "normal", "building", "extended")
		siteID := t.CreateSite(servicedef.CreateSiteRequest{Name: "Multi Building Campus", Location: "Test City"})
		first := t.CreateBuilding(servicedef.CreateBuildingRequest{SiteID: siteID, Name: "Building A"})
		second := t.CreateBuilding(servicedef.CreateBuildingRequest{SiteID: siteID, Name: "Building B"})
		assert.NotEqual(t, first, second)

		assert.Equal(t, "Building A", facilityapi.VerifyBuildingExists(t.Ctx(), t, t.API(), first, siteID).Name)
		assert.Equal(t, "Building B", facilityapi.VerifyBuildingExists(t.Ctx(), t, t.API(), second, siteID).Name)
	})

	t.Run("special characters in name", func(t *T) {
		t.metadata("Building Management", "Extended", "normal", "building", "extended")
		siteID := t.CreateSite(servicedef.CreateSiteRequest{Name: "Special Campus", Location: "Test City"})
		name := "Building-A_1 (Main) & Annex #2"
		id := t.CreateBuilding(servicedef.CreateBuildingRequest{SiteID: siteID, Name: name})
		assert.Equal(t, name, facilityapi.VerifyBuildingExists(t.Ctx(), t, t.API(), id, siteID).Name)
	})

	t.Run("buildings stay with their own site", func(t *T) {
		t.metadata("Building Management", "Relationships", "critical", "building", "extended")
		siteA := t.CreateSite(servicedef.CreateSiteRequest{Name: "Site A", Location: "Location A"})
		buildingA := t.CreateBuilding(servicedef.CreateBuildingRequest{SiteID: siteA, Name: "Building A1"})
		siteB := t.CreateSite(servicedef.CreateSiteRequest{Name: "Site B", Location: "Location B"})
		buildingB := t.CreateBuilding(servicedef.CreateBuildingRequest{SiteID: siteB, Name: "Building B1"})

		facilityapi.VerifyBuildingExists(t.Ctx(), t, t.API(), buildingA, siteA)
		facilityapi.VerifyBuildingExists(t.Ctx(), t, t.API(), buildingB, siteB)
	})

	t.Run("errors", doBuildingErrorTests)
}

func doBuildingErrorTests(t *T) {
	t.Run("missing site_id", func(t *T) {
		t.metadata("Building Management", "Negative Testing", "critical", "building", "negative")
		resp, err := t.API().Post(t.Ctx(), servicedef.PathBuildings, map[string]string{"name": "Orphan"})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusBadRequest)
	})

	t.Run("unknown site_id", func(t *T) {
		t.metadata("Building Management", "Negative Testing", "critical", "building", "negative")
		resp, err := t.API().Post(t.Ctx(), servicedef.PathBuildings,
			servicedef.CreateBuildingRequest{SiteID: unknownID, Name: "Orphan"})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusBadRequest)
	})

	t.Run("get with invalid id", func(t *T) {
		t.metadata("Building Management", "Negative Testing", "critical", "building", "negative")
		t.Log().AddTestInfo("Verifies building API error handling for non-existent buildings", "", "", "")
		resp, err := t.API().Get(t.Ctx(), servicedef.BuildingPath(invalidID))
		require.NoError(t, err)
		facilityapi.RequireInvalidIDStatus(t, resp)
	})

	t.Run("get with unknown id", func(t *T) {
		t.metadata("Building Management", "Negative Testing", "critical", "building", "negative")
		resp, err := t.API().Get(t.Ctx(), servicedef.BuildingPath(unknownID))
		require.NoError(t, err)
		t.Log().LogAssertion(http.StatusNotFound, resp.Status(), "toBe", resp.Status() == http.StatusNotFound)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusNotFound)
	})
}
