package apitests

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/facilityapi"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

func DoSiteTests(t *T) {
	t.Run("create, get and delete", doSiteLifecycleTest)

	t.Run("edge case names", func(t *T) {
		for i, req := range t.Data().EdgeCaseSites() {
			req := req
			t.Run(fmt.Sprintf("%d %s", i+1, req.Name), func(t *T) {
				t.metadata("Site Management", "Data Validation", "normal", "site", "edge-cases")
				id := t.CreateSite(req)
				facilityapi.VerifySiteExists(t.Ctx(), t, t.API(), id,
					map[string]interface{}{"name": req.Name, "location": req.Location})
			})
		}
	})

	t.Run("realistic data", func(t *T) {
		t.metadata("Site Management", "Realistic Data", "normal", "site")
		req := t.Data().RealisticSite()
		id := t.CreateSite(req)
		facilityapi.VerifySiteExists(t.Ctx(), t, t.API(), id,
			map[string]interface{}{"name": req.Name, "location": req.Location})
	})

	t.Run("multiple sites get distinct ids", func(t *T) {
		t.metadata("Site Management", "Extended", "normal", "site", "extended")
		ids := make(map[string]bool)
		for i := 0; i < 3; i++ {
			id := t.CreateSite(t.Data().Site(servicedef.CreateSiteRequest{}))
			assert.False(t, ids[id], "duplicate id %s", id)
			ids[id] = true
		}
	})

	t.Run("response structure", func(t *T) {
		t.metadata("Site Management", "Extended", "normal", "site", "extended")
		id := t.CreateSite(t.Data().UniqueSite())
		resp, err := t.API().Get(t.Ctx(), servicedef.SitePath(id))
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusOK)
		facilityapi.VerifyResponseStructure(t, resp.Value(), "id", "name", "location")
		facilityapi.AttachResponse(t, resp, "Site")
	})

	t.Run("update", func(t *T) {
		t.metadata("Site Management", "Update", "normal", "site")
		req := t.Data().Site(servicedef.CreateSiteRequest{})
		id := t.CreateSite(req)
		updated := facilityapi.UpdateSite(t.Ctx(), t, t.API(), id, servicedef.UpdateSiteRequest{Name: req.Name + " (renamed)"})
		assert.Equal(t, req.Name+" (renamed)", updated.Name)
		assert.Equal(t, req.Location, updated.Location)
	})

	t.Run("list includes created site", func(t *T) {
		t.metadata("Site Management", "Listing", "minor", "site")
		id := t.CreateSite(t.Data().UniqueSite())
		err := facilityapi.AwaitCondition(t.Ctx(), func() bool {
			for _, s := range facilityapi.GetAllSites(t.Ctx(), t, t.API(), 0, 0) {
				if s.ID == id {
					return true
				}
			}
			return false
		}, time.Second*5, time.Millisecond*200)
		assert.NoError(t, err)
	})

	t.Run("errors", doSiteErrorTests)
}

func doSiteLifecycleTest(t *T) {
	t.metadata("Site Management", "CRUD Operations", "critical", "site", "crud")
	t.Log().AddTestInfo("Creates a site, reads it back, deletes it and checks that it is gone", "", "", "")
	t.Log().AddEnvironmentInfo(t.API().BaseURL(), "")

	req := t.Data().Site(servicedef.CreateSiteRequest{Name: "Hospital A", Location: "Istanbul"})
	var id string
	t.Log().StepWithConsole("Create site", func() {
		started := time.Now()
		id = facilityapi.CreateSiteAndGetID(t.Ctx(), t, t.API(), req)
		t.Log().AddPerformanceMetrics("create site", time.Since(started), nil)
	}, false)
	t.Defer(func() { facilityapi.CleanupSite(t.Ctx(), t.API(), id) })

	t.Log().StepWithConsole("Get site", func() {
		site := facilityapi.VerifySiteExists(t.Ctx(), t, t.API(), id,
			map[string]interface{}{"name": "Hospital A", "location": "Istanbul"})
		t.Log().LogAssertion("Hospital A", site.Name, "toBe", site.Name == "Hospital A")
	}, false)

	t.Log().StepWithConsole("Delete site", func() {
		resp, err := t.API().Delete(t.Ctx(), servicedef.SitePath(id))
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusNoContent)
	}, false)

	t.Log().StepWithConsole("Site is gone", func() {
		facilityapi.VerifySiteNotExists(t.Ctx(), t, t.API(), id)
	}, false)
}

func doSiteErrorTests(t *T) {
	t.Run("get with invalid id", func(t *T) {
		t.metadata("Site Management", "Negative Testing", "critical", "site", "negative")
		resp, err := t.API().Get(t.Ctx(), servicedef.SitePath(invalidID))
		require.NoError(t, err)
		t.Log().LogAssertion(facilityapi.InvalidIDStatuses, resp.Status(), "toContain",
			containsInt(facilityapi.InvalidIDStatuses, resp.Status()))
		facilityapi.RequireInvalidIDStatus(t, resp)
	})

	t.Run("get with unknown id", func(t *T) {
		t.metadata("Site Management", "Negative Testing", "critical", "site", "negative")
		facilityapi.VerifySiteNotExists(t.Ctx(), t, t.API(), unknownID)
	})

	t.Run("delete with invalid id", func(t *T) {
		t.metadata("Site Management", "Negative Testing", "normal", "site", "negative")
		resp, err := t.API().Delete(t.Ctx(), servicedef.SitePath(invalidID))
		require.NoError(t, err)
		facilityapi.RequireInvalidIDStatus(t, resp)
	})

	t.Run("delete with unknown id", func(t *T) {
		t.metadata("Site Management", "Negative Testing", "normal", "site", "negative")
		resp, err := t.API().Delete(t.Ctx(), servicedef.SitePath(unknownID))
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusNotFound)
	})

	t.Run("PUT on collection", func(t *T) {
		t.metadata("Site Management", "Negative Testing", "minor", "site", "negative")
		resp, err := t.API().Put(t.Ctx(), servicedef.PathSites, servicedef.CreateSiteRequest{Name: "Test", Location: "Test"})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusMethodNotAllowed)
	})

	t.Run("PATCH on collection", func(t *T) {
		t.metadata("Site Management", "Negative Testing", "minor", "site", "negative")
		resp, err := t.API().Patch(t.Ctx(), servicedef.PathSites, servicedef.UpdateSiteRequest{Name: "Test"})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusMethodNotAllowed)
	})
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
