package facilityapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pointr-qa/facility-contract-tests/framework"
	"github.com/pointr-qa/facility-contract-tests/mockapi"
	"github.com/pointr-qa/facility-contract-tests/mockapi/store"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

const unknownID = "12345678-1234-1234-1234-123456789abc"

// newMockAPI returns a client for a seeded mock API that lives as long as the test.
func newMockAPI(t *testing.T) Client {
	s := store.NewMemoryStore()
	require.NoError(t, mockapi.Seed(context.Background(), s))
	server := httptest.NewServer(mockapi.NewServer(s))
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

// runHelper runs action as a harness test, so that helper failures end up in the returned
// results instead of failing the Go test.
func runHelper(action func(c *framework.Context)) framework.Results {
	return framework.Run(nil, nil, func(c *framework.Context) {
		c.Run("helper", action)
	})
}

func requirePassed(t *testing.T, results framework.Results) {
	t.Helper()
	for _, f := range results.Failures {
		t.Errorf("helper failed: %v", f.Errors)
	}
}

func requireFailed(t *testing.T, results framework.Results) {
	t.Helper()
	assert.Len(t, results.Failures, 1, "expected the helper to fail")
}

func TestSiteRoundTrip(t *testing.T) {
	api := newMockAPI(t)
	ctx := context.Background()
	results := runHelper(func(c *framework.Context) {
		id := CreateSiteAndGetID(ctx, c, api, servicedef.CreateSiteRequest{Name: "Hospital A", Location: "Istanbul"})
		site := VerifySiteExists(ctx, c, api, id, map[string]interface{}{"name": "Hospital A", "location": "Istanbul"})
		assert.Equal(c, "Hospital A", site.Name)

		resp, err := api.Delete(ctx, servicedef.SitePath(id))
		require.NoError(c, err)
		ValidateAPIResponse(c, resp, http.StatusNoContent)
		VerifySiteNotExists(ctx, c, api, id)
	})
	requirePassed(t, results)
}

func TestVerifySiteExistsFailsOnFieldMismatch(t *testing.T) {
	api := newMockAPI(t)
	ctx := context.Background()
	results := runHelper(func(c *framework.Context) {
		id := CreateSiteAndGetID(ctx, c, api, servicedef.CreateSiteRequest{Name: "Hospital A", Location: "Istanbul"})
		VerifySiteExists(ctx, c, api, id, map[string]interface{}{"name": "Hospital B"})
	})
	requireFailed(t, results)
}

func TestVerifySiteNotExistsFailsForExistingSite(t *testing.T) {
	api := newMockAPI(t)
	results := runHelper(func(c *framework.Context) {
		VerifySiteNotExists(context.Background(), c, api, mockapi.SeedID("site-hospital-1"))
	})
	requireFailed(t, results)
}

func TestBuildingAndLevels(t *testing.T) {
	api := newMockAPI(t)
	ctx := context.Background()
	results := runHelper(func(c *framework.Context) {
		siteID := CreateSiteAndGetID(ctx, c, api, servicedef.CreateSiteRequest{Name: "S", Location: "L"})
		floors := 5
		buildingID := CreateBuildingAndGetID(ctx, c, api,
			servicedef.CreateBuildingRequest{SiteID: siteID, Name: "B", Floors: &floors})
		building := VerifyBuildingExists(ctx, c, api, buildingID, siteID)
		assert.Equal(c, ldvalue.NewOptionalInt(5), building.Floors)

		levels := CreateLevels(ctx, c, api, servicedef.CreateLevelsRequest{Items: []servicedef.CreateLevelRequest{
			{BuildingID: buildingID, Name: "L1", Index: 1},
			{BuildingID: buildingID, Name: "L2", Index: 2},
			{BuildingID: buildingID, Name: "L3", Index: 3},
		}})
		for _, l := range levels {
			VerifyLevelExists(ctx, c, api, l.ID, buildingID)
		}

		single := CreateLevel(ctx, c, api, servicedef.CreateLevelRequest{BuildingID: buildingID, Name: "B1", Index: -1})
		assert.Equal(c, -1, VerifyLevelExists(ctx, c, api, single.ID, buildingID).Index)
	})
	requirePassed(t, results)
}

func TestCreateSiteAndGetIDRequires201(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithJSONResponse(map[string]interface{}{"id": "x"}, nil), func(server *httptest.Server) {
		results := runHelper(func(c *framework.Context) {
			CreateSiteAndGetID(context.Background(), c, NewClient(server.URL), servicedef.CreateSiteRequest{Name: "S"})
		})
		requireFailed(t, results)
	})
}

func TestCreateSiteAndGetIDRequiresID(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(201, http.Header{"Content-Type": {"application/json"}}, []byte(`{"id":""}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		results := runHelper(func(c *framework.Context) {
			CreateSiteAndGetID(context.Background(), c, NewClient(server.URL), servicedef.CreateSiteRequest{Name: "S"})
		})
		requireFailed(t, results)
	})
}

func TestValidateAPIResponse(t *testing.T) {
	for _, tc := range []struct {
		name        string
		status      int
		contentType string
		expected    int
		ok          bool
	}{
		{"JSON success", 200, "application/json; charset=utf-8", 200, true},
		{"success without content type", 204, "", 204, true},
		{"success with wrong content type", 200, "text/plain", 200, false},
		{"error with any content type", 404, "text/plain", 404, true},
		{"wrong status", 500, "application/json", 200, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			headers := http.Header{}
			if tc.contentType != "" {
				headers.Set("Content-Type", tc.contentType)
			}
			handler := httphelpers.HandlerWithResponse(tc.status, headers, nil)
			httphelpers.WithServer(handler, func(server *httptest.Server) {
				results := runHelper(func(c *framework.Context) {
					resp, err := NewClient(server.URL).Get(context.Background(), "/")
					require.NoError(c, err)
					ValidateAPIResponse(c, resp, tc.expected)
				})
				assert.Equal(t, tc.ok, results.OK(), "%+v", results.Failures)
			})
		})
	}
}

func TestVerifyResponseStructure(t *testing.T) {
	body := ldvalue.Parse([]byte(`{"id":"1","name":"n","location":null}`))

	requirePassed(t, runHelper(func(c *framework.Context) {
		VerifyResponseStructure(c, body, "id", "name", "location")
	}))
	requireFailed(t, runHelper(func(c *framework.Context) {
		VerifyResponseStructure(c, body, "id", "createdAt")
	}))
	requireFailed(t, runHelper(func(c *framework.Context) {
		VerifyResponseStructure(c, ldvalue.ArrayOf(), "id")
	}))
}

func TestRequireInvalidIDStatus(t *testing.T) {
	for status, ok := range map[int]bool{400: true, 404: true, 200: false, 500: false} {
		results := runHelper(func(c *framework.Context) {
			RequireInvalidIDStatus(c, &Response{status: status})
		})
		assert.Equal(t, ok, results.OK(), "status %d", status)
	}
}

func TestInvalidAndUnknownIDsAgainstMock(t *testing.T) {
	api := newMockAPI(t)
	ctx := context.Background()
	requirePassed(t, runHelper(func(c *framework.Context) {
		for _, path := range []string{"/sites/invalid-uuid", "/buildings/invalid-uuid", "/levels/invalid-uuid"} {
			resp, err := api.Get(ctx, path)
			require.NoError(c, err)
			RequireInvalidIDStatus(c, resp)
		}
		VerifySiteNotExists(ctx, c, api, unknownID)
	}))
}

func TestGetAllSites(t *testing.T) {
	sites := []servicedef.Site{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}

	httphelpers.WithServer(httphelpers.HandlerWithJSONResponse(sites, nil), func(server *httptest.Server) {
		requirePassed(t, runHelper(func(c *framework.Context) {
			assert.Equal(c, sites, GetAllSites(context.Background(), c, NewClient(server.URL), 0, 0))
		}))
	})

	paged := map[string]interface{}{"data": sites, "page": 2}
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(paged, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		requirePassed(t, runHelper(func(c *framework.Context) {
			assert.Equal(c, sites, GetAllSites(context.Background(), c, NewClient(server.URL), 2, 10))
		}))
		r := <-requestsCh
		assert.Equal(t, "limit=10&page=2", r.Request.URL.RawQuery)
	})

	httphelpers.WithServer(httphelpers.HandlerWithJSONResponse(map[string]interface{}{"sites": sites}, nil), func(server *httptest.Server) {
		results := runHelper(func(c *framework.Context) {
			GetAllSites(context.Background(), c, NewClient(server.URL), 0, 0)
		})
		requireFailed(t, results)
		if len(results.Failures) == 1 {
			assert.Contains(t, results.Failures[0].Errors[0].Error(), ErrUnexpectedFormat.Error())
		}
	})
}

func TestGetAllSitesAgainstMock(t *testing.T) {
	api := newMockAPI(t)
	requirePassed(t, runHelper(func(c *framework.Context) {
		sites := GetAllSites(context.Background(), c, api, 0, 0)
		require.Len(c, sites, 1)
		assert.Equal(c, "General Hospital Campus", sites[0].Name)
	}))
}

func TestUpdateSite(t *testing.T) {
	api := newMockAPI(t)
	ctx := context.Background()
	requirePassed(t, runHelper(func(c *framework.Context) {
		id := CreateSiteAndGetID(ctx, c, api, servicedef.CreateSiteRequest{Name: "Before", Location: "Here"})
		updated := UpdateSite(ctx, c, api, id, servicedef.UpdateSiteRequest{Name: "After"})
		assert.Equal(c, "After", updated.Name)
		assert.Equal(c, "Here", updated.Location)
		VerifySiteExists(ctx, c, api, id, map[string]interface{}{"name": "After"})
	}))
}
