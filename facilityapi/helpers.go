package facilityapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

// InvalidIDStatuses are the statuses accepted for a request whose path id is not a well-formed
// identifier. 400 is the preferred answer, but 404 is also allowed because some deployments
// route such ids to the normal lookup and report them as missing.
var InvalidIDStatuses = []int{http.StatusBadRequest, http.StatusNotFound}

// ErrUnexpectedFormat is reported when a response body is valid JSON but not in any of the
// shapes the API is known to use.
var ErrUnexpectedFormat = errors.New("unexpected response format")

// CreateSiteAndGetID creates a site, requires a 201 response with a non-empty id, and returns the id.
func CreateSiteAndGetID(ctx context.Context, t require.TestingT, api Client, site servicedef.CreateSiteRequest) string {
	resp, err := api.Post(ctx, servicedef.PathSites, site)
	require.NoError(t, err)
	return requireCreatedID(t, resp)
}

// CreateBuildingAndGetID creates a building, requires a 201 response with a non-empty id, and
// returns the id.
func CreateBuildingAndGetID(ctx context.Context, t require.TestingT, api Client, building servicedef.CreateBuildingRequest) string {
	resp, err := api.Post(ctx, servicedef.PathBuildings, building)
	require.NoError(t, err)
	return requireCreatedID(t, resp)
}

// CreateLevel imports a single level and returns it as the API reported it.
func CreateLevel(ctx context.Context, t require.TestingT, api Client, level servicedef.CreateLevelRequest) servicedef.Level {
	resp, err := api.Post(ctx, servicedef.PathLevels, level)
	require.NoError(t, err)
	ValidateAPIResponse(t, resp, http.StatusCreated)
	var created servicedef.Level
	require.NoError(t, resp.JSON(&created), "level response: %s", resp.Text())
	require.NotEmpty(t, created.ID, "created level has no id")
	assert.Equal(t, level.BuildingID, created.BuildingID)
	assert.Equal(t, level.Index, created.Index)
	return created
}

// CreateLevels imports a batch of levels. The response must hold one item per input item, in
// the same order and with the same indexes.
func CreateLevels(ctx context.Context, t require.TestingT, api Client, batch servicedef.CreateLevelsRequest) []servicedef.Level {
	resp, err := api.Post(ctx, servicedef.PathLevels, batch)
	require.NoError(t, err)
	ValidateAPIResponse(t, resp, http.StatusCreated)
	var created servicedef.LevelBatch
	require.NoError(t, resp.JSON(&created), "level batch response: %s", resp.Text())
	require.Len(t, created.Items, len(batch.Items))
	for i, item := range created.Items {
		assert.NotEmpty(t, item.ID, "item %d has no id", i)
		assert.Equal(t, batch.Items[i].Index, item.Index, "index of item %d", i)
		assert.Equal(t, batch.Items[i].BuildingID, item.BuildingID, "building_id of item %d", i)
	}
	return created.Items
}

func requireCreatedID(t require.TestingT, resp *Response) string {
	ValidateAPIResponse(t, resp, http.StatusCreated)
	id := resp.Value().GetByKey("id")
	require.True(t, id.IsString() && id.StringValue() != "", "response has no id: %s", resp.Text())
	return id.StringValue()
}

// VerifySiteExists requires that the site can be fetched and has the given id. Each key of
// expected, if any, must be present in the response with an equal JSON value.
func VerifySiteExists(ctx context.Context, t require.TestingT, api Client, id string, expected map[string]interface{}) servicedef.Site {
	var site servicedef.Site
	body := verifyExists(ctx, t, api, servicedef.SitePath(id), id, &site)
	assertFields(t, body, expected)
	return site
}

// VerifySiteNotExists requires that fetching the site gives a 404.
func VerifySiteNotExists(ctx context.Context, t require.TestingT, api Client, id string) {
	resp, err := api.Get(ctx, servicedef.SitePath(id))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.Status(), "site %s still exists", id)
}

// VerifyBuildingExists requires that the building can be fetched, has the given id and belongs
// to siteID. An empty siteID skips the relationship check.
func VerifyBuildingExists(ctx context.Context, t require.TestingT, api Client, id, siteID string) servicedef.Building {
	var building servicedef.Building
	verifyExists(ctx, t, api, servicedef.BuildingPath(id), id, &building)
	if siteID != "" {
		assert.Equal(t, siteID, building.SiteID, "building %s site_id", id)
	}
	return building
}

// VerifyLevelExists requires that the level can be fetched, has the given id and belongs to
// buildingID. An empty buildingID skips the relationship check.
func VerifyLevelExists(ctx context.Context, t require.TestingT, api Client, id, buildingID string) servicedef.Level {
	var level servicedef.Level
	verifyExists(ctx, t, api, servicedef.LevelPath(id), id, &level)
	if buildingID != "" {
		assert.Equal(t, buildingID, level.BuildingID, "level %s building_id", id)
	}
	return level
}

func verifyExists(ctx context.Context, t require.TestingT, api Client, path, id string, target interface{}) ldvalue.Value {
	resp, err := api.Get(ctx, path)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status(), "GET %s: %s", path, resp.Text())
	require.NoError(t, resp.JSON(target), "GET %s returned malformed JSON: %s", path, resp.Text())
	body := resp.Value()
	require.Equal(t, id, body.GetByKey("id").StringValue(), "GET %s returned a different id", path)
	return body
}

func assertFields(t require.TestingT, body ldvalue.Value, expected map[string]interface{}) {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		want := ldvalue.CopyArbitraryValue(expected[k])
		assert.Equal(t, want.JSONString(), body.GetByKey(k).JSONString(), "field %q", k)
	}
}

// ValidateAPIResponse requires the given status. For a 2xx status, a Content-Type header, if
// there is one, must be JSON.
func ValidateAPIResponse(t require.TestingT, resp *Response, expectedStatus int) {
	require.NotNil(t, resp)
	require.Equal(t, expectedStatus, resp.Status(), "%s %s: %s", resp.Method(), resp.URL(), resp.Text())
	if expectedStatus >= 200 && expectedStatus < 300 {
		if contentType := resp.Header("Content-Type"); contentType != "" {
			require.Contains(t, contentType, "application/json")
		}
	}
}

// VerifyResponseStructure requires body to be an object with every one of the named properties.
// Only presence is checked, so a property whose value is null still counts.
func VerifyResponseStructure(t require.TestingT, body ldvalue.Value, fields ...string) {
	require.Equal(t, ldvalue.ObjectType, body.Type(), "expected a JSON object but got %s", body.JSONString())
	keys := body.Keys()
	for _, f := range fields {
		assert.Contains(t, keys, f, "missing property %q in %s", f, body.JSONString())
	}
}

// RequireInvalidIDStatus requires one of the InvalidIDStatuses.
func RequireInvalidIDStatus(t require.TestingT, resp *Response) {
	require.Contains(t, InvalidIDStatuses, resp.Status(), "%s %s: %s", resp.Method(), resp.URL(), resp.Text())
}

// GetAllSites lists sites. page and limit are passed as query parameters when positive. Both a
// plain array and a {"data": [...]} page are accepted.
func GetAllSites(ctx context.Context, t require.TestingT, api Client, page, limit int) []servicedef.Site {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := servicedef.PathSites
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := api.Get(ctx, path)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status(), resp.Text())

	list := resp.Value()
	if list.Type() == ldvalue.ObjectType {
		list = list.GetByKey("data")
	}
	if list.Type() != ldvalue.ArrayType {
		require.Fail(t, ErrUnexpectedFormat.Error(), "sites list: %s", strings.TrimSpace(resp.Text()))
	}
	var sites []servicedef.Site
	require.NoError(t, json.Unmarshal([]byte(list.JSONString()), &sites))
	return sites
}

// UpdateSite replaces a site's fields and returns the updated site.
func UpdateSite(ctx context.Context, t require.TestingT, api Client, id string, update servicedef.UpdateSiteRequest) servicedef.Site {
	resp, err := api.Put(ctx, servicedef.SitePath(id), update)
	require.NoError(t, err)
	ValidateAPIResponse(t, resp, http.StatusOK)
	var site servicedef.Site
	require.NoError(t, resp.JSON(&site))
	require.Equal(t, id, site.ID)
	return site
}
