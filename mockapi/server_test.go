package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/mockapi/store"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

const unknownID = "12345678-1234-1234-1234-123456789abc"

func newSeededServer(t *testing.T) *Server {
	s := store.NewMemoryStore()
	require.NoError(t, Seed(context.Background(), s))
	return NewServer(s)
}

func do(server http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestSeedContents(t *testing.T) {
	server := newSeededServer(t)
	rec := do(server, "GET", "/", "")
	require.Equal(t, 200, rec.Code)
	var info servicedef.RootInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, servicedef.EntityCounts{Sites: 1, Buildings: 2, Levels: 4}, info.Counts)
	assert.NotEmpty(t, info.Message)

	rec = do(server, "GET", servicedef.SitePath(SeedID("site-hospital-1")), "")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "General Hospital Campus")

	rec = do(server, "GET", "/levels?building_id="+SeedID("bldg-main-1"), "")
	require.Equal(t, 200, rec.Code)
	var levels []servicedef.Level
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &levels))
	assert.Len(t, levels, 3)
}

func TestSeedIsRepeatable(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, Seed(context.Background(), s))
	require.NoError(t, Seed(context.Background(), s))
	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, servicedef.EntityCounts{Sites: 1, Buildings: 2, Levels: 4}, counts)
}

func TestStatusCodes(t *testing.T) {
	server := newSeededServer(t)
	siteID := SeedID("site-hospital-1")
	buildingID := SeedID("bldg-main-1")

	for _, tc := range []struct {
		name, method, path, body string
		status                   int
	}{
		{"health", "GET", "/health", "", 200},
		{"create site", "POST", "/sites", `{"name":"Hospital A","location":"Istanbul"}`, 201},
		{"create site without name", "POST", "/sites", `{"location":"Istanbul"}`, 400},
		{"create site with bad JSON", "POST", "/sites", `{`, 400},
		{"get site with malformed id", "GET", "/sites/invalid-uuid", "", 400},
		{"get unknown site", "GET", "/sites/" + unknownID, "", 404},
		{"delete unknown site", "DELETE", "/sites/" + unknownID, "", 404},
		{"delete site with malformed id", "DELETE", "/sites/invalid-uuid", "", 400},
		{"PUT on site collection", "PUT", "/sites", `{}`, 405},
		{"PATCH on site collection", "PATCH", "/sites", `{}`, 405},
		{"update site", "PUT", "/sites/" + siteID, `{"location":"Izmir"}`, 200},
		{"create building", "POST", "/buildings", `{"site_id":"` + siteID + `","name":"B","floors":3}`, 201},
		{"create building without site", "POST", "/buildings", `{"name":"B"}`, 400},
		{"create building in unknown site", "POST", "/buildings", `{"site_id":"` + unknownID + `","name":"B"}`, 400},
		{"get unknown building", "GET", "/buildings/" + unknownID, "", 404},
		{"create single level", "POST", "/levels", `{"building_id":"` + buildingID + `","name":"L9","index":9}`, 201},
		{"create empty batch", "POST", "/levels", `{"items":[]}`, 400},
		{"create batch in unknown building", "POST", "/levels", `{"items":[{"building_id":"` + unknownID + `","name":"L1","index":1}]}`, 400},
		{"get level with malformed id", "GET", "/levels/invalid-uuid", "", 400},
		{"get unknown level", "GET", "/levels/" + unknownID, "", 404},
		{"PUT on level collection", "PUT", "/levels", `{}`, 405},
		{"PATCH on level collection", "PATCH", "/levels", `{}`, 405},
		{"DELETE on level", "DELETE", "/levels/" + unknownID, "", 405},
		{"unknown path", "GET", "/floors", "", 404},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(server, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if rec.Code != http.StatusNoContent {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestBatchPreservesOrderAndIndexes(t *testing.T) {
	server := newSeededServer(t)
	buildingID := SeedID("bldg-outpatient-1")
	body := `{"items":[
		{"building_id":"` + buildingID + `","name":"L3","index":3},
		{"building_id":"` + buildingID + `","name":"L1","index":1},
		{"building_id":"` + buildingID + `","name":"L2","index":2}]}`

	rec := do(server, "POST", "/levels", body)
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var batch servicedef.LevelBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
	require.Len(t, batch.Items, 3)
	for i, want := range []int{3, 1, 2} {
		assert.Equal(t, want, batch.Items[i].Index)
		assert.Equal(t, buildingID, batch.Items[i].BuildingID)
	}
}

func TestCORSHeaders(t *testing.T) {
	server := newSeededServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
