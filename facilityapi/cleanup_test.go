package facilityapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/framework"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

func TestCleanupHierarchyDeletesChildrenFirst(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		CleanupTestHierarchy(context.Background(), NewClient(server.URL),
			Hierarchy{SiteID: "s", BuildingID: "b", LevelID: "l"})
	})
	require.Len(t, requestsCh, 3)
	for _, path := range []string{servicedef.LevelPath("l"), servicedef.BuildingPath("b"), servicedef.SitePath("s")} {
		r := <-requestsCh
		assert.Equal(t, "DELETE", r.Request.Method)
		assert.Equal(t, path, r.Request.URL.Path)
	}
}

func TestCleanupHierarchySkipsEmptyIDs(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(404))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		CleanupTestHierarchy(context.Background(), NewClient(server.URL), Hierarchy{SiteID: "s"})
	})
	require.Len(t, requestsCh, 1)
	assert.Equal(t, servicedef.SitePath("s"), (<-requestsCh).Request.URL.Path)
}

func TestCleanupNeverFailsTheTest(t *testing.T) {
	closed := httptest.NewServer(httphelpers.HandlerWithStatus(204))
	closed.Close()

	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		results := framework.Run(nil, nil, func(c *framework.Context) {
			c.Run("cleanup", func(c *framework.Context) {
				CleanupSite(context.Background(), NewClient(server.URL), "a")
				CleanupBuilding(context.Background(), NewClient(closed.URL), "b")
				CleanupLevel(context.Background(), NewClient(server.URL), "c")
			})
		})
		assert.True(t, results.OK())
	})
}

type recordingAttacher struct {
	names        []string
	contentTypes []string
	data         [][]byte
}

func (r *recordingAttacher) Attach(name, contentType string, data []byte) {
	r.names = append(r.names, name)
	r.contentTypes = append(r.contentTypes, contentType)
	r.data = append(r.data, data)
}

func TestAttachResponse(t *testing.T) {
	rec := &recordingAttacher{}
	AttachResponse(rec, &Response{status: 200, body: []byte(`{"id":"1"}`)}, "created")
	AttachResponse(rec, &Response{status: 500, body: []byte(`oops`)}, "failed")

	require.Len(t, rec.names, 2)
	assert.Equal(t, []string{"created", "failed"}, rec.names)
	assert.Equal(t, "application/json", rec.contentTypes[0])
	assert.JSONEq(t, `{"status":200,"headers":null,"body":{"id":"1"}}`, string(rec.data[0]))
	assert.JSONEq(t, `{"status":500,"headers":null,"error":"Could not parse response body"}`, string(rec.data[1]))
}
