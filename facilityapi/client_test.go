package facilityapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

func TestClientSendsJSONBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(201))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		api := NewClient(server.URL)
		resp, err := api.Post(context.Background(), servicedef.PathSites,
			servicedef.CreateSiteRequest{Name: "Hospital A", Location: "Istanbul"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.Status())

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "/sites", r.Request.URL.Path)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"name":"Hospital A","location":"Istanbul"}`, string(r.Body))
	})
}

func TestClientGetHasNoBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"status": "ok"}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		api := NewClient(server.URL)
		resp, err := api.Get(context.Background(), servicedef.PathHealth)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status())
		assert.Equal(t, "ok", resp.Value().GetByKey("status").StringValue())
		var health servicedef.HealthInfo
		require.NoError(t, resp.JSON(&health))
		assert.Equal(t, servicedef.HealthStatusOK, health.Status)

		r := <-requestsCh
		assert.Len(t, r.Body, 0)
		assert.Equal(t, "application/json", r.Request.Header.Get("Accept"))
	})
}

func TestNonSuccessStatusIsNotAnError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		resp, err := NewClient(server.URL).Delete(context.Background(), servicedef.SitePath("x"))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.Status())
	})
}

func TestObserverSeesEveryCall(t *testing.T) {
	var calls []Call
	observer := WithObserver(CallObserverFunc(func(c Call) { calls = append(calls, c) }))

	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		api := NewClient(server.URL, observer)
		_, err := api.Put(context.Background(), servicedef.PathSites, map[string]string{"name": "x"})
		require.NoError(t, err)
	})
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, 404, calls[0].Status)
	assert.JSONEq(t, `{"name":"x"}`, string(calls[0].RequestBody))
	assert.False(t, calls[0].OK())
	assert.NoError(t, calls[0].Err)
}

func TestObserverSeesTransportErrors(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	var calls []Call
	api := NewClient(url, WithObserver(CallObserverFunc(func(c Call) { calls = append(calls, c) })))
	_, err := api.Get(context.Background(), servicedef.PathHealth)
	require.Error(t, err)
	require.Len(t, calls, 1)
	assert.Error(t, calls[0].Err)
	assert.False(t, calls[0].OK())
}

func TestUnencodableBodyIsAnError(t *testing.T) {
	api := NewClient("http://localhost:1")
	_, err := api.Post(context.Background(), servicedef.PathSites, map[string]interface{}{"bad": make(chan int)})
	assert.Error(t, err)
}
