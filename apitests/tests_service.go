package apitests

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pointr-qa/facility-contract-tests/facilityapi"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

func DoServiceTests(t *T) {
	t.Run("health", func(t *T) {
		t.metadata("Service", "Health", "blocker", "health")
		resp, err := t.API().Get(t.Ctx(), servicedef.PathHealth)
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusOK)
		assert.Equal(t, servicedef.HealthStatusOK, resp.Value().GetByKey("status").StringValue())
	})

	t.Run("root reports counts", func(t *T) {
		t.metadata("Service", "Root", "normal", "root")
		resp, err := t.API().Get(t.Ctx(), servicedef.PathRoot)
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusOK)
		body := resp.Value()
		facilityapi.VerifyResponseStructure(t, body, "message", "counts")
		counts := body.GetByKey("counts")
		facilityapi.VerifyResponseStructure(t, counts, "sites", "buildings", "levels")
		for _, key := range []string{"sites", "buildings", "levels"} {
			assert.Equal(t, ldvalue.NumberType, counts.GetByKey(key).Type(), "counts.%s", key)
		}
	})

	t.Run("health with retry", func(t *T) {
		t.metadata("Service", "Health", "normal", "health", "retry")
		started := time.Now()
		resp, err := facilityapi.Retry(t.Ctx(), func() (*facilityapi.Response, error) {
			resp, err := t.API().Get(t.Ctx(), servicedef.PathHealth)
			if err == nil && resp.Status() != http.StatusOK {
				err = fmt.Errorf("health check returned status %d", resp.Status())
			}
			return resp, err
		}, 3, time.Millisecond*100)
		require.NoError(t, err)
		t.Log().AddPerformanceMetrics("health check", time.Since(started), nil)
		assert.Equal(t, http.StatusOK, resp.Status())
	})
}
