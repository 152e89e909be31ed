package apitests

import (
	"github.com/pointr-qa/facility-contract-tests/datafactory"
	"github.com/pointr-qa/facility-contract-tests/framework"
)

const (
	// unknownID is well formed but never assigned to anything.
	unknownID = "12345678-1234-1234-1234-123456789abc"
	invalidID = "invalid-uuid"
)

func RunTestSuite(
	params SuiteParams,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	if params.Data == nil {
		params.Data = datafactory.New(0)
	}
	env := &environment{params: params}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newT(c, env)

		t.Run("service", DoServiceTests)
		t.Run("sites", DoSiteTests)
		t.Run("buildings", DoBuildingTests)
		t.Run("levels", DoLevelTests)
	})
}
