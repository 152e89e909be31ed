package apitests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/facilityapi"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

const batchSize = 3

func DoLevelTests(t *T) {
	t.Run("batch import", func(t *T) {
		t.metadata("Level Management", "Batch Import", "critical", "levels", "batch")
		_, buildingID := t.CreateSiteAndBuilding()

		var levels []servicedef.Level
		t.Log().StepWithConsole("Import levels", func() {
			levels = facilityapi.CreateLevels(t.Ctx(), t, t.API(), t.Data().Levels(buildingID, batchSize))
		}, false)
		t.Log().StepWithConsole("Get each level", func() {
			for i, l := range levels {
				level := facilityapi.VerifyLevelExists(t.Ctx(), t, t.API(), l.ID, buildingID)
				assert.Equal(t, i+1, level.Index)
			}
		}, false)
	})

	t.Run("single import", func(t *T) {
		t.metadata("Level Management", "Import", "critical", "levels")
		_, buildingID := t.CreateSiteAndBuilding()
		level := facilityapi.CreateLevel(t.Ctx(), t, t.API(), t.Data().Level(buildingID, 0, servicedef.CreateLevelRequest{}))
		facilityapi.VerifyLevelExists(t.Ctx(), t, t.API(), level.ID, buildingID)
	})

	t.Run("basement index", func(t *T) {
		t.metadata("Level Management", "Import", "normal", "levels", "extended")
		_, buildingID := t.CreateSiteAndBuilding()
		level := facilityapi.CreateLevel(t.Ctx(), t, t.API(),
			servicedef.CreateLevelRequest{BuildingID: buildingID, Name: "Basement B1", Index: -1})
		assert.Equal(t, -1, facilityapi.VerifyLevelExists(t.Ctx(), t, t.API(), level.ID, buildingID).Index)
	})

	t.Run("errors", doLevelErrorTests)
}

func doLevelErrorTests(t *T) {
	t.Run("batch with unknown building", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "critical", "levels", "negative")
		resp, err := t.API().Post(t.Ctx(), servicedef.PathLevels, t.Data().Levels(unknownID, 2))
		require.NoError(t, err)
		facilityapi.RequireInvalidIDStatus(t, resp)
	})

	t.Run("batch with empty items", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "critical", "levels", "negative")
		resp, err := t.API().Post(t.Ctx(), servicedef.PathLevels, servicedef.CreateLevelsRequest{Items: []servicedef.CreateLevelRequest{}})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusBadRequest)
	})

	t.Run("get with invalid id", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "normal", "levels", "negative")
		resp, err := t.API().Get(t.Ctx(), servicedef.LevelPath(invalidID))
		require.NoError(t, err)
		facilityapi.RequireInvalidIDStatus(t, resp)
	})

	t.Run("get with unknown id", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "normal", "levels", "negative")
		resp, err := t.API().Get(t.Ctx(), servicedef.LevelPath(unknownID))
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusNotFound)
	})

	t.Run("PUT on collection", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "minor", "levels", "negative")
		resp, err := t.API().Put(t.Ctx(), servicedef.PathLevels,
			servicedef.CreateLevelRequest{BuildingID: unknownID, Name: "Test Level", Index: 1})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusMethodNotAllowed)
	})

	t.Run("PATCH on collection", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "minor", "levels", "negative")
		resp, err := t.API().Patch(t.Ctx(), servicedef.PathLevels, map[string]string{"name": "Test Level"})
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusMethodNotAllowed)
	})

	t.Run("DELETE on item", func(t *T) {
		t.metadata("Level Management", "Negative Testing", "minor", "levels", "negative")
		resp, err := t.API().Delete(t.Ctx(), servicedef.LevelPath(unknownID))
		require.NoError(t, err)
		facilityapi.ValidateAPIResponse(t, resp, http.StatusMethodNotAllowed)
	})
}
