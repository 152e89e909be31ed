package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/pointr-qa/facility-contract-tests/mockapi/store"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

const rootMessage = "Facility Mock API"

var validate = validator.New()

type siteBody struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

type siteUpdateBody struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type buildingBody struct {
	SiteID string `json:"site_id" validate:"required,uuid"`
	Name   string `json:"name" validate:"required"`
	Floors *int   `json:"floors" validate:"omitempty,gte=0"`
}

type levelBody struct {
	BuildingID string `json:"building_id" validate:"required,uuid"`
	Name       string `json:"name"`
	Index      int    `json:"index"`
}

// levelsBody accepts either a single level or {"items": [...]}. Items is non-nil exactly when
// the "items" property was present.
type levelsBody struct {
	Items *[]levelBody `json:"items"`
	levelBody
}

type handlers struct {
	store store.Store
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Counts(r.Context())
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, servicedef.RootInfo{Message: rootMessage, Counts: counts})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, servicedef.HealthInfo{Status: servicedef.HealthStatusOK})
}

func (h *handlers) listSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.store.ListSites(r.Context())
	respondList(w, r, sites, err)
}

func (h *handlers) createSite(w http.ResponseWriter, r *http.Request) {
	var body siteBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	site, err := h.store.CreateSite(r.Context(), servicedef.Site{Name: body.Name, Location: body.Location})
	respondCreated(w, r, site, err)
}

func (h *handlers) getSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	site, err := h.store.GetSite(r.Context(), id)
	respondEntity(w, r, site, err)
}

func (h *handlers) updateSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body siteUpdateBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	site, err := h.store.UpdateSite(r.Context(), servicedef.Site{ID: id, Name: body.Name, Location: body.Location})
	respondEntity(w, r, site, err)
}

func (h *handlers) deleteSite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	respondDeleted(w, r, h.store.DeleteSite(r.Context(), id))
}

func (h *handlers) listBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.store.ListBuildings(r.Context(), r.URL.Query().Get("site_id"))
	respondList(w, r, buildings, err)
}

func (h *handlers) createBuilding(w http.ResponseWriter, r *http.Request) {
	var body buildingBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	building := servicedef.Building{SiteID: body.SiteID, Name: body.Name}
	if body.Floors != nil {
		building.Floors = ldvalue.NewOptionalInt(*body.Floors)
	}
	created, err := h.store.CreateBuilding(r.Context(), building)
	respondCreated(w, r, created, err)
}

func (h *handlers) getBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	building, err := h.store.GetBuilding(r.Context(), id)
	respondEntity(w, r, building, err)
}

func (h *handlers) deleteBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	respondDeleted(w, r, h.store.DeleteBuilding(r.Context(), id))
}

func (h *handlers) listLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.store.ListLevels(r.Context(), r.URL.Query().Get("building_id"))
	respondList(w, r, levels, err)
}

func (h *handlers) createLevels(w http.ResponseWriter, r *http.Request) {
	var body levelsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if body.Items == nil {
		if err := validate.Struct(body.levelBody); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := h.store.CreateLevels(r.Context(), []servicedef.Level{body.levelBody.toLevel()})
		if err != nil {
			respondStoreError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, created[0])
		return
	}

	items := *body.Items
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "provide a level object or {items: [...]}")
		return
	}
	levels := make([]servicedef.Level, 0, len(items))
	for _, item := range items {
		if err := validate.Struct(item); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		levels = append(levels, item.toLevel())
	}
	created, err := h.store.CreateLevels(r.Context(), levels)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, servicedef.LevelBatch{Items: created})
}

func (h *handlers) getLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	level, err := h.store.GetLevel(r.Context(), id)
	respondEntity(w, r, level, err)
}

func (b levelBody) toLevel() servicedef.Level {
	return servicedef.Level{BuildingID: b.BuildingID, Name: b.Name, Index: b.Index}
}

// pathID extracts the {id} path variable, answering 400 if it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return "", false
	}
	return id, true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	if err := validate.Struct(target); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, servicedef.ErrorInfo{Error: message})
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidReference):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "store error", "method", r.Method, "path", r.URL.Path, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondEntity(w http.ResponseWriter, r *http.Request, entity interface{}, err error) {
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

func respondCreated(w http.ResponseWriter, r *http.Request, entity interface{}, err error) {
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entity)
}

func respondList(w http.ResponseWriter, r *http.Request, list interface{}, err error) {
	respondEntity(w, r, list, err)
}

func respondDeleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
