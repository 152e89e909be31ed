package servicedef

import "net/url"

const (
	PathRoot      = "/"
	PathHealth    = "/health"
	PathSites     = "/sites"
	PathBuildings = "/buildings"
	PathLevels    = "/levels"

	HealthStatusOK = "ok"
)

type CreateSiteRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// CreateBuildingRequest uses pointer semantics for Floors so that an unset value is omitted
// from the request body rather than sent as zero.
type CreateBuildingRequest struct {
	SiteID string `json:"site_id"`
	Name   string `json:"name"`
	Floors *int   `json:"floors,omitempty"`
}

type CreateLevelRequest struct {
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
	Index      int    `json:"index"`
}

type CreateLevelsRequest struct {
	Items []CreateLevelRequest `json:"items"`
}

type UpdateSiteRequest struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}

func SitePath(id string) string     { return PathSites + "/" + url.PathEscape(id) }
func BuildingPath(id string) string { return PathBuildings + "/" + url.PathEscape(id) }
func LevelPath(id string) string    { return PathLevels + "/" + url.PathEscape(id) }
