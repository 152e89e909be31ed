package servicedef

import "gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

// Site is the top of the facility hierarchy.
type Site struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Building belongs to a Site. Floors is not echoed back by every implementation of the API,
// so it is optional on the response side.
type Building struct {
	ID     string              `json:"id"`
	SiteID string              `json:"site_id"`
	Name   string              `json:"name"`
	Floors ldvalue.OptionalInt `json:"floors"`
}

// Level belongs to a Building. Index is the floor number and may be negative for basements.
type Level struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Name       string `json:"name"`
	Index      int    `json:"index"`
}

// LevelBatch is the envelope used for importing several levels in one request, and for the
// response to such a request.
type LevelBatch struct {
	Items []Level `json:"items"`
}

type EntityCounts struct {
	Sites     int `json:"sites"`
	Buildings int `json:"buildings"`
	Levels    int `json:"levels"`
}

// RootInfo is returned by GET /.
type RootInfo struct {
	Message string       `json:"message"`
	Counts  EntityCounts `json:"counts"`
}

// HealthInfo is returned by GET /health.
type HealthInfo struct {
	Status string `json:"status"`
}

// ErrorInfo is the body of every non-2xx response from the API.
type ErrorInfo struct {
	Error string `json:"error"`
}
