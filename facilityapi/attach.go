package facilityapi

import (
	"encoding/json"
	"net/http"
)

// Attacher records a named blob against the current test step. *framework.Context is one.
type Attacher interface {
	Attach(name, contentType string, data []byte)
}

type responseAttachment struct {
	Status  int             `json:"status"`
	Headers http.Header     `json:"headers"`
	Body    json.RawMessage `json:"body,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// AttachResponse attaches a JSON document with the response's status, headers and body. If the
// body is not JSON the document says so instead of including it.
func AttachResponse(rec Attacher, resp *Response, name string) {
	a := responseAttachment{Status: resp.Status(), Headers: resp.Headers()}
	if json.Valid(resp.Body()) {
		a.Body = resp.Body()
	} else {
		a.Error = "Could not parse response body"
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return
	}
	rec.Attach(name, "application/json", data)
}
