package apitests

import (
	"context"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pointr-qa/facility-contract-tests/datafactory"
	"github.com/pointr-qa/facility-contract-tests/facilityapi"
	"github.com/pointr-qa/facility-contract-tests/framework"
	"github.com/pointr-qa/facility-contract-tests/reporting"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

// SuiteParams describes the API under test and how the suite talks to it.
type SuiteParams struct {
	BaseURL string
	// Data generates request payloads. It is shared by every test in the run.
	Data           *datafactory.Generator
	RequestTimeout time.Duration
	// Console receives the StepLogger's progress lines; nil discards them.
	Console io.Writer
	// DebugHTTP dumps every request and response into the test's debug output.
	DebugHTTP bool
}

type environment struct {
	params SuiteParams
}

// T is the test context used by the API scenarios. It implements require.TestingT, and every
// test gets its own API client whose calls are recorded as steps of that test.
type T struct {
	context *framework.Context
	env     *environment
	api     facilityapi.Client
	log     *reporting.StepLogger
}

func newT(c *framework.Context, env *environment) *T {
	t := &T{context: c, env: env}
	t.log = reporting.NewStepLogger(t, env.params.Console)

	options := []facilityapi.Option{facilityapi.WithObserver(t.log)}
	if env.params.RequestTimeout > 0 {
		options = append(options, facilityapi.WithTimeout(env.params.RequestTimeout))
	}
	if env.params.DebugHTTP {
		if logger, ok := c.DebugLogger().(resty.Logger); ok {
			options = append(options, facilityapi.WithDebugLogger(logger))
		}
	}
	t.api = facilityapi.NewClient(env.params.BaseURL, options...)
	return t
}

func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newT(c, t.env))
	})
}

func (t *T) ID() framework.TestID { return t.context.ID() }

// API is the client for the service under test.
func (t *T) API() facilityapi.Client { return t.api }

func (t *T) Data() *datafactory.Generator { return t.env.params.Data }

// Log reports steps, API calls and metadata for this test.
func (t *T) Log() *reporting.StepLogger { return t.log }

// Ctx is the context for requests made by this test.
func (t *T) Ctx() context.Context { return context.Background() }

func (t *T) Errorf(format string, args ...interface{}) { t.context.Errorf(format, args...) }

func (t *T) FailNow() { t.context.FailNow() }

func (t *T) Failed() bool { return t.context.Failed() }

func (t *T) Skip() { t.context.Skip() }

func (t *T) SkipWithReason(reason string) { t.context.SkipWithReason(reason) }

func (t *T) Debug(message string, args ...interface{}) { t.context.Debug(message, args...) }

func (t *T) Defer(fn func()) { t.context.Defer(fn) }

func (t *T) Step(name string, action func()) { t.context.Step(name, action) }

func (t *T) Attach(name, contentType string, data []byte) { t.context.Attach(name, contentType, data) }

func (t *T) Label(name, value string) { t.context.Label(name, value) }

func (t *T) Link(name, url, linkType string) { t.context.Link(name, url, linkType) }

func (t *T) Describe(description string) { t.context.Describe(description) }

// CreateSite creates a site and deletes it again when the test ends.
func (t *T) CreateSite(req servicedef.CreateSiteRequest) string {
	id := facilityapi.CreateSiteAndGetID(t.Ctx(), t, t.api, req)
	t.Defer(func() { facilityapi.CleanupSite(t.Ctx(), t.api, id) })
	return id
}

// CreateBuilding creates a building and deletes it again when the test ends. Since deferred
// functions run in reverse, a building is always removed before the site it belongs to.
func (t *T) CreateBuilding(req servicedef.CreateBuildingRequest) string {
	id := facilityapi.CreateBuildingAndGetID(t.Ctx(), t, t.api, req)
	t.Defer(func() { facilityapi.CleanupBuilding(t.Ctx(), t.api, id) })
	return id
}

// CreateSiteAndBuilding sets up the parents that level tests need.
func (t *T) CreateSiteAndBuilding() (siteID, buildingID string) {
	siteID = t.CreateSite(t.Data().Site(servicedef.CreateSiteRequest{}))
	buildingID = t.CreateBuilding(t.Data().Building(siteID, servicedef.CreateBuildingRequest{}))
	return siteID, buildingID
}

func (t *T) metadata(feature, story, severity string, tags ...string) {
	t.log.SetTestMetadata(reporting.TestMetadata{
		Epic:     "API Testing",
		Feature:  feature,
		Story:    story,
		Severity: severity,
		Tags:     append([]string{"api"}, tags...),
	})
}
