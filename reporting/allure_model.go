package reporting

// These types mirror the Allure 2 results format: one <uuid>-result.json per test, one
// <uuid>-container.json per group of tests, and attachment files next to them.

type allureStatus string

const (
	statusPassed  allureStatus = "passed"
	statusFailed  allureStatus = "failed"
	statusSkipped allureStatus = "skipped"
)

const stageFinished = "finished"

type allureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type allureLink struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

type allureStatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

type allureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

type allureStep struct {
	Name          string              `json:"name"`
	Status        allureStatus        `json:"status"`
	StatusDetails allureStatusDetails `json:"statusDetails"`
	Stage         string              `json:"stage"`
	Steps         []*allureStep       `json:"steps"`
	Attachments   []allureAttachment  `json:"attachments"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
}

type allureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Status        allureStatus        `json:"status"`
	StatusDetails allureStatusDetails `json:"statusDetails"`
	Stage         string              `json:"stage"`
	Steps         []*allureStep       `json:"steps"`
	Attachments   []allureAttachment  `json:"attachments"`
	Labels        []allureLabel       `json:"labels"`
	Links         []allureLink        `json:"links"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
}

type allureContainer struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	Children []string `json:"children"`
	Start    int64    `json:"start"`
	Stop     int64    `json:"stop"`
}

// ExecutorInfo describes what ran the tests, for Allure's executor.json.
type ExecutorInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	BuildName string `json:"buildName,omitempty"`
	BuildURL  string `json:"buildUrl,omitempty"`
	ReportURL string `json:"reportUrl,omitempty"`
}
