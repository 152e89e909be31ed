package framework

import (
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const statusPollInterval = time.Millisecond * 100

// TestHarness holds what the harness learned about the service under test before running
// any tests.
type TestHarness struct {
	serviceBaseURL string
	serviceInfo    ldvalue.Value
}

// ServiceStatusParams describes how to find out whether the service under test is ready.
type ServiceStatusParams struct {
	BaseURL string
	// HealthPath must answer 200 once the service is ready.
	HealthPath string
	// InfoPath, if set, is queried once for descriptive JSON metadata.
	InfoPath string
	Timeout  time.Duration
}

// NewTestHarness polls the service's health resource until it responds with a 200 status or
// the timeout elapses, then reads the service's informational resource. Each unsuccessful
// health query is reported to debugLogger.
func NewTestHarness(
	params ServiceStatusParams,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	h := &TestHarness{serviceBaseURL: params.BaseURL}

	client := resty.New().SetBaseURL(params.BaseURL).SetTimeout(params.Timeout)
	if err := awaitServiceHealthy(client, params.HealthPath, params.Timeout, startupOutput, debugLogger); err != nil {
		return nil, err
	}
	if params.InfoPath != "" {
		info, err := queryServiceInfo(client, params.InfoPath, startupOutput)
		if err != nil {
			return nil, err
		}
		h.serviceInfo = info
	}
	return h, nil
}

func (h *TestHarness) ServiceBaseURL() string {
	return h.serviceBaseURL
}

// ServiceInfo returns the JSON metadata reported by the service, or a null value if there was none.
func (h *TestHarness) ServiceInfo() ldvalue.Value {
	return h.serviceInfo
}

func awaitServiceHealthy(client *resty.Client, path string, timeout time.Duration, output io.Writer, logger Logger) error {
	fmt.Fprintf(output, "Connecting to service at %s", client.BaseURL)

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		fmt.Fprintf(output, ".")
		resp, err := client.R().Get(path)
		if err == nil && resp.StatusCode() == 200 {
			fmt.Fprintln(output)
			return nil
		}
		if err != nil {
			logger.Printf("health check attempt %d failed: %s", attempt, err)
		} else {
			logger.Printf("health check attempt %d returned status %d", attempt, resp.StatusCode())
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			if err == nil {
				return fmt.Errorf("service health check returned status code %d", resp.StatusCode())
			}
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(statusPollInterval)
	}
}

func queryServiceInfo(client *resty.Client, path string, output io.Writer) (ldvalue.Value, error) {
	resp, err := client.R().Get(path)
	if err != nil {
		return ldvalue.Null(), err
	}
	if resp.StatusCode() != 200 {
		return ldvalue.Null(), fmt.Errorf("service returned status code %d for %s", resp.StatusCode(), path)
	}
	if len(resp.Body()) == 0 {
		fmt.Fprintf(output, "Status query successful, but service provided no metadata\n")
		return ldvalue.Null(), nil
	}
	info := ldvalue.Parse(resp.Body())
	if info.IsNull() {
		return ldvalue.Null(), fmt.Errorf("malformed status response from service: %s", resp.String())
	}
	fmt.Fprintf(output, "Status query returned metadata: %s\n", info.JSONString())
	return info, nil
}
