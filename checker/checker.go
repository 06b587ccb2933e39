package checker

import (
	"context"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

type SystemStatus struct {
	Hostname     string `json:"hostname"`
	Uptime       uint64 `json:"uptime_seconds"`
	UptimeString string `json:"uptime_string"`
	APIURL       string `json:"api_url"`
	APIReachable bool   `json:"api_reachable"`
	APIStatus    int    `json:"api_status,omitempty"`
	APILatency   string `json:"api_latency,omitempty"`
	APIError     string `json:"api_error,omitempty"`
}

// probeTimeout bounds the upstream API check.
const probeTimeout = 3 * time.Second

// CheckSystem reports host uptime and whether the library API at apiURL
// answers. Any HTTP response counts as reachable.
func CheckSystem(ctx context.Context, apiURL string) (SystemStatus, error) {
	status := SystemStatus{APIURL: apiURL}

	// Check Uptime
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return status, err
	}
	status.Uptime = uptime
	status.UptimeString = (time.Duration(uptime) * time.Second).String()

	if info, err := host.InfoWithContext(ctx); err == nil {
		status.Hostname = info.Hostname
	}

	probeAPI(ctx, apiURL, &status)
	return status, nil
}

func probeAPI(ctx context.Context, apiURL string, status *SystemStatus) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		status.APIError = err.Error()
		return
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		status.APIError = err.Error()
		return
	}
	resp.Body.Close()

	status.APIReachable = true
	status.APIStatus = resp.StatusCode
	status.APILatency = time.Since(start).Round(time.Millisecond).String()
}
