package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HealthResponse mirrors the detailed JSON health payload.
type HealthResponse struct {
	Healthy bool                      `json:"healthy"`
	Checks  map[string]map[string]any `json:"checks"`
}

// Health runs the daemon's detailed health checks via GET /healthz.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	req, err := http.NewRequest(http.MethodGet, baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		if jsonOutput {
			return printJSON(map[string]any{"healthy": false, "url": baseURL, "error": err.Error()})
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var h HealthResponse
	if err := json.Unmarshal(body, &h); err != nil {
		return fmt.Errorf("unexpected health response: %s", strings.TrimSpace(string(body)))
	}

	if jsonOutput {
		return printJSON(h)
	}

	fmt.Println()
	if h.Healthy {
		fmt.Printf("  %s  dishwatchd is healthy at %s\n", colorize(green, "HEALTHY"), colorize(dim, baseURL))
	} else {
		fmt.Printf("  %s  dishwatchd reports problems at %s\n", colorize(red, "UNHEALTHY"), colorize(dim, baseURL))
	}
	for name, check := range h.Checks {
		ok, _ := check["ok"].(bool)
		mark := colorize(green, "ok")
		detail := ""
		if !ok {
			mark = colorize(red, "fail")
			if msg, _ := check["error"].(string); msg != "" {
				detail = colorize(dim, "  "+msg)
			}
		}
		if age, found := check["age_s"].(float64); found {
			detail = colorize(dim, fmt.Sprintf("  age %ds", int(age)))
		}
		fmt.Printf("    %-12s %s%s\n", colorize(dim, name+":"), mark, detail)
	}
	fmt.Println()

	return nil
}
