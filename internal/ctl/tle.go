package ctl

import (
	"fmt"
	"strings"
	"time"
)

// TLEInfo shows orbital element cache status and freshness.
func TLEInfo(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp struct {
		SourceURL    string `json:"source_url"`
		ElementCount int    `json:"element_count"`
		MaxAgeS      int    `json:"max_age_s"`
		Fetched      bool   `json:"fetched"`
		AgeS         int    `json:"age_s"`
		RefreshedAt  string `json:"refreshed_at"`
	}
	if err := getJSON(baseURL, "/api/tle-info", &resp); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  ELEMENT CACHE INFO"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 50)))

	if !resp.Fetched {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Status:"), colorize(red, "NEVER FETCHED"))
		fmt.Printf("  %-12s %s\n", colorize(dim, "Source:"), resp.SourceURL)
		fmt.Println()
		return nil
	}

	fresh := resp.AgeS <= resp.MaxAgeS
	if fresh {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Status:"), colorize(green, "FRESH"))
	} else {
		fmt.Printf("  %-12s %s\n", colorize(dim, "Status:"), colorize(yellow, "STALE"))
	}

	fmt.Printf("  %-12s %d\n", colorize(dim, "Elements:"), resp.ElementCount)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Age:"), formatDuration(time.Duration(resp.AgeS)*time.Second))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Refreshed:"), resp.RefreshedAt)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Max age:"), formatDuration(time.Duration(resp.MaxAgeS)*time.Second))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Source:"), resp.SourceURL)
	fmt.Println()
	return nil
}

// TLERefresh forces an immediate element set download.
func TLERefresh(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var result CommandResult
	if err := postJSON(baseURL, "/api/tle-refresh", nil, &result); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Println()
	if result.OK {
		fmt.Printf("  %s  %s\n", colorize(green, "REFRESHED"), result.Message)
		if result.ElementsUpdated > 0 {
			fmt.Printf("  %s\n", colorize(dim, fmt.Sprintf("%d element sets loaded", result.ElementsUpdated)))
		}
	} else {
		fmt.Printf("  %s  %s\n", colorize(red, "FAILED"), result.Error)
	}
	fmt.Println()

	return nil
}
