package ctl

import (
	"fmt"
	"strings"
)

// Connect asks the daemon to run a recovery attempt now, ignoring cooldown.
func Connect(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var result CommandResult
	if err := postJSON(baseURL, "/api/connect", nil, &result); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(result)
	}

	fmt.Println()
	if result.OK {
		fmt.Printf("  %s  %s\n", colorize(green, "STARTED"), result.Message)
		fmt.Println(colorize(dim, "  Follow progress with: dishctl watch --filter recovery"))
	} else {
		fmt.Printf("  %s  %s\n", colorize(red, "FAILED"), result.Error)
	}
	fmt.Println()
	return nil
}

// Disconnect tears down the active Wi-Fi connection.
func Disconnect(baseURL string, jsonOutput bool) error {
	return runCommand(strings.TrimRight(baseURL, "/"), "/api/disconnect", jsonOutput)
}

// Pause suspends the monitor loop.
func Pause(baseURL string, jsonOutput bool) error {
	return runCommand(strings.TrimRight(baseURL, "/"), "/api/pause", jsonOutput)
}

// Resume restarts a paused monitor loop.
func Resume(baseURL string, jsonOutput bool) error {
	return runCommand(strings.TrimRight(baseURL, "/"), "/api/resume", jsonOutput)
}
