// Package ctl implements the client-side commands for dishctl. It talks
// to a running dishwatchd over HTTP and WebSocket and renders the results
// to the terminal.
package ctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// getJSON sends a GET request and decodes the JSON response into dst.
func getJSON(baseURL, path string, dst any) error {
	url := strings.TrimRight(baseURL, "/") + path
	resp, err := httpClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(b))
		if msg != "" {
			return fmt.Errorf("HTTP %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("HTTP %s from %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// postJSON sends a POST request with an optional JSON body and decodes the
// response.
func postJSON(baseURL, path string, body, dst any) error {
	url := strings.TrimRight(baseURL, "/") + path
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}
	resp, err := httpClient.Post(url, "application/json", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(b))
		if msg != "" {
			return fmt.Errorf("HTTP %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("HTTP %s from %s", resp.Status, path)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// printJSON prints v as indented JSON to stdout.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

// CommandResult mirrors the daemon's control-command reply.
type CommandResult struct {
	OK              bool   `json:"ok"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
	ElementsUpdated int    `json:"elements_updated,omitempty"`
}

// runCommand posts to a control endpoint and prints the outcome.
func runCommand(baseURL, path string, jsonOut bool) error {
	var result CommandResult
	if err := postJSON(baseURL, path, nil, &result); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(result)
	}
	if !result.OK {
		return fmt.Errorf("%s", result.Error)
	}
	fmt.Println(result.Message)
	return nil
}
