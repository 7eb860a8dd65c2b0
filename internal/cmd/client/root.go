// Package client contains Cobra CLI commands for ringlog.
package client

import (
	"os"

	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// DefaultBaseURL reads the server address from RINGLOG_HTTP or falls back
// to the local default.
func DefaultBaseURL() string {
	if v := os.Getenv("RINGLOG_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// NewRoot constructs a root Cobra command for the ringlog client.
// It registers the log, device, and status command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	if baseURL == nil {
		baseURL = DefaultBaseURL
	}
	root := &cobra.Command{
		Use:   "ringlog",
		Short: "ringlog client commands",
	}
	root.AddCommand(NewLogCommand(baseURL))
	root.AddCommand(NewDeviceCommand(baseURL))
	root.AddCommand(NewStatusCommand(baseURL))
	return root
}
