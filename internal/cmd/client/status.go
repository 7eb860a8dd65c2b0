package client

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand constructs the `status` command.
func NewStatusCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := getJSON(baseURL(), "/v1/status", &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
