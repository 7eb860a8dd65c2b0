package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogCommand constructs the `log` command group and subcommands.
func NewLogCommand(baseURL BaseURLFunc) *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Circular log operations"}

	logCmd.AddCommand(
		newLogAppendCommand(baseURL),
		newLogPositionCommand(baseURL),
		newLogSetPositionCommand(baseURL),
		newLogResetCommand(baseURL),
		newLogPauseCommand(baseURL),
		newLogResumeCommand(baseURL),
		newLogPausedCommand(baseURL),
		newLogRecoverCommand(baseURL),
	)

	return logCmd
}

// newLogAppendCommand constructs the `log append` subcommand.
func newLogAppendCommand(baseURL BaseURLFunc) *cobra.Command {
	appendCmd := &cobra.Command{
		Use:   "append",
		Short: "Append data at the write cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, _ := cmd.Flags().GetString("record")
			fields, _ := cmd.Flags().GetStringArray("field")
			if rec == "" && len(fields) == 0 {
				return fmt.Errorf("one of --record or --field is required")
			}
			body := map[string]any{}
			if len(fields) > 0 {
				body["fields"] = fields
			} else {
				body["record"] = rec
			}
			var out map[string]any
			if err := postJSON(baseURL(), "/v1/log/append", body, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	appendCmd.Flags().String("record", "", "Raw bytes to append, unframed")
	appendCmd.Flags().StringArray("field", nil, "Record field (repeatable); fields are framed as one fixed-width page")
	return appendCmd
}

// newLogPositionCommand constructs the `log position` subcommand.
func newLogPositionCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "position",
		Short: "Show the write cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := getJSON(baseURL(), "/v1/log/position", &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// newLogSetPositionCommand constructs the `log set-position` subcommand.
func newLogSetPositionCommand(baseURL BaseURLFunc) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set-position",
		Short: "Move the write cursor (aligned down to a block boundary)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addrStr, _ := cmd.Flags().GetString("addr")
			addr, err := parseAddr(addrStr)
			if err != nil {
				return err
			}
			var out map[string]any
			if err := postJSON(baseURL(), "/v1/log/position", map[string]any{"addr": addr}, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	setCmd.Flags().String("addr", "0", "Target address (decimal or 0x-prefixed)")
	_ = setCmd.MarkFlagRequired("addr")
	return setCmd
}

// newLogResetCommand constructs the `log reset` subcommand.
func newLogResetCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Move the write cursor to zero without erasing anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := postJSON(baseURL(), "/v1/log/reset", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// newLogPauseCommand constructs the `log pause` subcommand.
func newLogPauseCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Ask the producer to stop appending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := postJSON(baseURL(), "/v1/log/pause", nil, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "paused")
			return nil
		},
	}
}

// newLogResumeCommand constructs the `log resume` subcommand.
func newLogResumeCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Allow appends again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := postJSON(baseURL(), "/v1/log/resume", nil, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "resumed")
			return nil
		},
	}
}

// newLogPausedCommand constructs the `log paused` subcommand.
func newLogPausedCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "paused",
		Short: "Show the pause gate state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := getJSON(baseURL(), "/v1/log/paused", &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

// newLogRecoverCommand constructs the `log recover` subcommand.
func newLogRecoverCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Recover the write cursor by scanning the device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]any
			if err := postJSON(baseURL(), "/v1/log/recover", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
