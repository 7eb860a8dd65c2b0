package client

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewDeviceCommand constructs the `device` command group and subcommands.
func NewDeviceCommand(baseURL BaseURLFunc) *cobra.Command {
	devCmd := &cobra.Command{Use: "device", Short: "Raw flash device operations"}

	devCmd.AddCommand(
		newDeviceInfoCommand(baseURL),
		newDeviceReadCommand(baseURL),
		newDeviceDumpCommand(baseURL),
		newDeviceEraseCommand(baseURL),
		newDeviceEraseRangeCommand(baseURL),
		newDeviceEraseAllCommand(baseURL),
	)

	return devCmd
}

// newDeviceInfoCommand constructs the `device info` subcommand.
func newDeviceInfoCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show device geometry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out struct {
				Capacity  uint32 `json:"capacity"`
				BlockSize uint32 `json:"blockSize"`
				Blocks    uint32 `json:"blocks"`
				PageSize  uint32 `json:"pageSize"`
			}
			if err := getJSON(baseURL(), "/v1/device/info", &out); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "capacity:   %s (%d bytes)\n", humanize.IBytes(uint64(out.Capacity)), out.Capacity)
			_, _ = fmt.Fprintf(w, "block size: %s (%d bytes)\n", humanize.IBytes(uint64(out.BlockSize)), out.BlockSize)
			_, _ = fmt.Fprintf(w, "blocks:     %d\n", out.Blocks)
			_, _ = fmt.Fprintf(w, "page size:  %d bytes\n", out.PageSize)
			return nil
		},
	}
}

// newDeviceReadCommand constructs the `device read` subcommand.
func newDeviceReadCommand(baseURL BaseURLFunc) *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Read a byte range as hex",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addrStr, _ := cmd.Flags().GetString("addr")
			addr, err := parseAddr(addrStr)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetUint32("len")
			var out map[string]any
			path := fmt.Sprintf("/v1/device/read?addr=%d&len=%d", addr, n)
			if err := getJSON(baseURL(), path, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	readCmd.Flags().String("addr", "0", "Start address (decimal or 0x-prefixed)")
	readCmd.Flags().Uint32("len", 256, "Number of bytes to read")
	return readCmd
}

// newDeviceDumpCommand constructs the `device dump` subcommand.
func newDeviceDumpCommand(baseURL BaseURLFunc) *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Stream the whole device as a hex listing",
		Long: `Stream the whole device as a hex listing, 16 bytes per line.

The server pauses the producer for the duration of the walk so the
listing is a consistent view of the device, then restores the gate.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outPath, _ := cmd.Flags().GetString("output")
			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return streamTo(baseURL(), "/v1/device/dump", w)
		},
	}
	dumpCmd.Flags().StringP("output", "o", "", "Write the listing to a file instead of stdout")
	return dumpCmd
}

// newDeviceEraseCommand constructs the `device erase` subcommand.
func newDeviceEraseCommand(baseURL BaseURLFunc) *cobra.Command {
	eraseCmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase the block containing an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addrStr, _ := cmd.Flags().GetString("addr")
			addr, err := parseAddr(addrStr)
			if err != nil {
				return err
			}
			var out map[string]any
			if err := postJSON(baseURL(), "/v1/device/erase", map[string]any{"addr": addr}, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	eraseCmd.Flags().String("addr", "0", "Address inside the block to erase")
	_ = eraseCmd.MarkFlagRequired("addr")
	return eraseCmd
}

// newDeviceEraseRangeCommand constructs the `device erase-range` subcommand.
func newDeviceEraseRangeCommand(baseURL BaseURLFunc) *cobra.Command {
	rangeCmd := &cobra.Command{
		Use:   "erase-range",
		Short: "Erase every block overlapping an address range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startStr, _ := cmd.Flags().GetString("start")
			endStr, _ := cmd.Flags().GetString("end")
			start, err := parseAddr(startStr)
			if err != nil {
				return err
			}
			end, err := parseAddr(endStr)
			if err != nil {
				return err
			}
			var out map[string]any
			body := map[string]any{"start": start, "end": end}
			if err := postJSON(baseURL(), "/v1/device/erase-range", body, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	rangeCmd.Flags().String("start", "0", "First address of the range")
	rangeCmd.Flags().String("end", "0", "Last address of the range, inclusive")
	_ = rangeCmd.MarkFlagRequired("start")
	_ = rangeCmd.MarkFlagRequired("end")
	return rangeCmd
}

// newDeviceEraseAllCommand constructs the `device erase-all` subcommand.
func newDeviceEraseAllCommand(baseURL BaseURLFunc) *cobra.Command {
	allCmd := &cobra.Command{
		Use:   "erase-all",
		Short: "Erase the entire device (requires --confirm)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if !confirm {
				return fmt.Errorf("refusing to erase the whole device without --confirm")
			}
			if err := postJSON(baseURL(), "/v1/device/erase-all", nil, nil); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
	allCmd.Flags().Bool("confirm", false, "Acknowledge that every block will be erased")
	return allCmd
}
