package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anstrom/gvmclient/internal/openvasd"
)

var (
	healthProbe  string
	vtsOIDsOnly  bool
	resultsFirst int
	resultsLast  int
)

var scannerCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Query the scanner daemon HTTP API",
}

var scannerHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe scanner health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		probe := openvasd.HealthProbe(healthProbe)
		switch probe {
		case openvasd.ProbeAlive, openvasd.ProbeReady, openvasd.ProbeStarted:
		default:
			return fmt.Errorf("unknown probe %q: want alive, ready or started", healthProbe)
		}
		return withScanner(cmd, func(ctx context.Context, c *openvasd.Client) error {
			feed, err := c.Health(ctx, probe)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if feed != "" {
				_, err = fmt.Fprintf(out, "%s: ok (feed %s)\n", probe, feed)
			} else {
				_, err = fmt.Fprintf(out, "%s: ok\n", probe)
			}
			return err
		})
	},
}

var scannerVTsCmd = &cobra.Command{
	Use:   "vts",
	Short: "List loaded vulnerability tests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withScanner(cmd, func(ctx context.Context, c *openvasd.Client) error {
			if vtsOIDsOnly {
				oids, err := c.GetVTOIDs(ctx)
				if err != nil {
					return err
				}
				return printLines(cmd, oids)
			}
			vts, err := c.GetVTs(ctx)
			if err != nil {
				return err
			}
			return printVTs(cmd.OutOrStdout(), vts)
		})
	},
}

var scannerScansCmd = &cobra.Command{
	Use:   "scans",
	Short: "List scan ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withScanner(cmd, func(ctx context.Context, c *openvasd.Client) error {
			ids, err := c.ListScans(ctx)
			if err != nil {
				return err
			}
			return printLines(cmd, ids)
		})
	},
}

var scannerStatusCmd = &cobra.Command{
	Use:   "status SCAN_ID",
	Short: "Show the progress of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScanner(cmd, func(ctx context.Context, c *openvasd.Client) error {
			status, err := c.GetScanStatus(ctx, args[0])
			if err != nil {
				return err
			}
			return printScanStatus(cmd.OutOrStdout(), args[0], status)
		})
	},
}

var scannerResultsCmd = &cobra.Command{
	Use:   "results SCAN_ID",
	Short: "Show the results of a scan",
	Example: `  gvmcli scanner results 6c59...
  gvmcli scanner results --first 100 --last 199 6c59...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var rng *openvasd.ResultRange
		if cmd.Flags().Changed("first") || cmd.Flags().Changed("last") {
			rng = &openvasd.ResultRange{First: resultsFirst, Last: resultsLast}
		}
		return withScanner(cmd, func(ctx context.Context, c *openvasd.Client) error {
			results, err := c.GetScanResults(ctx, args[0], rng)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		})
	},
}

func printLines(cmd *cobra.Command, lines []string) error {
	if outputFormat == formatJSON {
		return render(cmd.OutOrStdout(), lines, nil)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), l); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	scannerHealthCmd.Flags().StringVar(&healthProbe, "probe", string(openvasd.ProbeReady), "probe: alive, ready or started")
	scannerVTsCmd.Flags().BoolVar(&vtsOIDsOnly, "oids", false, "list OIDs only")
	scannerResultsCmd.Flags().IntVar(&resultsFirst, "first", 0, "index of the first result")
	scannerResultsCmd.Flags().IntVar(&resultsLast, "last", -1, "index of the last result, -1 for all remaining")

	scannerCmd.AddCommand(scannerHealthCmd, scannerVTsCmd, scannerScansCmd, scannerStatusCmd, scannerResultsCmd)
	rootCmd.AddCommand(scannerCmd)
}
