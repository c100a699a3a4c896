package cli

import (
	"github.com/spf13/cobra"

	"github.com/anstrom/gvmclient/internal/client"
	"github.com/anstrom/gvmclient/internal/commands"
)

var (
	reportFilter string
	reportFormat string
	reportPretty bool
	reportAll    bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect scan reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withManager(cmd, true, func(env *environment, gmp *client.GMP) error {
			reports, err := gmp.GetReports(env.ctx, commands.GetReportsArgs{Filter: reportFilter})
			if err != nil {
				return err
			}
			return printReports(cmd.OutOrStdout(), reports)
		})
	},
}

var reportsGetCmd = &cobra.Command{
	Use:   "get REPORT_ID",
	Short: "Print one report",
	Long: `Print the get_reports reply for one report. The report body is the
manager's own XML; use --format-id to request another report format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, true, func(env *environment, gmp *client.GMP) error {
			resp, err := gmp.GetReport(env.ctx, commands.GetReportArgs{
				ReportID:         args[0],
				FormatID:         reportFormat,
				IgnorePagination: reportAll,
			})
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), resp, reportPretty)
		})
	},
}

func init() {
	reportsListCmd.Flags().StringVar(&reportFilter, "filter", "", "filter expression")
	reportsGetCmd.Flags().StringVar(&reportFormat, "format-id", "", "report format id")
	reportsGetCmd.Flags().BoolVar(&reportAll, "all", false, "return all results instead of the first page")
	reportsGetCmd.Flags().BoolVar(&reportPretty, "pretty", false, "indent the reply")

	reportsCmd.AddCommand(reportsListCmd, reportsGetCmd)
	rootCmd.AddCommand(reportsCmd)
}
