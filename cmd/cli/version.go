package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anstrom/gvmclient/internal/client"
)

var versionLocal bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show client and manager protocol versions",
	Long: `Print the gvmcli version and the protocol version reported by the
manager. The manager answers get_version without authentication.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gvmcli %s\n", getVersion())
		if versionLocal {
			return nil
		}
		return withManager(cmd, false, func(env *environment, gmp *client.GMP) error {
			v, err := gmp.GetVersion(env.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "manager protocol %s (%s)\n", v.Version, gmp.Session().Address())
			return nil
		})
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionLocal, "local", false, "only print the client version")
	rootCmd.AddCommand(versionCmd)
}
