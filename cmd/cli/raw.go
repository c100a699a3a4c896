package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
	"github.com/spf13/cobra"

	"github.com/anstrom/gvmclient/internal/client"
	gvmerrors "github.com/anstrom/gvmclient/internal/errors"
	"github.com/anstrom/gvmclient/internal/protocol"
)

var (
	rawNoAuth bool
	rawPretty bool
)

var rawCmd = &cobra.Command{
	Use:   "raw [file|-]",
	Short: "Send a raw XML command",
	Long: `Send one XML command read from a file or standard input and print the
reply. The command exits with status 2 when the manager rejects the command.`,
	Example: `  echo '<get_tasks filter="rows=5"/>' | gvmcli raw
  gvmcli raw --no-auth request.xml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := "-"
		if len(args) == 1 {
			source = args[0]
		}
		req, err := readRequest(cmd.InOrStdin(), source)
		if err != nil {
			return err
		}

		return withManager(cmd, !rawNoAuth, func(env *environment, gmp *client.GMP) error {
			resp, err := gmp.Session().Do(env.ctx, req)
			if err != nil {
				return err
			}
			if err := writeResponse(cmd.OutOrStdout(), resp, rawPretty); err != nil {
				return err
			}
			_, err = resp.RaiseForStatus()
			return err
		})
	},
}

func init() {
	rawCmd.Flags().BoolVar(&rawNoAuth, "no-auth", false, "do not authenticate before sending")
	rawCmd.Flags().BoolVar(&rawPretty, "pretty", false, "indent the reply")
	rootCmd.AddCommand(rawCmd)
}

// readRequest reads one XML command from source, "-" meaning stdin.
func readRequest(stdin io.Reader, source string) (protocol.RawRequest, error) {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source) // #nosec G304 - user supplied request file
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	data = bytes.TrimSpace(data)
	req := protocol.RawRequest(data)
	if protocol.CommandName(req) == "" {
		return nil, gvmerrors.NewInvalidArgument("raw", "request", string(data))
	}
	return req, nil
}

func writeResponse(w io.Writer, resp *protocol.Response, pretty bool) error {
	if !pretty {
		_, err := fmt.Fprintln(w, resp.String())
		return err
	}

	root, err := resp.XML()
	if err != nil {
		return err
	}
	doc := etree.NewDocument()
	doc.SetRoot(root.Copy())
	doc.Indent(2)
	_, err = doc.WriteTo(w)
	return err
}
