// Package cmd holds the waterctl commands.
package cmd

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile  string
	logLevel string
	output   string
}

func (o *options) json() bool {
	return o.output == "json"
}

// NewRootCmd builds the waterctl command tree. Each call returns a fresh tree
// with its own flag values.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "waterctl",
		Short: "waterctl - water resources administration client",
		Long: `waterctl talks to the water resources management API.

The login session is kept in the configured storage (a YAML state file by
default) so later commands reuse it until the refresh token expires.

Configuration:
  Config is loaded from waterctl.yaml in the current directory or
  $HOME/.waterctl/. Environment variables override config values with the
  WATERRES_ prefix, e.g. WATERRES_API_BASE_URL=http://host:8080/api`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(cmd.OutOrStdout(), "waterctl")
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./waterctl.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format (table, json)")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newTokenCmd(opts),
		newDepartmentsCmd(opts),
		newUsersCmd(opts),
		newDictCmd(opts),
		newThresholdsCmd(opts),
		newWarningsCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)
	return root
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
