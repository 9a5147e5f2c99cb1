package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			displayAppname(w, "waterctl")
			fmt.Fprintf(w, "waterctl %s\n", Version)
			fmt.Fprintf(w, "  commit: %s\n", Commit)
			fmt.Fprintf(w, "  built:  %s\n", BuildDate)
		},
	}
}
