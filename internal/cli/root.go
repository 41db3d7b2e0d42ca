// Package cli defines the cobra command tree for seniorsync-cli.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "seniorsync-cli",
		Short: "Offline daily health-check extraction and report submission",
		Long: `seniorsync-cli runs the daily health-check pipeline on a saved chat transcript.

'scan' prints the extracted answers, the coerced report and the concern
evaluation. 'submit' runs the same pipeline and posts the report (and an alert
when concerns exist) to a seniorsync backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log HTTP calls to stderr")

	newLogger := func() *zap.Logger {
		if !verbose {
			return zap.NewNop()
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return l
	}

	root.AddCommand(
		newScanCmd(),
		newSubmitCmd(newLogger),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "seniorsync-cli %s\n", version)
			},
		},
	)
	return root
}

// Execute runs the root command.
func Execute(v string) {
	version = v
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
