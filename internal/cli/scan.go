package cli

import (
	"encoding/json"
	"fmt"

	"seniorsync/internal/healthcheck"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var (
		file    string
		window  int
		summary string
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Extract health data from a transcript and evaluate concerns",
		Example: `  seniorsync-cli scan --file transcript.json
  seniorsync-cli scan --file transcript.json --window 20 --summary "Slept badly, worried about knee pain"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			turns, err := readTranscript(file)
			if err != nil {
				return err
			}
			res := runPipeline(turns, window, summary)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "transcript JSON file")
	cmd.Flags().IntVarP(&window, "window", "w", healthcheck.DefaultWindow, "number of most recent turns to scan")
	cmd.Flags().StringVarP(&summary, "summary", "s", "", "AI summary text used for the health concerns field")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
