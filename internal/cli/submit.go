package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"seniorsync/internal/alert"
	"seniorsync/internal/backend"
	"seniorsync/internal/domain"
	"seniorsync/internal/healthcheck"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func defaultBackend() string {
	if v := os.Getenv("SENIORSYNC_BACKEND"); v != "" {
		return v
	}
	return "http://localhost:8080/api"
}

func newSubmitCmd(newLogger func() *zap.Logger) *cobra.Command {
	var (
		file       string
		backendURL string
		userID     string
		date       string
		summary    string
		window     int
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Run the health-check pipeline and submit the report to a backend",
		Example: `  seniorsync-cli submit --file transcript.json --user 42
  seniorsync-cli submit --file transcript.json --user 42 --backend http://care.example/api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			turns, err := readTranscript(file)
			if err != nil {
				return err
			}
			res := runPipeline(turns, window, summary)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			client := backend.NewClient(backendURL, timeout, newLogger())

			out := cmd.OutOrStdout()
			if res.Evaluation.HasConcerns() {
				healthData := make(map[string]any, len(res.Evaluation.Details))
				for k, v := range res.Evaluation.Details {
					healthData[k] = v
				}
				err := client.SendAlert(ctx, alert.Alert{
					AlertType:  alert.TypeHealthConcern,
					Message:    res.Evaluation.AlertMessage(),
					HealthData: healthData,
					UserID:     userID,
				})
				if err != nil {
					// 告警失败不阻止提交日报
					fmt.Fprintf(cmd.ErrOrStderr(), "alert failed: %v\n", err)
				} else {
					fmt.Fprintf(out, "alert sent: %s\n", res.Evaluation.AlertMessage())
				}
			}

			result, err := client.SendReport(ctx, domain.ReportSubmission{
				UserID:       domain.UserID(userID),
				HealthReport: res.Report,
				Date:         date,
				Summary:      summary,
				Concerns:     res.Evaluation.Concerns,
			})
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("report rejected: %s", result.Message)
			}
			fmt.Fprintf(out, "report saved: %s (%s)\n", result.ReportID, result.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "transcript JSON file")
	cmd.Flags().StringVar(&backendURL, "backend", defaultBackend(), "seniorsync API base URL (env SENIORSYNC_BACKEND)")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id the report belongs to")
	cmd.Flags().StringVar(&date, "date", "", "report date YYYY-MM-DD (default: today on the server)")
	cmd.Flags().StringVarP(&summary, "summary", "s", "", "AI summary text")
	cmd.Flags().IntVarP(&window, "window", "w", healthcheck.DefaultWindow, "number of most recent turns to scan")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
