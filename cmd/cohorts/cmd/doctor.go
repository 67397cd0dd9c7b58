package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/preflight"
)

func newDoctorCmd(a *app) *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor [dir]",
		Short: "Check that the data directory can be indexed",
		Long: `Run checks on the data directory before indexing.

Checks:
  - Directory exists and is a directory
  - Directory can be listed
  - Directory is writable
  - Free disk space (warning only)
  - Existing index file parses (warning only)

Exits non-zero when a required check fails.`,
		Example: `  cohorts doctor
  cohorts doctor ./exports --json`,
		Args: validArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.DataDir
			if len(args) == 1 {
				dir = args[0]
			}

			checker := preflight.New(
				preflight.WithVerbose(verbose),
				preflight.WithOutput(cmd.OutOrStdout()),
				preflight.WithOutputName(a.cfg.OutputName),
			)
			results := checker.RunAll(cmd.Context(), dir)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(doctorReport{
					Status: checker.SummaryStatus(results),
					Checks: results,
				}); err != nil {
					return err
				}
			} else {
				checker.PrintResults(results)
			}

			if checker.HasCriticalFailures(results) {
				return cerrors.ValidationError("data directory check failed", nil).
					WithDetail("dir", dir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// doctorReport is the --json output of doctor.
type doctorReport struct {
	Status string                  `json:"status"`
	Checks []preflight.CheckResult `json:"checks"`
}
