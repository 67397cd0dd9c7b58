package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/cohorts/internal/index"
	"github.com/Aman-CERP/cohorts/internal/output"
)

func newOptionsCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the years, districts and subjects in the index",
		Long: `Read the index file and print the sorted distinct years, districts
and subjects, as a dashboard would offer them in its selectors.

Files without district words contribute an empty district, shown as (none).`,
		Args: validArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.loadIndex()
			if err != nil {
				return err
			}
			opts := index.CollectOptions(records)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(opts)
			}

			out := output.New(cmd.OutOrStdout())
			out.Header("Years")
			out.List(opts.Years)
			out.Newline()
			out.Header("Districts")
			out.List(opts.Districts)
			out.Newline()
			out.Header("Subjects")
			out.List(opts.Subjects)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
