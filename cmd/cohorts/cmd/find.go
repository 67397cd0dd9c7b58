package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/cohorts/internal/output"
	"github.com/Aman-CERP/cohorts/internal/search"
)

func newFindCmd(a *app) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "find <query...>",
		Short: "Search the index",
		Long: `Search the indexed records by year, district, subject or filename.

Terms match case-insensitively across all fields. Use field:term to target
one field and +term to require a term.`,
		Example: `  cohorts find springfield
  cohorts find +year:2022 +subject:reading
  cohorts find district:lake --json`,
		Args: validArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.loadIndex()
			if err != nil {
				return err
			}

			idx, err := search.New(cmd.Context(), records)
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			hits, err := idx.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(hits)
			}

			out := output.New(cmd.OutOrStdout())
			if len(hits) == 0 {
				out.Warning("No matching files")
				return nil
			}
			for _, h := range hits {
				out.Line(h.Record.Filename)
				out.Field("year", h.Record.Year, 8)
				out.Field("district", h.Record.District, 8)
				out.Field("subject", h.Record.Subject, 8)
			}
			out.Newline()
			out.Status("", fmt.Sprintf("%d of %d files", len(hits), len(records)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
