package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/index"
)

func newPathCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "path <year> <subject> [district words...]",
		Short: "Print the dataset file path for a year, district and subject",
		Long: `Print the path of the dataset file for the given fields.

When the index lists a matching record its filename is used as is, which
keeps districts whose words were separated by spaces intact. Otherwise the
conventional name is rebuilt by joining the fields with underscores.`,
		Example: `  cohorts path 2021 Math Springfield
  cohorts path 2022 Reading North Lake Unified
  cohorts path 2020 Science`,
		Args: validArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, subject := args[0], args[1]
			district := strings.Join(args[2:], " ")

			path, found := a.resolvePath(year, district, subject)
			if check && !found {
				return cerrors.ValidationError(
					fmt.Sprintf("no indexed file for year %q, district %q, subject %q", year, district, subject), nil).
					WithDetail("path", path)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Fail unless the index lists the file")

	return cmd
}

// resolvePath prefers the indexed filename and falls back to the
// conventional one. found reports whether the index had it.
func (a *app) resolvePath(year, district, subject string) (path string, found bool) {
	if records, err := a.loadIndex(); err == nil {
		if r, ok := index.Lookup(records, year, district, subject); ok {
			return filepath.Join(a.cfg.DataDir, r.Filename), true
		}
	}
	return index.PathFor(a.cfg.DataDir, year, district, subject), false
}
