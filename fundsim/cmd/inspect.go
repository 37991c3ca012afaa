package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sarchlab/fundsim/datarecording"
	"github.com/sarchlab/fundsim/history"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.sqlite3>",
		Short: "Print the ownership of one day of a recorded run.",
		Long: `Inspect reads a database written by run --db and prints the ` +
			`ownership of every member on one day. The last recorded day is ` +
			`used unless --day is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, _ := cmd.Flags().GetInt("day")

			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			return inspect(cmd.Context(), cmd.OutOrStdout(), reader, day)
		},
	}

	cmd.Flags().Int("day", -1, "Day to print. Defaults to the last day.")

	return cmd
}

func inspect(
	ctx context.Context,
	out io.Writer,
	reader datarecording.DataReader,
	day int,
) error {
	history.MapTables(reader)

	if day < 0 {
		last, err := lastDay(ctx, reader)
		if err != nil {
			return err
		}
		day = last
	}

	fundRows, _, err := reader.Query(ctx, history.FundTable,
		datarecording.QueryParams{Where: "Day = ?", Args: []any{day}})
	if err != nil {
		return err
	}

	if len(fundRows) == 0 {
		return fmt.Errorf("day %d was not recorded", day)
	}

	fundRow := fundRows[0].(*history.FundEntry)

	members, _, err := reader.Query(ctx, history.OwnershipTable,
		datarecording.QueryParams{
			Where:   "Day = ?",
			Args:    []any{day},
			OrderBy: "MemberID",
		})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Day %d (%s), fund value %.0f\n",
		fundRow.Day, fundRow.Date, fundRow.FundValue)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tRole\tFund\tStartups")

	for _, r := range members {
		m := r.(*history.OwnershipEntry)
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f%%\t%.4f%%\n",
			m.MemberID, m.Name, m.Role,
			m.FundOwnership*100, m.StartupOwnership*100)
	}

	return w.Flush()
}

func lastDay(ctx context.Context, reader datarecording.DataReader) (int, error) {
	rows, _, err := reader.Query(ctx, history.FundTable,
		datarecording.QueryParams{OrderBy: "Day DESC", Limit: 1})
	if err != nil {
		return 0, err
	}

	if len(rows) == 0 {
		return 0, fmt.Errorf("no day recorded")
	}

	return rows[0].(*history.FundEntry).Day, nil
}
