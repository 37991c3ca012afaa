package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/fundsim/scenario"
	"github.com/spf13/cobra"
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Print the default scenario as YAML.",
		Long: `Scenario prints the built-in scenario. The output can be ` +
			`edited and passed back with run --scenario. With --check, the ` +
			`given file is validated instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			check, _ := cmd.Flags().GetString("check")
			if check != "" {
				s, err := scenario.LoadFile(check)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(),
					"%s: %d startups, %d advisors, %d scheduled events\n",
					s.FundName, len(s.Startups), len(s.Advisors),
					len(s.Schedule))

				return nil
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				return scenario.Default().Dump(cmd.OutOrStdout())
			}

			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()

			return scenario.Default().Dump(file)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout.")
	cmd.Flags().String("check", "", "Validate a scenario file.")

	return cmd
}
