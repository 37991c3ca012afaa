// Package cmd provides the command-line interface of fundsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fundsim",
	Short: "fundsim simulates the ownership of a venture fund over time.",
	Long: `fundsim simulates how the fund and startup ownership of the ` +
		`members of a venture fund evolve every day, driven by vesting ` +
		`and by startups failing, being acquired, or joining the fund.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File to load FUNDSIM_* variables from, if it exists.")

	rootCmd.AddCommand(newRunCmd(), newScenarioCmd(), newInspectCmd())
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Recorders registered with atexit are flushed before the
// program exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
