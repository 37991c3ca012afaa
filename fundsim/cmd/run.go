package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/fundsim/datarecording"
	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/monitoring"
	"github.com/sarchlab/fundsim/scenario"
	"github.com/sarchlab/fundsim/sim"
	"github.com/sarchlab/fundsim/simulation"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and print a summary of the results.",
		Long: `Run simulates the fund day by day. The default scenario is used ` +
			`unless --scenario names a YAML file. Every flag can also be set ` +
			`with a FUNDSIM_ environment variable, for example FUNDSIM_HORIZON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")

			cfg, err := LoadConfig(envFile)
			if err != nil {
				return err
			}

			cfg.applyFlags(cmd.Flags())

			if cfg.DBPath != "" {
				sim.UseGlobalIDGenerator()
			}

			return runSimulation(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.Int("horizon", simulation.DefaultHorizon, "Number of days to simulate.")
	flags.String("scenario", "", "YAML scenario file. Uses the default scenario if empty.")
	flags.Int64("seed", 1, "Seed of the performance multipliers.")
	flags.String("db", "", "Record the history and the events into <db>.sqlite3.")
	flags.String("csv", "", "Write the history into <csv>_*.csv files.")
	flags.Bool("monitor", false, "Serve the progress and the results over HTTP.")
	flags.Int("monitor-port", 0, "Port of the monitoring server. Random if unset.")
	flags.Bool("open", false, "Open the monitoring server in a browser.")
	flags.Bool("log-events", false, "Print every simulation event to stderr.")

	return cmd
}

func loadScenario(path string) (scenario.Scenario, error) {
	if path == "" {
		return scenario.Default(), nil
	}

	return scenario.LoadFile(path)
}

func runSimulation(ctx context.Context, out io.Writer, cfg Config) error {
	if cfg.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", cfg.Horizon)
	}

	sc, err := loadScenario(cfg.Scenario)
	if err != nil {
		return err
	}

	b := simulation.MakeBuilder().
		WithHorizon(cfg.Horizon).
		WithScenario(sc).
		WithSeed(cfg.Seed)

	if cfg.LogEvents {
		b = b.WithEventLogger(log.New(os.Stderr, "", 0))
	}

	if cfg.DBPath != "" {
		recorder, err := datarecording.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer recorder.Close()

		sink, err := history.NewDBWriter(recorder)
		if err != nil {
			return err
		}

		b = b.WithSink(sink).WithHook(sink)
	}

	if cfg.CSVPrefix != "" {
		w := history.NewCSVWriter(cfg.CSVPrefix)
		if err := w.Init(); err != nil {
			return err
		}
		defer w.Close()

		b = b.WithSink(w)
	}

	var (
		monitor *monitoring.Monitor
		bar     *monitoring.ProgressBar
	)

	if cfg.Monitor {
		monitor = monitoring.NewMonitor()
		if cfg.MonitorPort != 0 {
			monitor.WithPortNumber(cfg.MonitorPort)
		}

		bar = monitor.CreateProgressBar("Days", uint64(cfg.Horizon))
		b = b.WithHook(monitoring.NewDayProgressHook(bar))
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if monitor != nil {
		monitor.RegisterEngine(s.Engine())
		monitor.RegisterBuffers(s.Buffers())

		url := monitor.StartServer()
		if cfg.OpenBrowser {
			if err := browser.OpenURL(url); err != nil {
				log.Printf("cannot open browser: %v", err)
			}
		}
	}

	result, err := s.Run()
	if err != nil {
		return err
	}

	printSummary(out, result)

	if monitor != nil {
		monitor.CompleteProgressBar(bar)
		waitForInterrupt(ctx)
	}

	return nil
}

func printSummary(out io.Writer, r *simulation.Result) {
	days := len(r.FundValue)

	fmt.Fprintf(out, "Final number of members: %d\n", len(r.Members))
	fmt.Fprintf(out, "Fund ownership history shape: (%d, %d)\n",
		len(r.FundOwnership), days)
	fmt.Fprintf(out, "Startup ownership history shape: (%d, %d)\n",
		len(r.StartupOwnership), days)
	fmt.Fprintf(out, "Fund share history shape: (%d, %d)\n",
		len(r.FundShare), days)
	fmt.Fprintf(out, "Fund value history shape: (%d,)\n", days)
}

func waitForInterrupt(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr,
		"Simulation finished. The monitoring server keeps running, "+
			"press Ctrl+C to exit.")

	<-ctx.Done()
}
