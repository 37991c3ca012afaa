package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the options of a run. Every field can be set with a
// FUNDSIM_ environment variable and overridden by the matching flag.
type Config struct {
	Horizon     int    `env:"HORIZON" envDefault:"730"`
	Scenario    string `env:"SCENARIO"`
	Seed        int64  `env:"SEED" envDefault:"1"`
	DBPath      string `env:"DB"`
	CSVPrefix   string `env:"CSV"`
	Monitor     bool   `env:"MONITOR"`
	MonitorPort int    `env:"MONITOR_PORT"`
	OpenBrowser bool   `env:"OPEN"`
	LogEvents   bool   `env:"LOG_EVENTS"`
}

// LoadConfig loads the variables of envFile into the environment, if the
// file exists, and parses the configuration from the environment.
func LoadConfig(envFile string) (Config, error) {
	cfg := Config{}

	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	err := env.ParseWithOptions(&cfg, env.Options{Prefix: "FUNDSIM_"})
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// applyFlags overrides the configuration with the flags set on the command
// line.
func (c *Config) applyFlags(flags *pflag.FlagSet) {
	if flags.Changed("horizon") {
		c.Horizon, _ = flags.GetInt("horizon")
	}

	if flags.Changed("scenario") {
		c.Scenario, _ = flags.GetString("scenario")
	}

	if flags.Changed("seed") {
		c.Seed, _ = flags.GetInt64("seed")
	}

	if flags.Changed("db") {
		c.DBPath, _ = flags.GetString("db")
	}

	if flags.Changed("csv") {
		c.CSVPrefix, _ = flags.GetString("csv")
	}

	if flags.Changed("monitor") {
		c.Monitor, _ = flags.GetBool("monitor")
	}

	if flags.Changed("monitor-port") {
		c.MonitorPort, _ = flags.GetInt("monitor-port")
	}

	if flags.Changed("open") {
		c.OpenBrowser, _ = flags.GetBool("open")
	}

	if flags.Changed("log-events") {
		c.LogEvents, _ = flags.GetBool("log-events")
	}
}
