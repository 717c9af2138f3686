package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snowddl/internal/config"
	"snowddl/internal/snowsql"
	"snowddl/internal/ui"
	"snowddl/pkg/models"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "snowddl",
		Short: "Batch-execute SQL DDL against Snowflake via the snowsql client",
		Long: `snowddl automates execution of SQL DDL files against Snowflake by
invoking the snowsql client as a subprocess. DDL files live under per-table
folders named <prefix>.<object>.sql, are batched per logical schema stage
(raw, stage, curated) and executed as one statement batch per stage.`,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.ini (default: ./config.ini, ~/.snowddl/config.ini)")
}

// loadConfig loads, validates and completes the configuration. Every
// command aborts here before any network action when something required
// is missing.
func loadConfig() (*models.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if err := config.ResolvePassword(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// testConnection round-trips a trivial query through the client before
// any DDL work starts.
func testConnection(runner snowsql.Runner, pred snowsql.FailurePredicate) bool {
	spinner := ui.NewSpinner("Testing Snowflake connection...")
	spinner.Start()

	result, err := runner.Run(snowsql.ConnectionTestQuery)
	if err != nil {
		spinner.Stop(false, "Connection failed")
		ui.ShowError(err)
		return false
	}
	if !result.OK(pred) {
		spinner.Stop(false, "Connection failed")
		if result.Stderr != "" {
			fmt.Println(ui.ColorDim(result.Stderr))
		}
		return false
	}

	spinner.Stop(true, "Connection successful")
	return true
}
