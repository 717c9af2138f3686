package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"snowddl/internal/snowflake"
	"snowddl/internal/snowsql"
	"snowddl/internal/ui"
	apperrors "snowddl/pkg/errors"
)

var checkDirect bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity to Snowflake",
	Long: `Run a trivial query through the snowsql client to verify the
configured credentials end to end. With --direct the Snowflake Go driver
is used instead, which works even when the snowsql binary is missing.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkDirect, "direct", false, "connect with the Snowflake driver instead of snowsql")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ui.ShowError(err)
		return err
	}

	if checkDirect {
		probe := snowflake.NewProbe(snowflake.ConfigFromModel(cfg))
		spinner := ui.NewSpinner("Pinging Snowflake (direct driver)...")
		spinner.Start()
		if err := probe.Ping(context.Background()); err != nil {
			spinner.Stop(false, "Connection failed")
			ui.ShowError(err)
			return err
		}
		spinner.Stop(true, "Connection successful")
		return nil
	}

	runner := snowsql.NewClientRunner(snowsql.ConfigFromModel(cfg))
	result, err := runner.Run(snowsql.ConnectionTestQuery)
	if err != nil {
		ui.ShowError(err)
		return err
	}
	if result.Stdout != "" {
		fmt.Println(result.Stdout)
	}
	if !result.OK(snowsql.StrictStderrPredicate) {
		if result.Stderr != "" {
			fmt.Println(ui.ColorDim(result.Stderr))
		}
		err := apperrors.New(apperrors.ErrCodeConnectionFailed, "connection test failed").
			WithContext("exit_code", result.ExitCode)
		ui.ShowError(err)
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Connection successful (%s)", ui.FormatDuration(result.Duration)))
	return nil
}
