package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"snowddl/internal/config"
	"snowddl/internal/drop"
	"snowddl/internal/report"
	"snowddl/internal/snowsql"
	"snowddl/internal/ui"
	apperrors "snowddl/pkg/errors"
)

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop tables and views from the configured target schema",
	Long: `Interactively drop objects from the schema named by the [drop] section
of config.ini. The existing objects are listed first and the operation
requires typing an exact confirmation phrase. Views are dropped before
tables; a failure on views does not block the table pass.`,
	RunE: runDrop,
}

func init() {
	rootCmd.AddCommand(dropCmd)
}

func runDrop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ui.ShowError(err)
		return err
	}
	if err := config.ValidateDrop(cfg); err != nil {
		ui.ShowError(err)
		return err
	}

	runner := snowsql.NewClientRunner(snowsql.ConfigFromModel(cfg))
	pred := snowsql.StrictStderrPredicate

	if !testConnection(runner, pred) {
		return apperrors.New(apperrors.ErrCodeConnectionFailed, "connection test failed")
	}

	orch := drop.New(runner, cfg.Connection.Database, cfg.Drop.TargetSchema)

	for {
		if err := dropOnce(orch); err != nil {
			ui.ShowError(err)
		}

		again, err := ui.Confirm("Drop more objects?", false)
		if err != nil || !again {
			return nil
		}
	}
}

// dropOnce runs a single listing / confirmation / drop cycle.
func dropOnce(orch *drop.Orchestrator) error {
	schemaName := orch.Schema()

	ui.ShowHeader(fmt.Sprintf("Schema %s", strings.ToUpper(schemaName)))
	for _, kind := range []drop.ObjectKind{drop.KindView, drop.KindTable} {
		names, err := orch.ListObjects(kind)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %d %s(s)\n", ui.ColorBold(strings.ToUpper(string(kind))+"S:"), len(names), strings.ToLower(string(kind)))
		for _, name := range names {
			fmt.Printf("    - %s\n", name)
		}
	}

	ui.ShowWarning(fmt.Sprintf("You are about to DROP objects from '%s'!", strings.ToUpper(schemaName)))

	gate := ui.NewDropConfirmation(schemaName)
	input, err := ui.Input(fmt.Sprintf("Type '%s' to confirm:", gate.Phrase), "", "The match is exact and case-sensitive")
	if err != nil {
		return err
	}
	if gate.Resolve(input) != ui.Confirmed {
		ui.ShowWarning("Drop operation cancelled")
		return nil
	}

	const (
		optionViews  = "Only views"
		optionTables = "Only tables"
		optionAll    = "All objects (views, then tables)"
	)
	choice, err := ui.Select("What would you like to drop?", []string{optionViews, optionTables, optionAll})
	if err != nil {
		return err
	}

	switch choice {
	case optionViews:
		report.PrintDropSummary(schemaName, orch.DropKind(drop.KindView))
	case optionTables:
		report.PrintDropSummary(schemaName, orch.DropKind(drop.KindTable))
	case optionAll:
		views, tables := orch.DropAll()
		if views.Err != nil {
			ui.ShowWarning(fmt.Sprintf("failed to drop views, continuing with tables: %v", views.Err))
		}
		report.PrintDropSummary(schemaName, views, tables)
	}

	ui.ShowSuccess("Drop operation complete")
	return nil
}
