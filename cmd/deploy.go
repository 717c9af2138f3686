package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"snowddl/internal/ddl"
	"snowddl/internal/report"
	"snowddl/internal/schema"
	"snowddl/internal/snowsql"
	"snowddl/internal/ui"
	apperrors "snowddl/pkg/errors"
	"snowddl/pkg/models"
)

var (
	deployStage       string
	deployInteractive bool
	deployDryRun      bool
	deployPlan        bool
	deployNoValidate  bool
	deployNoRewrite   bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Batch-execute the DDL files per schema stage",
	Long: `Deploy DDL files to Snowflake, one batch per logical schema stage.

Stages run in raw -> stage -> curated order; within a stage, files run in
lexicographic (folder, filename) order. That order does not resolve
dependencies between files of the same stage.

By default files are named <token>.<object>.sql (token in raw/stage/curated)
and "<token>." qualifiers in the SQL are rewritten to the configured schema
names. With --no-rewrite, files are expected to be named and written against
the actual schema names and are executed as-is.`,
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVarP(&deployStage, "stage", "s", "", "run a single stage (raw, stage or curated)")
	deployCmd.Flags().BoolVarP(&deployInteractive, "interactive", "i", false, "pick stages from a menu, looping until exit")
	deployCmd.Flags().BoolVarP(&deployDryRun, "dry-run", "d", false, "build and report batches without executing")
	deployCmd.Flags().BoolVar(&deployPlan, "plan", false, "print the built batches as YAML and exit")
	deployCmd.Flags().BoolVar(&deployNoValidate, "no-validate", false, "skip the filename-prefix / CREATE-schema check")
	deployCmd.Flags().BoolVar(&deployNoRewrite, "no-rewrite", false, "execute files as-is, file prefixes are actual schema names")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ui.ShowError(err)
		return err
	}

	resolver := schema.NewResolver(cfg.Schemas)
	runner := snowsql.NewClientRunner(snowsql.ConfigFromModel(cfg))
	pred := snowsql.StrictStderrPredicate

	offline := deployDryRun || deployPlan
	if !offline && !testConnection(runner, pred) {
		return apperrors.New(apperrors.ErrCodeConnectionFailed, "connection test failed")
	}

	stages, err := selectStages(resolver)
	if err != nil {
		ui.ShowError(err)
		return err
	}

	folders, err := ddl.TableFolders(cfg.DDL.Root)
	if err != nil {
		ui.ShowError(err)
		return err
	}
	ui.ShowInfo(fmt.Sprintf("Found %d table folder(s) under %s", len(folders), cfg.DDL.Root))

	if deployPlan {
		return printPlan(cfg, resolver, stages)
	}

	if deployInteractive {
		return deployLoop(cfg, resolver, runner, pred)
	}

	var results []report.StageResult
	for _, stage := range stages {
		result, err := executeStage(cfg, resolver, runner, pred, stage)
		results = append(results, result)
		if err != nil {
			// Strict sequential order: later stages are not attempted.
			report.PrintDeploySummary(results)
			ui.ShowError(err)
			return err
		}
	}

	report.PrintDeploySummary(results)
	ui.ShowSuccess("DDL execution complete")
	return nil
}

// selectStages resolves the --stage flag against the known tokens.
func selectStages(resolver *schema.Resolver) ([]schema.Stage, error) {
	if deployStage == "" {
		return resolver.Stages(), nil
	}
	actual, ok := resolver.Actual(deployStage)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeUserInput,
			fmt.Sprintf("unknown stage '%s'", deployStage)).
			WithSuggestions("Valid stages: raw, stage, curated")
	}
	return []schema.Stage{{Token: deployStage, Schema: actual}}, nil
}

// stagePrefix picks the filename prefix convention for a stage: the
// logical token in rewrite mode, the actual schema name otherwise.
func stagePrefix(stage schema.Stage) string {
	if deployNoRewrite {
		return stage.Schema
	}
	return stage.Token
}

// buildStageBatch discovers, validates and assembles the batch for one
// stage. A nil batch with nil error means nothing matched the stage.
func buildStageBatch(cfg *models.Config, resolver *schema.Resolver, stage schema.Stage) (*ddl.Batch, error) {
	prefix := stagePrefix(stage)

	files, err := ddl.Discover(cfg.DDL.Root, prefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if !deployNoValidate {
		results, ok := ddl.ValidateStage(files)
		for _, r := range results {
			if !r.OK {
				ui.ShowError(apperrors.SchemaMismatchError(r.File.Name, r.File.Prefix, r.DetectedSchema))
			} else if r.DetectedSchema == ddl.SchemaUnknown {
				ui.ShowWarning(fmt.Sprintf("could not detect a schema in %s", r.File.Name))
			}
		}
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeSchemaMismatch,
				fmt.Sprintf("stopping: schema mismatches in stage '%s', no statements were sent", stage.Token))
		}
		ui.ShowInfo(fmt.Sprintf("Validation passed: %d file(s) match prefix '%s'", len(files), prefix))
	}

	var rewrite func(string) string
	if !deployNoRewrite {
		rewrite = resolver.Rewrite
	}

	batch := ddl.Build(stage.Token, files, rewrite)
	return &batch, nil
}

// executeStage runs one stage batch end to end and reports its outcome.
func executeStage(cfg *models.Config, resolver *schema.Resolver, runner snowsql.Runner, pred snowsql.FailurePredicate, stage schema.Stage) (report.StageResult, error) {
	start := time.Now()
	stageResult := report.StageResult{Stage: stage.Token, Schema: stage.Schema}

	ui.ShowHeader(fmt.Sprintf("Stage %s -> %s", stage.Token, stage.Schema))

	batch, err := buildStageBatch(cfg, resolver, stage)
	if err != nil {
		stageResult.Duration = time.Since(start)
		return stageResult, err
	}
	if batch == nil || batch.Count == 0 {
		ui.ShowWarning(fmt.Sprintf("no SQL files found with prefix '%s'", stagePrefix(stage)))
		stageResult.Success = true
		stageResult.Duration = time.Since(start)
		return stageResult, nil
	}

	stageResult.Files = batch.Count
	report.PrintBatchFiles(*batch)

	if deployDryRun {
		ui.ShowInfo(fmt.Sprintf("dry-run: would execute %d statement(s), %d bytes of SQL", batch.Count, len(batch.Query)))
		stageResult.Success = true
		stageResult.Duration = time.Since(start)
		return stageResult, nil
	}

	spinner := ui.NewSpinner(fmt.Sprintf("Executing batch for %s...", stage.Schema))
	spinner.Start()
	result, err := runner.Run(batch.Query)
	stageResult.Duration = time.Since(start)

	if err != nil {
		spinner.Stop(false, "Batch execution failed")
		return stageResult, apperrors.BatchError(stage.Token, err)
	}
	if outcome := result.Outcome(pred); outcome != snowsql.OutcomeSuccess {
		spinner.Stop(false, fmt.Sprintf("Batch execution failed (%s)", outcome))
		if result.Stderr != "" {
			fmt.Println(ui.ColorDim(result.Stderr))
		}
		return stageResult, apperrors.BatchError(stage.Token, fmt.Errorf("client reported %s, exit code %d", outcome, result.ExitCode))
	}

	spinner.Stop(true, fmt.Sprintf("Executed %d statement(s) in %s", batch.Count, ui.FormatDuration(stageResult.Duration)))
	stageResult.Success = true
	return stageResult, nil
}

// deployLoop presents the stage menu until the operator exits.
func deployLoop(cfg *models.Config, resolver *schema.Resolver, runner snowsql.Runner, pred snowsql.FailurePredicate) error {
	const exitOption = "Exit"

	for {
		options := make([]string, 0, len(schema.StageTokens)+1)
		for _, stage := range resolver.Stages() {
			options = append(options, fmt.Sprintf("Execute %s schema (%s.* files)", stage.Schema, stagePrefix(stage)))
		}
		options = append(options, exitOption)

		choice, err := ui.Select("Schema execution menu", options)
		if err != nil {
			return err
		}
		if choice == exitOption {
			return nil
		}

		var selected schema.Stage
		for i, stage := range resolver.Stages() {
			if choice == options[i] {
				selected = stage
				break
			}
		}

		result, err := executeStage(cfg, resolver, runner, pred, selected)
		report.PrintDeploySummary([]report.StageResult{result})
		if err != nil {
			ui.ShowError(err)
		}

		again, err := ui.Confirm("Run another execution?", false)
		if err != nil || !again {
			return nil
		}
	}
}

// printPlan dumps the batches that would be executed as YAML.
func printPlan(cfg *models.Config, resolver *schema.Resolver, stages []schema.Stage) error {
	var batches []ddl.Batch
	for _, stage := range stages {
		batch, err := buildStageBatch(cfg, resolver, stage)
		if err != nil {
			ui.ShowError(err)
			return err
		}
		if batch != nil && batch.Count > 0 {
			batches = append(batches, *batch)
		}
	}

	out, err := yaml.Marshal(batches)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
