package report

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"snowddl/internal/ddl"
	"snowddl/internal/drop"
	"snowddl/internal/ui"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// StageResult summarizes one stage batch execution for the final report.
type StageResult struct {
	Stage    string
	Schema   string
	Files    int
	Duration time.Duration
	Success  bool
}

// PrintBatchFiles lists the files included in a batch with their
// detected schemas.
func PrintBatchFiles(batch ddl.Batch) {
	for _, p := range batch.Files {
		fmt.Printf("    %s %s -> %s schema\n", okMark("✓"), p.Name, p.DetectedSchema)
	}
}

// PrintDeploySummary renders the per-stage execution summary table.
func PrintDeploySummary(results []StageResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Stage", "Schema", "Files", "Duration", "Status"})

	totalFiles := 0
	var totalDuration time.Duration
	for _, r := range results {
		status := okMark("OK")
		if !r.Success {
			status = failMark("FAILED")
		}
		table.Append([]string{
			r.Stage,
			r.Schema,
			fmt.Sprintf("%d", r.Files),
			ui.FormatDuration(r.Duration),
			status,
		})
		totalFiles += r.Files
		totalDuration += r.Duration
	}

	fmt.Println()
	table.Render()
	fmt.Printf("\n  Total: %d file(s) in %s\n", totalFiles, ui.FormatDuration(totalDuration))
	if totalFiles > 0 {
		fmt.Printf("  Average per file: %s\n", ui.FormatDuration(totalDuration/time.Duration(totalFiles)))
	}
}

// PrintDropSummary renders the drop outcome per object kind.
func PrintDropSummary(schema string, reports ...drop.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Objects", "Duration", "Status"})

	for _, r := range reports {
		status := okMark("Dropped")
		if r.Err != nil {
			status = failMark("Failed")
		}
		table.Append([]string{
			string(r.Kind),
			fmt.Sprintf("%d", len(r.Objects)),
			ui.FormatDuration(r.Duration),
			status,
		})
	}

	fmt.Printf("\n  Schema: %s\n", schema)
	table.Render()
}
