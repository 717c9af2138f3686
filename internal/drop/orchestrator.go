package drop

import (
	"fmt"
	"strings"
	"time"

	"snowddl/internal/snowsql"
	apperrors "snowddl/pkg/errors"
)

// ObjectKind selects the metadata listing and DROP statement shape.
type ObjectKind string

const (
	KindTable ObjectKind = "TABLE"
	KindView  ObjectKind = "VIEW"
)

// Report summarizes one drop pass for a kind.
type Report struct {
	Kind     ObjectKind
	Objects  []string
	Dropped  bool
	Duration time.Duration
	Err      error
}

// Orchestrator lists objects in a target schema through the catalog's
// information schema and drops them in synthesized batches.
type Orchestrator struct {
	runner    snowsql.Runner
	database  string
	schema    string
	predicate snowsql.FailurePredicate
}

// New creates an orchestrator for the target schema.
func New(runner snowsql.Runner, database, schema string) *Orchestrator {
	return &Orchestrator{
		runner:    runner,
		database:  database,
		schema:    schema,
		predicate: snowsql.StrictStderrPredicate,
	}
}

// Schema returns the target schema name.
func (o *Orchestrator) Schema() string { return o.schema }

// listQuery builds the metadata query for a kind. Views come from the
// VIEWS listing; tables are restricted to base tables so views are not
// counted twice.
func (o *Orchestrator) listQuery(kind ObjectKind) string {
	schema := strings.ToUpper(o.schema)
	if kind == KindView {
		return fmt.Sprintf(
			"SELECT TABLE_NAME FROM %s.INFORMATION_SCHEMA.VIEWS WHERE TABLE_SCHEMA = '%s';",
			o.database, schema)
	}
	return fmt.Sprintf(
		"SELECT TABLE_NAME FROM %s.INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = '%s' AND TABLE_TYPE = 'BASE TABLE';",
		o.database, schema)
}

// ParseObjectList recovers bare object names from the client's plain
// tabular output. Separator lines (leading '*' or '+') and the client's
// "Goodbye!" footer are dropped; pipe and whitespace padding is stripped
// from the rest. Order is preserved.
func ParseObjectList(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "+") || line == "Goodbye!" {
			continue
		}
		name := strings.TrimSpace(strings.Trim(line, "| "))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ListObjects queries the information schema for object names of a kind.
func (o *Orchestrator) ListObjects(kind ObjectKind) ([]string, error) {
	result, err := o.runner.Run(o.listQuery(kind), snowsql.PlainOutputArgs()...)
	if err != nil {
		return nil, err
	}
	if !result.OK(o.predicate) {
		return nil, apperrors.New(apperrors.ErrCodeResultParsing,
			fmt.Sprintf("failed to list %ss in schema %s", strings.ToLower(string(kind)), o.schema)).
			WithContext("stderr", result.Stderr).
			WithContext("exit_code", result.ExitCode)
	}
	return ParseObjectList(result.Stdout), nil
}

// DropStatements synthesizes one guarded DROP per object. Object names
// are used verbatim; names needing quoting are an unguarded edge case.
func DropStatements(schema string, kind ObjectKind, names []string) []string {
	statements := make([]string, 0, len(names))
	for _, name := range names {
		if kind == KindView {
			statements = append(statements, fmt.Sprintf("DROP VIEW IF EXISTS %s.%s;", schema, name))
		} else {
			statements = append(statements, fmt.Sprintf("DROP TABLE IF EXISTS %s.%s CASCADE;", schema, name))
		}
	}
	return statements
}

// DropKind lists and drops every object of a kind as a single batch.
func (o *Orchestrator) DropKind(kind ObjectKind) Report {
	start := time.Now()
	report := Report{Kind: kind}

	names, err := o.ListObjects(kind)
	if err != nil {
		report.Err = err
		report.Duration = time.Since(start)
		return report
	}

	report.Objects = names
	if len(names) == 0 {
		report.Dropped = true
		report.Duration = time.Since(start)
		return report
	}

	batch := strings.Join(DropStatements(o.schema, kind, names), "\n")
	result, err := o.runner.Run(batch)
	report.Duration = time.Since(start)

	if err != nil {
		report.Err = err
		return report
	}
	if !result.OK(o.predicate) {
		report.Err = apperrors.New(apperrors.ErrCodeBatchExecution,
			fmt.Sprintf("failed to drop some %ss", strings.ToLower(string(kind)))).
			WithContext("stderr", result.Stderr)
		return report
	}

	report.Dropped = true
	return report
}

// DropAll drops views first, then tables, respecting the usual
// view-on-table dependency direction. Best effort: a view failure does
// not block the table pass.
func (o *Orchestrator) DropAll() (views, tables Report) {
	views = o.DropKind(KindView)
	tables = o.DropKind(KindTable)
	return views, tables
}
