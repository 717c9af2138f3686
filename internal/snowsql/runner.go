package snowsql

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"time"

	apperrors "snowddl/pkg/errors"
	"snowddl/pkg/models"
)

// ConnectionTestQuery verifies credentials end to end before any DDL work.
const ConnectionTestQuery = "SELECT CURRENT_USER(), CURRENT_ACCOUNT(), CURRENT_REGION();"

// passwordEnvVar is the variable the snowsql client reads its secret
// from. It is set only in the child process environment, never via argv
// and never in the parent process.
const passwordEnvVar = "SNOWSQL_PWD"

// Outcome classifies a client invocation.
type Outcome int

const (
	// OutcomeSuccess: exit code zero and the failure predicate is quiet.
	OutcomeSuccess Outcome = iota
	// OutcomeClientError: the client exited non-zero.
	OutcomeClientError
	// OutcomeProtocolAmbiguous: exit code zero but stderr carries known
	// error markers. The client can report success even when individual
	// statements inside a batch failed.
	OutcomeProtocolAmbiguous
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeClientError:
		return "client error"
	case OutcomeProtocolAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Result captures one client invocation. Produced per call, consumed for
// reporting, not persisted.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// FailurePredicate decides whether a zero-exit invocation should still
// count as failed based on its captured streams. Policy lives with the
// caller, not inside the runner.
type FailurePredicate func(Result) bool

// StrictStderrPredicate flags the error substrings the client is known
// to emit on stderr while still exiting zero. Substring sniffing is a
// deliberate heuristic given the client's reporting; see the runner docs.
func StrictStderrPredicate(r Result) bool {
	return strings.Contains(r.Stderr, "SQL compilation error") ||
		strings.Contains(r.Stderr, "does not exist")
}

// LenientPredicate trusts the exit code alone.
func LenientPredicate(Result) bool { return false }

// Outcome classifies the result under the given predicate. A nil
// predicate behaves like LenientPredicate.
func (r Result) Outcome(pred FailurePredicate) Outcome {
	if r.ExitCode != 0 {
		return OutcomeClientError
	}
	if pred != nil && pred(r) {
		return OutcomeProtocolAmbiguous
	}
	return OutcomeSuccess
}

// OK reports whether the result classifies as success under pred.
func (r Result) OK(pred FailurePredicate) bool {
	return r.Outcome(pred) == OutcomeSuccess
}

// Runner executes a query through the external SQL client. Commands and
// tests inject fakes through this interface.
type Runner interface {
	Run(query string, extraArgs ...string) (Result, error)
}

// Config holds everything needed to invoke the client binary.
type Config struct {
	Path      string
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Role      string
	Region    string
}

// ConfigFromModel maps the loaded configuration onto a runner Config.
func ConfigFromModel(cfg *models.Config) Config {
	return Config{
		Path:      cfg.Client.Path,
		Account:   cfg.Connection.Account,
		User:      cfg.Connection.User,
		Password:  cfg.Connection.Password,
		Warehouse: cfg.Connection.Warehouse,
		Database:  cfg.Connection.Database,
		Role:      cfg.Connection.Role,
		Region:    cfg.Connection.Region,
	}
}

// ClientRunner invokes the snowsql binary as a blocking subprocess, one
// process per call. No timeout is enforced; a hung client blocks the run.
type ClientRunner struct {
	cfg Config
}

// NewClientRunner creates a runner for the configured client binary.
func NewClientRunner(cfg Config) *ClientRunner {
	return &ClientRunner{cfg: cfg}
}

// Args builds the argument vector for a query. The secret never appears
// here; it travels via the child environment only.
func (c *ClientRunner) Args(query string, extraArgs ...string) []string {
	args := []string{
		"-a", c.cfg.Account,
		"-u", c.cfg.User,
		"-w", c.cfg.Warehouse,
		"-d", c.cfg.Database,
		"-r", c.cfg.Role,
	}
	if c.cfg.Region != "" {
		args = append(args, "--region", c.cfg.Region)
	}
	args = append(args, extraArgs...)
	args = append(args, "-q", query)
	return args
}

// Describe returns a loggable rendition of the invocation with the query
// hidden.
func (c *ClientRunner) Describe() string {
	return strings.Join(append([]string{c.cfg.Path}, c.Args("")[:10]...), " ") + "... [query hidden]"
}

// Run executes the query and captures both streams and the exit code.
func (c *ClientRunner) Run(query string, extraArgs ...string) (Result, error) {
	cmd := exec.Command(c.cfg.Path, c.Args(query, extraArgs...)...) // #nosec G204 - binary path comes from validated config

	// Child-scoped copy of the environment; the parent env is untouched.
	cmd.Env = append(os.Environ(), passwordEnvVar+"="+c.cfg.Password)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, apperrors.Wrap(err, apperrors.ErrCodeClientNotFound, "failed to start the snowsql client").
			WithContext("snowsql_path", c.cfg.Path).
			WithSuggestions(
				"Verify snowsql_path in the [snowsql] section of config.ini",
				"Check that the snowsql binary is installed and executable",
			)
	}

	return result, nil
}

// PlainOutputArgs configures the client for machine-parseable output,
// used when listing schema objects.
func PlainOutputArgs() []string {
	return []string{
		"-o", "output_format=plain",
		"-o", "friendly=false",
		"-o", "timing=false",
		"-o", "header=false",
	}
}
