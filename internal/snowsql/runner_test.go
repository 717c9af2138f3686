package snowsql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"snowddl/pkg/models"
)

func testConfig() Config {
	return Config{
		Path:      "/opt/snowsql/snowsql",
		Account:   "xy12345.us-east-1",
		User:      "deployer",
		Password:  "s3cret",
		Warehouse: "COMPUTE_WH",
		Database:  "ANALYTICS",
		Role:      "SYSADMIN",
	}
}

func TestArgs(t *testing.T) {
	runner := NewClientRunner(testConfig())

	args := runner.Args("SELECT 1;")

	assert.Equal(t, []string{
		"-a", "xy12345.us-east-1",
		"-u", "deployer",
		"-w", "COMPUTE_WH",
		"-d", "ANALYTICS",
		"-r", "SYSADMIN",
		"-q", "SELECT 1;",
	}, args)
}

func TestArgsNeverContainThePassword(t *testing.T) {
	runner := NewClientRunner(testConfig())

	for _, arg := range runner.Args("SELECT 1;", PlainOutputArgs()...) {
		assert.NotContains(t, arg, "s3cret")
	}
}

func TestArgsWithRegion(t *testing.T) {
	cfg := testConfig()
	cfg.Region = "eu-west-1"
	runner := NewClientRunner(cfg)

	args := runner.Args("SELECT 1;")

	assert.Contains(t, args, "--region")
	assert.Contains(t, args, "eu-west-1")
}

func TestArgsExtraArgsBeforeQuery(t *testing.T) {
	runner := NewClientRunner(testConfig())

	args := runner.Args("SELECT 1;", PlainOutputArgs()...)

	assert.Equal(t, "SELECT 1;", args[len(args)-1])
	assert.Equal(t, "-q", args[len(args)-2])
	assert.Contains(t, args, "output_format=plain")
}

func TestConfigFromModel(t *testing.T) {
	model := &models.Config{}
	model.Client.Path = "/usr/bin/snowsql"
	model.Connection.Account = "acct"
	model.Connection.User = "u"
	model.Connection.Password = "p"
	model.Connection.Warehouse = "wh"
	model.Connection.Database = "db"
	model.Connection.Role = "r"
	model.Connection.Region = "reg"

	cfg := ConfigFromModel(model)

	assert.Equal(t, Config{
		Path:      "/usr/bin/snowsql",
		Account:   "acct",
		User:      "u",
		Password:  "p",
		Warehouse: "wh",
		Database:  "db",
		Role:      "r",
		Region:    "reg",
	}, cfg)
}

func TestOutcomeClassification(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		pred   FailurePredicate
		want   Outcome
	}{
		{
			name:   "clean run",
			result: Result{ExitCode: 0, Stdout: "ok"},
			pred:   StrictStderrPredicate,
			want:   OutcomeSuccess,
		},
		{
			name:   "non-zero exit",
			result: Result{ExitCode: 1},
			pred:   StrictStderrPredicate,
			want:   OutcomeClientError,
		},
		{
			name:   "zero exit with compilation error on stderr",
			result: Result{ExitCode: 0, Stderr: "001003 (42000): SQL compilation error:\nsyntax error"},
			pred:   StrictStderrPredicate,
			want:   OutcomeProtocolAmbiguous,
		},
		{
			name:   "zero exit with missing object on stderr",
			result: Result{ExitCode: 0, Stderr: "Schema 'ANALYTICS.NOPE' does not exist"},
			pred:   StrictStderrPredicate,
			want:   OutcomeProtocolAmbiguous,
		},
		{
			name:   "lenient predicate trusts exit code",
			result: Result{ExitCode: 0, Stderr: "SQL compilation error"},
			pred:   LenientPredicate,
			want:   OutcomeSuccess,
		},
		{
			name:   "nil predicate trusts exit code",
			result: Result{ExitCode: 0, Stderr: "SQL compilation error"},
			pred:   nil,
			want:   OutcomeSuccess,
		},
		{
			name:   "exit code wins over predicate",
			result: Result{ExitCode: 2, Stderr: "SQL compilation error"},
			pred:   StrictStderrPredicate,
			want:   OutcomeClientError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Outcome(tt.pred))
			assert.Equal(t, tt.want == OutcomeSuccess, tt.result.OK(tt.pred))
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "client error", OutcomeClientError.String())
	assert.Equal(t, "ambiguous", OutcomeProtocolAmbiguous.String())
}

func TestRunReportsMissingBinary(t *testing.T) {
	cfg := testConfig()
	cfg.Path = "/nonexistent/snowsql"
	runner := NewClientRunner(cfg)

	_, err := runner.Run("SELECT 1;")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start the snowsql client")
}
