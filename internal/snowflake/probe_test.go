package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "snowddl/pkg/errors"
)

func probeConfig() Config {
	return Config{
		Account:   "xy12345.us-east-1",
		User:      "deployer",
		Password:  "s3cret",
		Warehouse: "COMPUTE_WH",
		Database:  "ANALYTICS",
		Role:      "SYSADMIN",
		Timeout:   5 * time.Second,
	}
}

// mockedProbe wires a sqlmock connection behind the probe's opener.
func mockedProbe(t *testing.T) (*Probe, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	probe := NewProbe(probeConfig())
	probe.open = func(driverName, dsn string) (*sql.DB, error) {
		assert.Equal(t, "snowflake", driverName)
		return db, nil
	}
	return probe, mock
}

func TestDSN(t *testing.T) {
	probe := NewProbe(probeConfig())

	assert.Equal(t,
		"deployer:s3cret@xy12345.us-east-1/ANALYTICS?warehouse=COMPUTE_WH&role=SYSADMIN",
		probe.DSN())
}

func TestPing(t *testing.T) {
	probe, mock := mockedProbe(t)
	mock.ExpectPing()
	mock.ExpectClose()

	err := probe.Ping(context.Background())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPingConnectionFailure(t *testing.T) {
	probe, mock := mockedProbe(t)
	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))
	mock.ExpectClose()

	err := probe.Ping(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConnectionFailed, apperrors.GetErrorCode(err))
	assert.True(t, apperrors.IsRecoverable(err))
}

func TestPingAuthenticationFailure(t *testing.T) {
	probe, mock := mockedProbe(t)
	mock.ExpectPing().WillReturnError(errors.New("390100: authentication failed"))
	mock.ExpectClose()

	err := probe.Ping(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeAuthenticationFailed, apperrors.GetErrorCode(err))
}

func TestPingOpenFailure(t *testing.T) {
	probe := NewProbe(probeConfig())
	probe.open = func(driverName, dsn string) (*sql.DB, error) {
		return nil, errors.New("unknown driver")
	}

	err := probe.Ping(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConnectionFailed, apperrors.GetErrorCode(err))
}
