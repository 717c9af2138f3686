package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"

	apperrors "snowddl/pkg/errors"
	"snowddl/pkg/models"
)

// Config holds the direct-driver connection settings.
type Config struct {
	Account   string
	User      string
	Password  string
	Warehouse string
	Database  string
	Role      string
	Timeout   time.Duration
}

// ConfigFromModel maps the loaded configuration onto a probe Config.
func ConfigFromModel(cfg *models.Config) Config {
	return Config{
		Account:   cfg.Connection.Account,
		User:      cfg.Connection.User,
		Password:  cfg.Connection.Password,
		Warehouse: cfg.Connection.Warehouse,
		Database:  cfg.Connection.Database,
		Role:      cfg.Connection.Role,
	}
}

// Probe verifies connectivity through the Snowflake driver directly,
// bypassing the snowsql binary. Used by 'check --direct' when the
// external client is unavailable.
type Probe struct {
	cfg  Config
	open func(driverName, dsn string) (*sql.DB, error)
}

// NewProbe creates a connectivity probe.
func NewProbe(cfg Config) *Probe {
	return &Probe{cfg: cfg, open: sql.Open}
}

// DSN renders the driver connection string.
func (p *Probe) DSN() string {
	return fmt.Sprintf("%s:%s@%s/%s?warehouse=%s&role=%s",
		p.cfg.User,
		p.cfg.Password,
		p.cfg.Account,
		p.cfg.Database,
		p.cfg.Warehouse,
		p.cfg.Role,
	)
}

// Ping opens a connection and round-trips it. The connection is torn
// down before returning; the probe holds no state between calls.
func (p *Probe) Ping(ctx context.Context) error {
	db, err := p.open("snowflake", p.DSN())
	if err != nil {
		return apperrors.ConnectionError("failed to open Snowflake connection", err).
			WithContext("account", p.cfg.Account)
	}
	defer db.Close()

	timeout := p.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if strings.Contains(err.Error(), "authentication") {
			return apperrors.New(apperrors.ErrCodeAuthenticationFailed, "authentication failed").
				WithContext("user", p.cfg.User).
				WithSuggestions(
					"Verify your username and password",
					"Check if your account is locked",
				)
		}
		return apperrors.ConnectionError("failed to connect to Snowflake", err).
			WithContext("account", p.cfg.Account).
			AsRecoverable()
	}

	return nil
}
