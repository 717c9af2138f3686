package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	apperrors "snowddl/pkg/errors"
	"snowddl/pkg/models"
)

const validINI = `[connection]
account = xy12345.us-east-1
user = deployer
password = s3cret
warehouse = COMPUTE_WH
database = ANALYTICS
role = SYSADMIN
region = us-east-1

[snowsql]
snowsql_path = /opt/snowsql/snowsql

[schemas]
1st_schema = RAW_DB
2nd_schema = STAGE_DB
3rd_schema = CURATED_DB

[ddl]
ddl_root = /data/ddl

[drop]
target_schema = RAW_DB
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)

	assert.Equal(t, "xy12345.us-east-1", cfg.Connection.Account)
	assert.Equal(t, "deployer", cfg.Connection.User)
	assert.Equal(t, "s3cret", cfg.Connection.Password)
	assert.Equal(t, "COMPUTE_WH", cfg.Connection.Warehouse)
	assert.Equal(t, "ANALYTICS", cfg.Connection.Database)
	assert.Equal(t, "SYSADMIN", cfg.Connection.Role)
	assert.Equal(t, "us-east-1", cfg.Connection.Region)
	assert.Equal(t, "/opt/snowsql/snowsql", cfg.Client.Path)
	assert.Equal(t, "RAW_DB", cfg.Schemas.First)
	assert.Equal(t, "STAGE_DB", cfg.Schemas.Second)
	assert.Equal(t, "CURATED_DB", cfg.Schemas.Third)
	assert.Equal(t, "/data/ddl", cfg.DDL.Root)
	assert.Equal(t, "RAW_DB", cfg.Drop.TargetSchema)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.ini"))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigNotFound, apperrors.GetErrorCode(err))
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)

	assert.NoError(t, Validate(cfg))
}

func TestValidateMissingKeys(t *testing.T) {
	tests := []struct {
		name  string
		strip func(*models.Config)
	}{
		{"account", func(c *models.Config) { c.Connection.Account = "" }},
		{"user", func(c *models.Config) { c.Connection.User = "" }},
		{"warehouse", func(c *models.Config) { c.Connection.Warehouse = "" }},
		{"database", func(c *models.Config) { c.Connection.Database = "" }},
		{"role", func(c *models.Config) { c.Connection.Role = "" }},
		{"snowsql_path", func(c *models.Config) { c.Client.Path = "" }},
		{"1st_schema", func(c *models.Config) { c.Schemas.First = "" }},
		{"2nd_schema", func(c *models.Config) { c.Schemas.Second = "" }},
		{"3rd_schema", func(c *models.Config) { c.Schemas.Third = "" }},
		{"ddl_root", func(c *models.Config) { c.DDL.Root = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validINI))
			require.NoError(t, err)

			tt.strip(cfg)

			err = Validate(cfg)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestValidateDrop(t *testing.T) {
	cfg := &models.Config{}
	err := ValidateDrop(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_schema")

	cfg.Drop.TargetSchema = "RAW_DB"
	assert.NoError(t, ValidateDrop(cfg))
}

func TestValidateRegionOptional(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)

	cfg.Connection.Region = ""
	assert.NoError(t, Validate(cfg))
}

func TestResolvePasswordFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)

	require.NoError(t, ResolvePassword(cfg))
	assert.Equal(t, "s3cret", cfg.Connection.Password)
}

func TestResolvePasswordFromKeyring(t *testing.T) {
	keyring.MockInit()

	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)
	cfg.Connection.Password = ""

	require.NoError(t, StorePassword(cfg, "fromkeyring"))
	require.NoError(t, ResolvePassword(cfg))
	assert.Equal(t, "fromkeyring", cfg.Connection.Password)
}

func TestResolvePasswordMissingEverywhere(t *testing.T) {
	keyring.MockInit()

	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)
	cfg.Connection.Password = ""
	cfg.Connection.User = "nobody"

	err = ResolvePassword(cfg)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.GetErrorCode(err))
}

func TestWriteFileRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, WriteFile(cfg, out, true))

	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestWriteFileWithoutPassword(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, WriteFile(cfg, out, false))

	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Connection.Password)
}
