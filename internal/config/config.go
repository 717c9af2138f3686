package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"snowddl/internal/common"
	apperrors "snowddl/pkg/errors"
	"snowddl/pkg/models"
)

// keyringService is the service name under which passwords are stored
// in the OS keyring.
const keyringService = "snowddl"

// Load reads the sectioned key/value configuration file. When path is
// empty the file is searched as config.ini in the working directory and
// in ~/.snowddl. The result is read once and never mutated.
func Load(path string) (*models.Config, error) {
	v := viper.New()
	v.SetConfigType("ini")

	if path != "" {
		cleaned, err := common.CleanPath(path)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidPath, "invalid config file path")
		}
		v.SetConfigFile(cleaned)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".snowddl"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigNotFound, "failed to read config.ini").
			WithSuggestions(
				"Create config.ini in the working directory or ~/.snowddl/",
				"Run 'snowddl setup' to generate one interactively",
			)
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "failed to parse config.ini")
	}

	return &cfg, nil
}

// Validate reports the first missing required section/key. The run must
// abort on any of these before network activity starts. The password is
// checked separately by ResolvePassword because it may live in the
// keyring instead of the file.
func Validate(cfg *models.Config) error {
	required := []struct {
		section string
		key     string
		value   string
	}{
		{"connection", "account", cfg.Connection.Account},
		{"connection", "user", cfg.Connection.User},
		{"connection", "warehouse", cfg.Connection.Warehouse},
		{"connection", "database", cfg.Connection.Database},
		{"connection", "role", cfg.Connection.Role},
		{"snowsql", "snowsql_path", cfg.Client.Path},
		{"schemas", "1st_schema", cfg.Schemas.First},
		{"schemas", "2nd_schema", cfg.Schemas.Second},
		{"schemas", "3rd_schema", cfg.Schemas.Third},
		{"ddl", "ddl_root", cfg.DDL.Root},
	}

	for _, r := range required {
		if r.value == "" {
			return apperrors.ConfigMissingError(r.section, r.key)
		}
	}
	return nil
}

// ValidateDrop checks the [drop] section, required only for the drop command.
func ValidateDrop(cfg *models.Config) error {
	if cfg.Drop.TargetSchema == "" {
		return apperrors.ConfigMissingError("drop", "target_schema")
	}
	return nil
}

// ResolvePassword fills in the connection password. Lookup order: the
// config file, then the OS keyring under <account>/<user>.
func ResolvePassword(cfg *models.Config) error {
	if cfg.Connection.Password != "" {
		return nil
	}

	secret, err := keyring.Get(keyringService, keyringKey(cfg))
	if err == nil && secret != "" {
		cfg.Connection.Password = secret
		return nil
	}

	return apperrors.ConfigMissingError("connection", "password").
		WithSuggestions("Or store it in the OS keyring via 'snowddl setup'")
}

// StorePassword saves the password in the OS keyring so it can be left
// out of config.ini.
func StorePassword(cfg *models.Config, password string) error {
	if err := keyring.Set(keyringService, keyringKey(cfg), password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

func keyringKey(cfg *models.Config) string {
	return cfg.Connection.Account + "/" + cfg.Connection.User
}

// WriteFile renders cfg as a config.ini at path. Used by setup; the
// password is written only when includePassword is set.
func WriteFile(cfg *models.Config, path string, includePassword bool) error {
	password := ""
	if includePassword {
		password = cfg.Connection.Password
	}

	content := fmt.Sprintf(`[connection]
account = %s
user = %s
password = %s
warehouse = %s
database = %s
role = %s
region = %s

[snowsql]
snowsql_path = %s

[schemas]
1st_schema = %s
2nd_schema = %s
3rd_schema = %s

[ddl]
ddl_root = %s

[drop]
target_schema = %s
`,
		cfg.Connection.Account,
		cfg.Connection.User,
		password,
		cfg.Connection.Warehouse,
		cfg.Connection.Database,
		cfg.Connection.Role,
		cfg.Connection.Region,
		cfg.Client.Path,
		cfg.Schemas.First,
		cfg.Schemas.Second,
		cfg.Schemas.Third,
		cfg.DDL.Root,
		cfg.Drop.TargetSchema,
	)

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
