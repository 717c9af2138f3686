package models

// Config mirrors the sectioned key/value layout of config.ini. It is
// loaded once per run and never mutated afterwards.
type Config struct {
	Connection Connection `mapstructure:"connection"`
	Client     Client     `mapstructure:"snowsql"`
	Schemas    Schemas    `mapstructure:"schemas"`
	DDL        DDL        `mapstructure:"ddl"`
	Drop       Drop       `mapstructure:"drop"`
}

// Connection holds the warehouse connection credentials.
type Connection struct {
	Account   string `mapstructure:"account"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Warehouse string `mapstructure:"warehouse"`
	Database  string `mapstructure:"database"`
	Role      string `mapstructure:"role"`
	Region    string `mapstructure:"region"` // optional
}

// Client locates the external snowsql binary.
type Client struct {
	Path string `mapstructure:"snowsql_path"`
}

// Schemas maps the three logical stage tokens to actual schema names.
type Schemas struct {
	First  string `mapstructure:"1st_schema"`
	Second string `mapstructure:"2nd_schema"`
	Third  string `mapstructure:"3rd_schema"`
}

// DDL points at the root of the per-table DDL directory tree.
type DDL struct {
	Root string `mapstructure:"ddl_root"`
}

// Drop names the schema targeted by the drop command. Only required
// when running 'snowddl drop'.
type Drop struct {
	TargetSchema string `mapstructure:"target_schema"`
}
