package store

import "github.com/startificial/requireflow/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "requireflow.db"
)

type Config struct {
	DBPath string
}

func DefaultConfig() Config {
	return Config{
		DBPath: defaultDBPath,
	}
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.NewValidation("Invalid store configuration", map[string][]string{
			"database": {"must not be empty"},
		})
	}
	return nil
}
