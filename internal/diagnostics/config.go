package diagnostics

import "github.com/mutker/coolantd/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultPath    = "/var/lib/coolantd/diagnostics.db"
)

// Config controls whether and where the diagnostics journal persists.
type Config struct {
	Path         string
	Enabled      bool
	BatchSize    int
	BatchTimeout int // seconds
}

func DefaultConfig() Config {
	return Config{
		Path:         defaultPath,
		Enabled:      false,
		BatchSize:    50,
		BatchTimeout: 5,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.Path == "" {
		return errFactory.New(errors.ErrInvalidConfig)
	}
	return nil
}
