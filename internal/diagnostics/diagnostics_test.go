package diagnostics_test

import (
	"path/filepath"
	"testing"

	"github.com/mutker/coolantd/internal/diagnostics"
	"github.com/mutker/coolantd/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledReturnsNoop(t *testing.T) {
	cfg := diagnostics.DefaultConfig()
	cfg.Enabled = false

	c, err := diagnostics.New(cfg, logger.New())
	require.NoError(t, err)
	require.NotNil(t, c)

	c.RecordTransition("OFF", "INITIALIZING", "IGNITION_ON")
	assert.NoError(t, c.Close())
}

func TestNewEnabledOpensJournal(t *testing.T) {
	dir := t.TempDir()
	cfg := diagnostics.DefaultConfig()
	cfg.Enabled = true
	cfg.Path = filepath.Join(dir, "diagnostics.db")
	cfg.BatchSize = 1

	c, err := diagnostics.New(cfg, logger.New())
	require.NoError(t, err)

	c.RecordTransition("OFF", "INITIALIZING", "IGNITION_ON")
	c.RecordSafetyEvent("low_coolant", true)
	c.RecordBusCounters(1, 2, 0)

	require.NoError(t, c.Close())
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := diagnostics.Config{Enabled: true, Path: ""}

	_, err := diagnostics.New(cfg, logger.New())
	assert.Error(t, err)
}
