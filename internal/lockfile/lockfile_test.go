package lockfile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	require.NoError(t, Release())

	err := Acquire()
	require.NoError(t, err)
	defer Release()

	_, statErr := os.Stat(path())
	assert.NoError(t, statErr)
}

func TestAcquireTwiceFails(t *testing.T) {
	require.NoError(t, Acquire())
	defer Release()

	err := Acquire()
	assert.Error(t, err)
}

func TestReleaseWithoutAcquireIsNoop(t *testing.T) {
	require.NoError(t, Release())
	assert.NoError(t, Release())
}
