package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	abs, err := CleanPath("/data/ddl")
	require.NoError(t, err)
	assert.Equal(t, "/data/ddl", abs)

	rel, err := CleanPath("ddl")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel))

	_, err = CleanPath("../escape")
	assert.Error(t, err)
}

func TestValidatePath(t *testing.T) {
	base := t.TempDir()

	inside, err := ValidatePath(filepath.Join(base, "customers", "raw.customers.sql"), base)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(inside))

	_, err = ValidatePath("/etc/passwd", base)
	assert.Error(t, err)
}
