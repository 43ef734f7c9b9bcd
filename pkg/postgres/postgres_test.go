package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	// Nothing applied yet: every embedded file is pending, in filename order
	pending, err := pendingMigrations(map[string]bool{})
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "001_initial.sql", pending[0])
	assert.IsIncreasing(t, pending)

	// Everything applied: nothing pending, so a rerun is a no-op
	applied := make(map[string]bool)
	for _, filename := range pending {
		applied[filename] = true
	}
	pending, err = pendingMigrations(applied)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
