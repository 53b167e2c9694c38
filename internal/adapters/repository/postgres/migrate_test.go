package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_ListsUpFiles(t *testing.T) {
	names, err := Migrations("up")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	for _, name := range names {
		assert.Regexp(t, `\.up\.sql$`, name)
	}
}

func TestMigrations_DownIsReversed(t *testing.T) {
	up, err := Migrations("up")
	require.NoError(t, err)
	down, err := Migrations("down")
	require.NoError(t, err)
	require.Len(t, down, len(up))
	if len(down) > 1 {
		assert.Greater(t, down[0], down[len(down)-1])
	}
}
