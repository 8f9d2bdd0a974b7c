package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", ShortID("0123abcd-ffff-4fff-8fff-ffffffffffff"))
	assert.Equal(t, "abc", ShortID("abc"))
}

func TestEnsureParentDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a", "b", "lyrics.db")
	require.NoError(t, EnsureParentDir(file))

	info, err := os.Stat(filepath.Dir(file))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, EnsureParentDir("lyrics.db"))
}
