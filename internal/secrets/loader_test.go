package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  from-file\n"), 0o600))

	t.Setenv("COUNSELOR_TEST_KEY", " from-env ")

	got, err := Load(Source{Name: "api key", File: keyFile, Env: "COUNSELOR_TEST_KEY", Value: "inline"})
	require.NoError(t, err)
	assert.Equal(t, "from-file", got)

	got, err = Load(Source{Name: "api key", Env: "COUNSELOR_TEST_KEY", Value: "inline"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)

	got, err = Load(Source{Name: "api key", Env: "COUNSELOR_UNSET_KEY", Value: " inline "})
	require.NoError(t, err)
	assert.Equal(t, "inline", got)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))

	_, err := Load(Source{Name: "api key", File: empty})
	assert.ErrorContains(t, err, "is empty")

	_, err = Load(Source{Name: "api key", File: filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(Source{Env: "COUNSELOR_UNSET_KEY"})
	assert.EqualError(t, err, "secret is not configured (COUNSELOR_UNSET_KEY is unset)")
}
