package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "admin.db"))
	t.Setenv("SEED_RANDOM_SEED", "5")
	t.Setenv("SEED_JOBS", "4")
	t.Setenv("SEED_CANDIDATES", "12")
	t.Setenv("SEED_ASSESSMENTS", "2")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func countLine(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == name {
			return fields[1]
		}
	}
	t.Fatalf("no count for %s in %q", name, out)
	return ""
}

func TestSeedExportClearImport(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "store seeded")
	assert.Equal(t, "4", countLine(t, out, "jobs"))
	assert.Equal(t, "12", countLine(t, out, "candidates"))

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")

	snapshot := filepath.Join(dir, "snap.json")
	_, err = run(t, "export", "--out", snapshot)
	require.NoError(t, err)
	info, err := os.Stat(snapshot)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = run(t, "clear")
	assert.ErrorContains(t, err, "--yes")

	out, err = run(t, "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "store cleared")

	out, err = run(t, "counts")
	require.NoError(t, err)
	assert.Equal(t, "0", countLine(t, out, "jobs"))

	out, err = run(t, "import", "--file", snapshot)
	require.NoError(t, err)
	assert.Equal(t, "4", countLine(t, out, "jobs"))
	assert.Equal(t, "12", countLine(t, out, "candidates"))

	_, err = run(t, "import")
	assert.ErrorContains(t, err, "exactly one")
}

func TestResetReseeds(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "clear", "--yes")
	require.NoError(t, err)

	out, err := run(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "store reseeded")
	assert.Equal(t, "2", countLine(t, out, "assessments"))
}
