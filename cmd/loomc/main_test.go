package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/config"
	"loomc/internal/database"
)

func TestNewLoggerVerboseAndQuiet(t *testing.T) {
	quiet, err := newLogger(false)
	require.NoError(t, err)
	require.NotNil(t, quiet)

	verbose, err := newLogger(true)
	require.NoError(t, err)
	require.NotNil(t, verbose)
}

func TestOpenDatabaseWithEmptyPathReturnsNoop(t *testing.T) {
	sink, err := openDatabase(&config.Config{DatabasePath: ""})
	require.NoError(t, err)
	assert.IsType(t, database.NoopSink{}, sink)
}

func TestOpenDatabaseWithWritablePathOpensBoltSink(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "loomc.db")
	sink, err := openDatabase(&config.Config{DatabasePath: dbPath})
	require.NoError(t, err)
	if closer, ok := sink.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	assert.IsType(t, &database.BoltSink{}, sink)
}

func TestOpenDatabaseDegradesToNoopOnUnwritablePath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing-dir", "loomc.db")
	sink, err := openDatabase(&config.Config{DatabasePath: dbPath})
	require.NoError(t, err, "an unwritable cache directory degrades to no-op rather than failing the compile")
	assert.IsType(t, database.NoopSink{}, sink)
}
