package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/database"
)

func TestOpenBoltSinkCreatesDatabaseAndRecordsEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "loomc.db")
	sink, err := database.OpenBoltSink(dbPath)
	require.NoError(t, err)
	defer sink.Close()

	err = sink.Record(database.Entry{SessionID: "s1", FilePath: "a.loom", Digest: "d1", OK: true})
	require.NoError(t, err)
}

func TestBoltSinkRecordSameSessionAndFileTwiceSucceeds(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "loomc.db")
	sink, err := database.OpenBoltSink(dbPath)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Record(database.Entry{SessionID: "s1", FilePath: "a.loom", DiagCount: 1}))
	require.NoError(t, sink.Record(database.Entry{SessionID: "s1", FilePath: "a.loom", DiagCount: 5}))
	// Recording twice under the same session/file key must not error.
	// BoltSink exposes no read path, so the stored value is not inspected.
	assert.NoError(t, err)
}

func TestOpenBoltSinkFailsOnUnwritablePath(t *testing.T) {
	_, err := database.OpenBoltSink(filepath.Join(t.TempDir(), "missing-dir", "loomc.db"))
	assert.Error(t, err)
}
