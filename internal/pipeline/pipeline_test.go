package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loomc/internal/database"
	"loomc/internal/diag"
	"loomc/internal/pipeline"
	"loomc/internal/primitive"
	"loomc/internal/source"
)

// panickingTable simulates a collaborator (a plugin's primitive registry,
// say) that reaches an unreachable case and panics with the compiler's
// internal-error sentinel rather than returning cleanly.
type panickingTable struct{}

func (panickingTable) Lookup(name string) (primitive.Descriptor, bool) {
	panic(diag.Internal{Message: "boom"})
}

func newPipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Enumerator: source.FilesystemEnumerator{},
		Prims:      primitive.Base(),
		Database:   database.NoopSink{},
		Logger:     zap.NewNop().Sugar(),
	}
}

func writeLoom(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCompileSimpleFileSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeLoom(t, dir, "main.loom", "def a = 1")

	sink := diag.NewSink()
	result, err := newPipeline().Compile([]string{dir}, sink)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.OK)
	assert.False(t, sink.HasErrors())
	assert.Len(t, result.Files, 1)
	assert.Len(t, result.Compiled, len(result.Files)+1, "the synthetic builtins file is compiled alongside every source file")
}

func TestCompileReportsUndefinedNameWithoutError(t *testing.T) {
	dir := t.TempDir()
	writeLoom(t, dir, "main.loom", "def a = missingName")

	sink := diag.NewSink()
	result, err := newPipeline().Compile([]string{dir}, sink)
	require.NoError(t, err, "user-facing compile errors are reported to sink, not returned")
	require.NotNil(t, result)
	assert.False(t, result.OK)
	assert.True(t, sink.HasErrors())
}

func TestCompileWithNoRootsProducesOnlyBuiltins(t *testing.T) {
	sink := diag.NewSink()
	result, err := newPipeline().Compile(nil, sink)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.True(t, result.OK)
	assert.Len(t, result.Compiled, 1, "the synthetic builtins file is still compiled with zero source files")
}

func TestCompileMultipleFilesShareOneSession(t *testing.T) {
	dir := t.TempDir()
	writeLoom(t, dir, "a.loom", "def a = 1")
	writeLoom(t, dir, "b.loom", "def b = 2")

	sink := diag.NewSink()
	result, err := newPipeline().Compile([]string{dir}, sink)
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Len(t, result.Files, 2)
	assert.NotEmpty(t, result.SessionID)
}

func TestCompileMissingRootReturnsError(t *testing.T) {
	sink := diag.NewSink()
	_, err := newPipeline().Compile([]string{filepath.Join(t.TempDir(), "does-not-exist")}, sink)
	assert.Error(t, err)
}

func TestCompileRecoversInternalPanicIntoDiagnostic(t *testing.T) {
	dir := t.TempDir()
	writeLoom(t, dir, "main.loom", "def a = 1")

	p := &pipeline.Pipeline{
		Enumerator: source.FilesystemEnumerator{},
		Prims:      panickingTable{},
		Database:   database.NoopSink{},
		Logger:     zap.NewNop().Sugar(),
	}

	sink := diag.NewSink()
	result, err := p.Compile([]string{dir}, sink)
	require.NoError(t, err, "a recovered internal panic is reported to sink, not returned as a Go error")
	require.NotNil(t, result)
	assert.False(t, result.OK)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.InternalError, sink.Diagnostics()[0].Kind)
}
