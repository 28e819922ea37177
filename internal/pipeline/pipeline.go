// Package pipeline sequences enumerate -> parse -> lower-constructors ->
// fracture -> pattern-compile -> type-infer over one source-root set,
// aggregating diagnostics, and returning a typed tree.
package pipeline

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loomc/internal/ast"
	"loomc/internal/database"
	"loomc/internal/diag"
	"loomc/internal/parser"
	"loomc/internal/pattern"
	"loomc/internal/primitive"
	"loomc/internal/resolve"
	"loomc/internal/source"
	"loomc/internal/types"
)

// sourceExtension is the file suffix this compiler enumerates.
var sourceExtension = regexp.MustCompile(`\.loom$`)

// Pipeline holds the external collaborators a compile run needs, none of
// which the core stages construct for themselves.
type Pipeline struct {
	Enumerator source.Enumerator
	Prims      primitive.Table
	Database   database.Sink
	Logger     *zap.SugaredLogger
}

// Result is everything a caller (cmd/loomc, or a test) might want back
// from one compile run.
type Result struct {
	SessionID string
	Files     []*source.File
	Surface   *ast.Top
	Fractured []ast.Expr
	Compiled  []ast.Expr
	Arena     *types.Arena
	Info      *types.Info
	OK        bool
}

// Compile runs the full pipeline over every file discovered under roots,
// reporting diagnostics to sink rather than returning an error for
// user-facing compile failures — only a collaborator failure (I/O, a
// missing enumerator) is returned as an error. A diag.Internal panicked by
// any pass is recovered here, reported to sink as an InternalError
// diagnostic, and turned into a non-ok Result rather than crashing the
// process.
func (p *Pipeline) Compile(roots []string, sink *diag.Sink) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			internal, ok := r.(diag.Internal)
			if !ok {
				panic(r)
			}
			sink.Errorf(diag.InternalError, source.EmptyLocation, "%s", internal.Error())
			result = &Result{OK: false}
			err = nil
		}
	}()
	return p.compile(roots, sink)
}

func (p *Pipeline) compile(roots []string, sink *diag.Sink) (*Result, error) {
	sessionID := uuid.NewString()
	log := p.Logger.With("session", sessionID)

	log.Infow("enumerate")
	var files []*source.File
	for _, root := range roots {
		found, err := p.Enumerator.BySourcePath(root, sourceExtension)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	log.Infow("parse", "files", len(files))
	prefixes := make([]string, len(files))
	defMaps := make([]*ast.DefMap, len(files))
	for i, f := range files {
		defMaps[i] = parser.ParseFile(f, sink)
		prefixes[i] = source.Digest(f)
	}

	builtinLoc := source.EmptyLocation
	allDefMaps := append([]*ast.DefMap{resolve.Builtins(builtinLoc)}, defMaps...)
	allPrefixes := append([]string{"builtin"}, prefixes...)
	top := ast.NewTop(builtinLoc, allDefMaps, allPrefixes, sink)

	sums := pattern.Prelude()

	log.Infow("lower constructors")
	top = resolve.LowerConstructors(top, sums, sink)

	log.Infow("fracture")
	fractured := resolve.Fracture(top, sums, sink)

	log.Infow("pattern-compile")
	compiler := pattern.NewCompiler(sums, sink)
	compiled := make([]ast.Expr, len(fractured))
	for i, e := range fractured {
		compiled[i] = pattern.CompileTree(compiler, e)
	}

	log.Infow("type-infer")
	arena := types.NewArena()
	info := types.NewInfo(arena)
	inferencer := types.NewInferencer(arena, info, sink, primitive.AsInferenceTable(p.Prims))
	for _, e := range compiled {
		inferencer.Infer(e)
	}
	inferencer.Finish()

	ok := !sink.HasErrors()
	diagCount := len(sink.Diagnostics())
	for i, f := range files {
		err := p.Database.Record(database.Entry{
			SessionID:  sessionID,
			FilePath:   f.Path,
			Digest:     prefixes[i],
			DiagCount:  diagCount,
			OK:         ok,
			RecordedAt: time.Now(),
		})
		if err != nil {
			log.Warnw("database record failed", "file", f.Path, "err", err)
		}
	}

	return &Result{
		SessionID: sessionID,
		Files:     files,
		Surface:   top,
		Fractured: fractured,
		Compiled:  compiled,
		Arena:     arena,
		Info:      info,
		OK:        ok,
	}, nil
}
