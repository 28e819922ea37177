// Command loomc is the compiler's CLI entry point: build a diagnostic
// sink, run the pipeline, flush diagnostics, exit non-zero on failure,
// following cmd/nar/nar.go's flag-parse -> sink -> compile -> flush shape
// with cobra/pflag subcommands in place of a bare flag package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"loomc/internal/config"
	"loomc/internal/database"
	"loomc/internal/diag"
	"loomc/internal/pipeline"
	"loomc/internal/primitive"
	"loomc/internal/source"
)

const version = "0.1.0"

var dumpFlag string

func main() {
	root := &cobra.Command{
		Use:   "loomc",
		Short: "loomc compiles source trees into typed definition graphs",
	}
	config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&dumpFlag, "dump", "", "dump the intermediate tree: surface|resolved")

	root.AddCommand(buildCmd(true), buildCmd(false), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the compiler version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("loomc", version)
			return nil
		},
	}
}

// buildCmd returns either the `build` or `check` subcommand; check runs
// the identical pipeline but never writes an output artifact.
func buildCmd(writeArtifact bool) *cobra.Command {
	use, short := "check <paths...>", "parse, resolve, pattern-compile and type-check without producing output"
	if writeArtifact {
		use, short = "build <paths...>", "compile and write the output artifact"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, writeArtifact)
		},
	}
}

func runCompile(cmd *cobra.Command, roots []string, writeArtifact bool) error {
	cfg, err := config.Load(".", cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if closer, ok := db.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	sink := diag.NewSink()
	p := &pipeline.Pipeline{
		Enumerator: source.FilesystemEnumerator{Package: "main"},
		Prims:      primitive.Base(),
		Database:   db,
		Logger:     logger,
	}

	result, err := p.Compile(roots, sink)
	if err != nil {
		return err
	}

	if dumpFlag != "" {
		if err := dumpTree(dumpFlag, result); err != nil {
			return err
		}
	}

	sink.Flush(os.Stdout)

	if writeArtifact && result.OK && cfg.OutPath != "" {
		if err := writeDebugArtifact(cfg.OutPath, result); err != nil {
			return err
		}
	}

	if !result.OK {
		os.Exit(1)
	}
	return nil
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func openDatabase(cfg *config.Config) (database.Sink, error) {
	if cfg.DatabasePath == "" {
		return database.NoopSink{}, nil
	}
	sink, err := database.OpenBoltSink(cfg.DatabasePath)
	if err != nil {
		return database.NoopSink{}, nil // cache directory unavailable: degrade to no-op rather than fail the compile
	}
	return sink, nil
}
