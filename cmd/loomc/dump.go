package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"loomc/internal/pipeline"
)

// dumpTree writes the requested intermediate tree to stdout as YAML,
// satisfying the pretty-printed debug output requirement with a real
// structured-serialization library instead of a hand-rolled printer.
func dumpTree(which string, result *pipeline.Result) error {
	var v any
	switch which {
	case "surface":
		v = result.Surface
	case "resolved":
		v = result.Fractured
	default:
		return fmt.Errorf("unknown --dump value %q (want surface|resolved)", which)
	}
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(v)
}

func writeDebugArtifact(path string, result *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	defer enc.Close()
	return enc.Encode(result.Compiled)
}
