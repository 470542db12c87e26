// Package backend is the compilation backend the link pipeline drives.
//
// It owns everything IR-shaped: parsing textual IR and bitcode, merging
// modules, symbol linkage and visibility mutation, target resolution, pass
// pipelines, debug-info stripping and artifact emission. All state hangs off
// a Context created with a bound diagnostic handler; the pipeline above only
// ever sees Context, Module, TargetMachine and Value handles.
//
// The package is not safe for concurrent use: one Context serves exactly one
// sequential pipeline run.
package backend
