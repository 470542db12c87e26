package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BretasArthur1/bpf-linker/internal/backend"
	"github.com/BretasArthur1/bpf-linker/internal/diag"
	"github.com/BretasArthur1/bpf-linker/internal/linker"
)

// maxParallelReads bounds the input-reading goroutines; inputs can be many
// small per-crate objects.
const maxParallelReads = 8

func registerLinkFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output file path (required)")
	cmd.Flags().String("emit", "obj", "output kind (obj|asm|ll|bc)")
	cmd.Flags().String("target", "", "target triple (bpf|bpfel|bpfeb); defaults to the triple recorded in the inputs")
	cmd.Flags().String("cpu", "generic", "processor generation (generic|probe|v1|v2|v3|v4)")
	cmd.Flags().String("cpu-features", "", "additional machine feature string")
	cmd.Flags().StringP("opt-level", "O", "2", "optimization level (0|1|2|3|s|z)")
	cmd.Flags().StringArray("export", nil, "symbol to keep externally visible (repeatable)")
	cmd.Flags().Bool("btf", false, "keep debug info for BTF generation")
	cmd.Flags().Bool("ignore-inline-never", false, "drop inlining-suppression attributes from all functions")
	cmd.Flags().String("dump-module", "", "write the pre-optimization IR to this path")
	cmd.Flags().StringArray("backend-args", nil, "extra options handed to the backend (repeatable)")
	cmd.Flags().String("config", "", "path to a TOML config file with [linker] defaults")

	_ = cmd.MarkFlagRequired("output")
}

func linkExecution(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	if configPath != "" {
		if err := applyConfigDefaults(cmd, configPath); err != nil {
			return err
		}
	}

	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	emit, err := flags.GetString("emit")
	if err != nil {
		return err
	}
	target, err := flags.GetString("target")
	if err != nil {
		return err
	}
	cpu, err := flags.GetString("cpu")
	if err != nil {
		return err
	}
	cpuFeatures, err := flags.GetString("cpu-features")
	if err != nil {
		return err
	}
	optValue, err := flags.GetString("opt-level")
	if err != nil {
		return err
	}
	exports, err := flags.GetStringArray("export")
	if err != nil {
		return err
	}
	btf, err := flags.GetBool("btf")
	if err != nil {
		return err
	}
	ignoreInlineNever, err := flags.GetBool("ignore-inline-never")
	if err != nil {
		return err
	}
	dumpModule, err := flags.GetString("dump-module")
	if err != nil {
		return err
	}
	backendArgs, err := flags.GetStringArray("backend-args")
	if err != nil {
		return err
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	outputKind, err := backend.ParseOutputKind(emit)
	if err != nil {
		return err
	}
	optLevel, err := linker.ParseOptLevel(optValue)
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	handler := diag.NewWriter(os.Stderr, useColor(colorMode, os.Stderr), quiet)

	backend.Init(backendArgs)
	backend.SetFatalHandler(func(reason string) {
		diag.Error(handler, fmt.Sprintf("fatal backend error: %s", reason))
	})

	l := linker.New(linker.Options{
		Inputs:            inputs,
		Output:            output,
		OutputKind:        outputKind,
		Target:            target,
		CPU:               cpu,
		CPUFeatures:       cpuFeatures,
		Exports:           exports,
		OptLevel:          optLevel,
		BTF:               btf,
		IgnoreInlineNever: ignoreInlineNever,
		DumpModule:        dumpModule,
	}, handler)
	return l.Link()
}

// readInputs loads every input file up front, in parallel. Early reads turn
// missing files into errors before any linking work starts.
func readInputs(cmd *cobra.Command, paths []string) ([]linker.Input, error) {
	inputs := make([]linker.Input, len(paths))
	g, _ := errgroup.WithContext(cmd.Context())
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read input %s: %w", path, err)
			}
			inputs[i] = linker.Input{Path: path, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}
