package main

import (
	"fmt"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// linkerConfig mirrors the [linker] table of a config file. Every field is a
// default: a flag given on the command line always wins.
type linkerConfig struct {
	Emit              string   `toml:"emit"`
	Target            string   `toml:"target"`
	CPU               string   `toml:"cpu"`
	CPUFeatures       string   `toml:"cpu-features"`
	OptLevel          string   `toml:"opt-level"`
	Exports           []string `toml:"export"`
	BTF               *bool    `toml:"btf"`
	IgnoreInlineNever *bool    `toml:"ignore-inline-never"`
}

type configFile struct {
	Linker linkerConfig `toml:"linker"`
}

// applyConfigDefaults layers the config file under the command line: only
// flags the user did not set on the invocation are touched.
func applyConfigDefaults(cmd *cobra.Command, path string) error {
	var cfg configFile
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	lc := cfg.Linker

	flags := cmd.Flags()
	setString := func(name, value string) error {
		if value == "" || flags.Changed(name) {
			return nil
		}
		return flags.Set(name, value)
	}
	if err := setString("emit", lc.Emit); err != nil {
		return err
	}
	if err := setString("target", lc.Target); err != nil {
		return err
	}
	if err := setString("cpu", lc.CPU); err != nil {
		return err
	}
	if err := setString("cpu-features", lc.CPUFeatures); err != nil {
		return err
	}
	if err := setString("opt-level", lc.OptLevel); err != nil {
		return err
	}
	if !flags.Changed("export") {
		for _, name := range lc.Exports {
			if err := flags.Set("export", name); err != nil {
				return err
			}
		}
	}
	if lc.BTF != nil && !flags.Changed("btf") {
		if err := flags.Set("btf", strconv.FormatBool(*lc.BTF)); err != nil {
			return err
		}
	}
	if lc.IgnoreInlineNever != nil && !flags.Changed("ignore-inline-never") {
		if err := flags.Set("ignore-inline-never", strconv.FormatBool(*lc.IgnoreInlineNever)); err != nil {
			return err
		}
	}
	return nil
}
