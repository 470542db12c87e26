// Package main implements the bpf-linker CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/BretasArthur1/bpf-linker/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "bpf-linker [flags] inputs...",
	Short: "Link and optimize BPF program images",
	Long:  "bpf-linker merges compiler-emitted modules into one BPF program image,\napplies the export visibility policy, optimizes and writes the final artifact.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  linkExecution,
	// Усечённый вывод ошибок: причину уже напечатал обработчик диагностик.
	SilenceUsage: true,
}

// main registers subcommands and persistent flags, then executes the root
// command. Execution failure exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	registerLinkFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color mode against the actual output stream.
func useColor(mode string, out *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(out)
	}
}
