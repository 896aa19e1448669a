package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"csls/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "csls",
	Short: "ChoiceScript language server and checker",
	Long:  `csls indexes ChoiceScript games, reports diagnostics and serves editors over the Language Server Protocol`,
}

// main registers the subcommands and global flags and runs the root
// command. A failing command exits with status 1.
func main() {
	rootCmd.Version = version.Plain()

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel workers (0=auto)")
	rootCmd.PersistentFlags().Bool("timings", false, "print how long each phase took to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
