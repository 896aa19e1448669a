package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"csls/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the ChoiceScript language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("trace", false, "log every message and diagnostics run to stderr")
	lspCmd.Flags().Duration("debounce", 0, "delay before diagnostics are regenerated (0=default)")
	lspCmd.Flags().Bool("stdio", true, "communicate over stdin/stdout")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	trace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Debounce: debounce,
		Trace:    trace,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
