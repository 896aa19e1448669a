package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"csls/internal/diag"
	"csls/internal/fix"
	"csls/internal/observ"
	"csls/internal/project"
	"csls/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [game-directory]",
	Short: "Apply suggested fixes to the scenes of a game",
	Long: `Run diagnostics over every scene and apply the replacements they suggest.
Without flags only the first fix of the game is applied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every available fix")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("code", "", "apply fixes of one diagnostic code, e.g. STY5001")
	fixCmd.Flags().Bool("dry-run", false, "report fixes without writing files")
}

func readFixOptions(cmd *cobra.Command) (fix.ApplyOptions, bool, error) {
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fix.ApplyOptions{}, false, fmt.Errorf("failed to get all flag: %w", err)
	}
	applyOnce, err := cmd.Flags().GetBool("once")
	if err != nil {
		return fix.ApplyOptions{}, false, fmt.Errorf("failed to get once flag: %w", err)
	}
	codeID, err := cmd.Flags().GetString("code")
	if err != nil {
		return fix.ApplyOptions{}, false, fmt.Errorf("failed to get code flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fix.ApplyOptions{}, false, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	if codeID != "" && (applyAll || applyOnce) {
		return fix.ApplyOptions{}, false, fmt.Errorf("--code cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fix.ApplyOptions{}, false, fmt.Errorf("--all and --once are mutually exclusive")
	}
	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce}
	switch {
	case codeID != "":
		code, ok := diag.ParseCode(codeID)
		if !ok {
			return opts, false, fmt.Errorf("unknown diagnostic code: %s", codeID)
		}
		opts = fix.ApplyOptions{Mode: fix.ApplyModeCode, Code: code}
	case applyAll:
		opts.Mode = fix.ApplyModeAll
	}
	return opts, dryRun, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	opts, dryRun, err := readFixOptions(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	target, err := resolveGame(path)
	if err != nil {
		return err
	}
	ws, results, err := diagnoseGame(cmd.Context(), target, diagFlags{jobs: jobs}, nil, observ.NewTimer())
	if err != nil {
		return fmt.Errorf("fix: diagnose failed: %w", err)
	}
	reportFailed(ws)
	_, err = applyFixes(os.Stdout, results, opts, dryRun)
	return err
}

// applyFixes fixes every scene in results and prints what changed. In
// ApplyModeOnce it stops after the first changed scene.
func applyFixes(w io.Writer, results []project.FileDiagnostics, opts fix.ApplyOptions, dryRun bool) (int, error) {
	applied := 0
	for _, r := range results {
		res, err := fix.Apply(r.Document, r.Diagnostics, opts)
		if errors.Is(err, fix.ErrNoFixes) && !res.Changed() {
			continue
		}
		if err != nil {
			return applied, err
		}
		if !dryRun {
			if err := fix.Write(res); err != nil {
				return applied, err
			}
		}
		name := source.FileName(r.Document.URI)
		for _, item := range res.Applied {
			line := r.Document.PositionAt(item.Span.Start).Line + 1
			fmt.Fprintf(w, "%s:%d: %s [%s]\n", name, line, item.Title, item.Code.ID())
		}
		for _, skip := range res.Skipped {
			fmt.Fprintf(w, "%s: skipped %s [%s]: %s\n", name, skip.Title, skip.Code.ID(), skip.Reason)
		}
		applied += len(res.Applied)
		if opts.Mode == fix.ApplyModeOnce {
			break
		}
	}
	switch {
	case applied == 0:
		fmt.Fprintln(w, "No applicable fixes found.")
	case dryRun:
		fmt.Fprintf(w, "%d fix(es) available.\n", applied)
	default:
		fmt.Fprintf(w, "Applied %d fix(es).\n", applied)
	}
	return applied, nil
}
