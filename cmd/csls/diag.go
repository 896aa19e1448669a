package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"csls/internal/diag"
	"csls/internal/diagfmt"
	"csls/internal/observ"
	"csls/internal/project"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] [game-directory]",
	Short: "Check every scene of a ChoiceScript game",
	Long: `Index every scene of a game and report syntax, reference, flow-control,
indentation and style problems. The game is found from csls.toml at or above
the given directory, or by looking for startup.txt beneath it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	diagCmd.Flags().String("ui", "off", "show a progress view (auto|on|off)")
	diagCmd.Flags().Int("max", 0, "maximum number of diagnostics per scene (0=config or unlimited)")
	diagCmd.Flags().Bool("no-style", false, "disable the style guide suggestions")
	diagCmd.Flags().Bool("no-warnings", false, "report errors only")
	diagCmd.Flags().Bool("warnings-as-errors", false, "fail when there are warnings")
	diagCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	diagCmd.Flags().Bool("preview", false, "show suggested fixes applied to the source line")
	diagCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

type diagFlags struct {
	format           string
	ui               switchMode
	max              int
	noStyle          bool
	noWarnings       bool
	warningsAsErrors bool
	suggest          bool
	preview          bool
	fullPath         bool
	color            string
	jobs             int
	timings          bool
}

func readDiagFlags(cmd *cobra.Command) (diagFlags, error) {
	var f diagFlags
	var err error
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	f.format = strings.ToLower(f.format)
	if f.format != "pretty" && f.format != "json" {
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readSwitchMode("ui", uiValue); err != nil {
		return f, err
	}
	if f.max, err = cmd.Flags().GetInt("max"); err != nil {
		return f, fmt.Errorf("failed to get max flag: %w", err)
	}
	if f.noStyle, err = cmd.Flags().GetBool("no-style"); err != nil {
		return f, fmt.Errorf("failed to get no-style flag: %w", err)
	}
	if f.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return f, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if f.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return f, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if f.noWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	if f.suggest, err = cmd.Flags().GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return f, fmt.Errorf("failed to get preview flag: %w", err)
	}
	if f.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.color, err = cmd.Flags().GetString("color"); err != nil {
		return f, fmt.Errorf("failed to get color flag: %w", err)
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return f, nil
}

// runDiagnose loads the game, validates every scene and prints the
// results. It fails when any scene has errors, or warnings with
// --warnings-as-errors.
func runDiagnose(cmd *cobra.Command, args []string) error {
	flags, err := readDiagFlags(cmd)
	if err != nil {
		return err
	}
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	target, err := resolveGame(path)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	var results []project.FileDiagnostics
	var ws *project.Workspace
	if flags.ui.enabled(os.Stdout) && len(target.scenes) > 0 {
		ws, results, err = runDiagnoseWithUI(cmd.Context(), "csls diag", target, flags, timer)
	} else {
		ws, results, err = diagnoseGame(cmd.Context(), target, flags, nil, timer)
	}
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}
	reportFailed(ws)
	if err := ws.RequireStartup(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; cross-scene checks are incomplete\n", err)
	}

	endOutput := timer.Begin("output")
	reports, failed := collectReports(results, flags)
	if err := writeReports(reports, target.root, flags); err != nil {
		return err
	}
	endOutput(fmt.Sprintf("%d scenes with diagnostics", len(reports)))
	if flags.timings {
		timer.WriteSummary(os.Stderr)
	}
	if failed {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errDiagnosticsFailed
	}
	return nil
}

var errDiagnosticsFailed = errors.New("diagnostics reported errors")

// diagnoseGame loads and validates target, sending progress to sink and
// recording both phases in timer.
func diagnoseGame(ctx context.Context, target *gameTarget, flags diagFlags, sink project.ProgressSink, timer *observ.Timer) (*project.Workspace, []project.FileDiagnostics, error) {
	endLoad := timer.Begin("load")
	ws, err := project.Load(ctx, target.root, project.Options{
		Config:   target.config,
		Jobs:     flags.jobs,
		Progress: sink,
	})
	if err != nil {
		return nil, nil, err
	}
	endLoad(fmt.Sprintf("%d scenes", len(ws.Documents)))
	opts := target.config.ValidateOptions()
	if flags.noStyle {
		opts.StyleGuide = false
	}
	if flags.max > 0 {
		opts.Max = flags.max
	}
	endValidate := timer.Begin("validate")
	results, err := ws.Diagnose(ctx, opts, flags.jobs, sink)
	if err != nil {
		return ws, nil, err
	}
	total := 0
	for _, r := range results {
		total += len(r.Diagnostics)
	}
	endValidate(fmt.Sprintf("%d diagnostics", total))
	return ws, results, nil
}

// collectReports applies the severity flags and reports whether the run
// should fail.
func collectReports(results []project.FileDiagnostics, flags diagFlags) ([]diagfmt.Report, bool) {
	reports := make([]diagfmt.Report, 0, len(results))
	failed := false
	for _, r := range results {
		bag := diag.NewBag(0)
		bag.AddAll(r.Diagnostics)
		if flags.noWarnings {
			bag.Filter(func(d diag.Diagnostic) bool { return d.Severity >= diag.SevError })
		}
		if bag.HasErrors() || (flags.warningsAsErrors && bag.HasWarnings()) {
			failed = true
		}
		if bag.Len() == 0 {
			continue
		}
		reports = append(reports, diagfmt.Report{Document: r.Document, Diagnostics: bag.Items()})
	}
	return reports, failed
}

func writeReports(reports []diagfmt.Report, root string, flags diagFlags) error {
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := flags.suggest || flags.preview
	switch flags.format {
	case "json":
		if err := diagfmt.JSON(os.Stdout, reports, diagfmt.JSONOpts{
			PathMode:     pathMode,
			BaseDir:      root,
			IncludeFixes: showFixes,
		}); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	default:
		color, err := useColor(flags.color, os.Stdout)
		if err != nil {
			return err
		}
		diagfmt.Pretty(os.Stdout, reports, diagfmt.PrettyOpts{
			Color:       color,
			PathMode:    pathMode,
			BaseDir:     root,
			TabWidth:    4,
			ShowFixes:   showFixes,
			ShowPreview: flags.preview,
		})
	}
	return nil
}
