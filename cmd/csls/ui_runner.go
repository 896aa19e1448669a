package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"csls/internal/observ"
	"csls/internal/project"
	"csls/internal/ui"
)

type diagOutcome struct {
	ws      *project.Workspace
	results []project.FileDiagnostics
	err     error
}

// runDiagnoseWithUI runs diagnoseGame in the background while a progress
// view follows its events.
func runDiagnoseWithUI(ctx context.Context, title string, target *gameTarget, flags diagFlags, timer *observ.Timer) (*project.Workspace, []project.FileDiagnostics, error) {
	events := make(chan project.Event, 256)
	outcomeCh := make(chan diagOutcome, 1)

	go func() {
		ws, results, err := diagnoseGame(ctx, target, flags, project.ChannelSink{Ch: events}, timer)
		outcomeCh <- diagOutcome{ws: ws, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, target.scenes, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The view may quit before the run ends; keep the sender unblocked.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.ws, outcome.results, uiErr
	}
	return outcome.ws, outcome.results, outcome.err
}
