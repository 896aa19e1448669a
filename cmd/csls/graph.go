package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"csls/internal/index"
	"csls/internal/project"
	"csls/internal/project/dag"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [game-directory]",
	Short: "Show how the scenes of a game connect",
	Long: `Build the scene flow graph from the scene list and every *goto_scene and
*gosub_scene, walk it from startup and list the scenes that are never
reached or do not exist.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("format", "text", "output format (text|dot|json)")
	graphCmd.Flags().Bool("strict", false, "fail when a scene is unreachable or missing")
}

type graphEdgeJSON struct {
	To   string `json:"to"`
	Kind string `json:"kind"`
	Line int    `json:"line,omitempty"`
}

type graphSceneJSON struct {
	Name    string          `json:"name"`
	Present bool            `json:"present"`
	Level   int             `json:"level"` // -1 when unreachable
	Edges   []graphEdgeJSON `json:"edges,omitempty"`
}

type graphOutput struct {
	Start       string           `json:"start"`
	Scenes      []graphSceneJSON `json:"scenes"`
	Unreachable []string         `json:"unreachable"`
	Missing     []string         `json:"missing"`
}

var errSceneGraphIncomplete = errors.New("scene graph has unreachable or missing scenes")

func runGraph(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "text" && format != "dot" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
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
	ws, err := project.Load(cmd.Context(), target.root, project.Options{Config: target.config, Jobs: jobs})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	reportFailed(ws)
	if err := ws.RequireStartup(); err != nil {
		return err
	}

	out, err := buildGraphOutput(ws.Index)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode graph: %w", err)
		}
	case "dot":
		writeGraphDot(os.Stdout, out)
	default:
		writeGraphText(os.Stdout, out)
	}
	if strict && (len(out.Unreachable) > 0 || len(out.Missing) > 0) {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errSceneGraphIncomplete
	}
	return nil
}

// buildGraphOutput walks the scene graph from the startup scene.
func buildGraphOutput(idx *index.Index) (*graphOutput, error) {
	si := dag.BuildIndex(idx)
	start, ok := si.Lookup("startup")
	if !ok {
		return nil, fmt.Errorf("no startup scene indexed")
	}
	g := dag.BuildGraph(si, idx)
	walk := dag.WalkFrom(g, start)

	level := make([]int, len(si.IDToName))
	for i := range level {
		level[i] = -1
	}
	for depth, ids := range walk.Levels {
		for _, id := range ids {
			level[int(id)] = depth
		}
	}
	out := &graphOutput{
		Start:       si.IDToName[int(start)],
		Scenes:      make([]graphSceneJSON, 0, len(si.IDToName)),
		Unreachable: si.Names(walk.Unreachable),
		Missing:     si.Names(walk.Missing),
	}
	for i, name := range si.IDToName {
		scene := graphSceneJSON{Name: name, Present: g.Present[i], Level: level[i]}
		for _, e := range g.Edges[i] {
			edge := graphEdgeJSON{To: si.IDToName[int(e.To)], Kind: e.Kind.String()}
			if e.At != nil {
				edge.Line = e.At.Range.Start.Line + 1
			}
			scene.Edges = append(scene.Edges, edge)
		}
		out.Scenes = append(out.Scenes, scene)
	}
	return out, nil
}

func writeGraphText(w io.Writer, out *graphOutput) {
	for _, scene := range out.Scenes {
		switch {
		case !scene.Present:
			fmt.Fprintf(w, "%s (missing)\n", scene.Name)
			continue
		case scene.Level < 0:
			fmt.Fprintf(w, "%s (unreachable)\n", scene.Name)
		default:
			fmt.Fprintf(w, "%s (depth %d)\n", scene.Name, scene.Level)
		}
		for _, e := range scene.Edges {
			if e.Line > 0 {
				fmt.Fprintf(w, "  -> %s [%s, line %d]\n", e.To, e.Kind, e.Line)
			} else {
				fmt.Fprintf(w, "  -> %s [%s]\n", e.To, e.Kind)
			}
		}
	}
	if len(out.Unreachable) > 0 {
		fmt.Fprintf(w, "unreachable from %s: %s\n", out.Start, strings.Join(out.Unreachable, ", "))
	}
	if len(out.Missing) > 0 {
		fmt.Fprintf(w, "missing scenes: %s\n", strings.Join(out.Missing, ", "))
	}
}

// writeGraphDot renders Graphviz input. Scene-list order is dashed and
// missing scenes are drawn red.
func writeGraphDot(w io.Writer, out *graphOutput) {
	fmt.Fprintln(w, "digraph scenes {")
	for _, scene := range out.Scenes {
		attrs := ""
		switch {
		case !scene.Present:
			attrs = " [color=red]"
		case scene.Level < 0:
			attrs = " [style=dotted]"
		}
		fmt.Fprintf(w, "  %q%s;\n", scene.Name, attrs)
	}
	for _, scene := range out.Scenes {
		for _, e := range scene.Edges {
			switch e.Kind {
			case "next":
				fmt.Fprintf(w, "  %q -> %q [style=dashed];\n", scene.Name, e.To)
			case "gosub_scene":
				fmt.Fprintf(w, "  %q -> %q [label=gosub];\n", scene.Name, e.To)
			default:
				fmt.Fprintf(w, "  %q -> %q;\n", scene.Name, e.To)
			}
		}
	}
	fmt.Fprintln(w, "}")
}
