package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"csls/internal/index"
	"csls/internal/project"
)

// indexSchemaVersion is bumped whenever indexDump changes shape.
const indexSchemaVersion uint16 = 1

var indexCmd = &cobra.Command{
	Use:   "index [flags] [game-directory]",
	Short: "Dump the project index of a ChoiceScript game",
	Long: `Index every scene of a game and write the resulting symbol index:
variables, labels, flow control, achievements and scene list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("format", "json", "output format (json|msgpack)")
	indexCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
}

// indexDump is the serialized form of an index.
type indexDump struct {
	Schema   uint16          `json:"schema"`
	Root     string          `json:"root"`
	SceneDir string          `json:"sceneDir"`
	Index    *index.Snapshot `json:"index"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "json" && format != "msgpack" {
		return fmt.Errorf("unknown format: %s", format)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if format == "msgpack" && output == "" && isTerminal(os.Stdout) {
		return fmt.Errorf("refusing to write msgpack to a terminal; use --output")
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

	dump := indexDump{
		Schema:   indexSchemaVersion,
		Root:     ws.Root,
		SceneDir: ws.SceneDir,
		Index:    ws.Index.Snapshot(),
	}
	if output == "" {
		return writeIndexDump(os.Stdout, dump, format)
	}
	return writeIndexFile(output, dump, format)
}

func writeIndexDump(w io.Writer, dump indexDump, format string) error {
	if format == "msgpack" {
		enc := msgpack.NewEncoder(w)
		// Field names follow the json tags.
		enc.SetCustomStructTag("json")
		return enc.Encode(dump)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

// writeIndexFile writes through a temp file so readers never see a
// partial dump.
func writeIndexFile(path string, dump indexDump, format string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".csls-index-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = writeIndexDump(f, dump, format); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
