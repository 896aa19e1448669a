package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"csls/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [game-directory]",
	Short: "Write a csls.toml for a ChoiceScript game",
	Long: `Initialize writes csls.toml with the default settings into the given
directory, or the current one. The scene directory is recorded when a
startup.txt is found beneath it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing csls.toml")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		return err
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	path := filepath.Join(target, project.ConfigFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("already initialized: %s exists", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg, err := initialConfig(target)
	if err != nil {
		return err
	}
	if err := project.WriteConfig(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	if cfg.Project.Scenes != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  scenes = %q\n", cfg.Project.Scenes)
	}
	return nil
}

// initialConfig returns the defaults, pinned to the scene directory found
// under root when it is not root itself.
func initialConfig(root string) (project.Config, error) {
	cfg := project.DefaultConfig()
	m := project.NewMatcher(root, nil)
	dir, err := project.FindSceneDir(root, cfg, m)
	if err != nil {
		return cfg, err
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return cfg, err
	}
	if rel != "." {
		cfg.Project.Scenes = filepath.ToSlash(rel)
	}
	return cfg, nil
}
