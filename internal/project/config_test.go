package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Config
		wantErr string
	}{
		{
			name:    "empty keeps defaults",
			content: "",
			want:    DefaultConfig(),
		},
		{
			name:    "full",
			content: "[project]\nscenes = \"web/game/scenes\"\nexclude = [\"old/\"]\n\n[diagnostics]\nstyle_guide = false\nmax = 20\n",
			want: Config{
				Project:     ProjectConfig{Scenes: filepath.FromSlash("web/game/scenes"), Exclude: []string{"old/"}},
				Diagnostics: DiagnosticsConfig{StyleGuide: false, Max: 20},
			},
		},
		{
			name:    "unknown key",
			content: "[project]\nstartup_file = \"a.txt\"\n",
			wantErr: "unknown keys",
		},
		{
			name:    "negative max",
			content: "[diagnostics]\nmax = -1\n",
			wantErr: "must not be negative",
		},
		{
			name:    "escaping scenes",
			content: "[project]\nscenes = \"../elsewhere\"\n",
			wantErr: "inside the project",
		},
		{
			name:    "bad toml",
			content: "[project\n",
			wantErr: "failed to parse TOML",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := LoadConfig(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if got.Project.Scenes != tt.want.Project.Scenes ||
				strings.Join(got.Project.Exclude, ",") != strings.Join(tt.want.Project.Exclude, ",") ||
				got.Diagnostics != tt.want.Diagnostics {
				t.Fatalf("config = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)
	if err := WriteConfig(path, DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := FindConfig(deep)
	if err != nil || !ok {
		t.Fatalf("FindConfig = %q, %v, %v", got, ok, err)
	}
	if got != path {
		t.Fatalf("FindConfig = %q, want %q", got, path)
	}
	cfg, err := LoadConfig(got)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Diagnostics.StyleGuide {
		t.Fatalf("written defaults did not round trip: %+v", cfg)
	}
}

func TestResolveRoot(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Diagnostics.Max = 7
	if err := WriteConfig(filepath.Join(root, ConfigFileName), cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	sub := filepath.Join(root, "scenes")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, gotCfg, err := ResolveRoot(sub)
	if err != nil {
		t.Fatalf("ResolveRoot: %v", err)
	}
	if got != root || gotCfg.Diagnostics.Max != 7 {
		t.Fatalf("ResolveRoot = %q, %+v", got, gotCfg)
	}

	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte("[project]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ResolveRoot(sub); err == nil {
		t.Fatalf("expected an error for a broken config")
	}
}
