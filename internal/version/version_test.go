package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersionStrings(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	if got := Colored(); got != Plain() {
		t.Fatalf("Colored() = %q with color disabled, want %q", got, Plain())
	}
	if Plain() != "0.1.0-dev" {
		t.Fatalf("Plain() = %q", Plain())
	}
}

func TestDetails(t *testing.T) {
	GitCommit, BuildDate = "abc123", ""
	defer func() { GitCommit = "" }()
	got := Details()
	if len(got) != 1 || got[0] != "commit abc123" {
		t.Fatalf("Details() = %v", got)
	}
}
