package version

import "github.com/fatih/color"

// Version information for the csls CLI.
// These variables can be overridden at build time via -ldflags.
var (
	Major  = "0"
	Minor  = "1"
	Patch  = "0"
	Suffix = "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Plain returns the semantic version without decoration.
func Plain() string {
	return Major + "." + Minor + "." + Patch + Suffix
}

// Colored returns the version with each component colored. Color output
// follows color.NoColor.
func Colored() string {
	return majorColor.Sprint(Major) + "." + minorColor.Sprint(Minor) + "." + patchColor.Sprint(Patch) + Suffix
}

// Details lists the optional build metadata that is set.
func Details() []string {
	var out []string
	if GitCommit != "" {
		out = append(out, "commit "+GitCommit)
	}
	if BuildDate != "" {
		out = append(out, "built "+BuildDate)
	}
	return out
}
