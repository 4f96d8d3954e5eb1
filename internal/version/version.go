package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the lunar CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with major/minor/patch in distinct colours.
// Anything that is not "X.Y.Z[-suffix]" is returned as is.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Banner is the text printed by `lunar version`.
func Banner() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "lunar %s", Colored())
	if GitCommit != "" {
		fmt.Fprintf(&sb, " (%s)", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&sb, " built %s", BuildDate)
	}
	return sb.String()
}
