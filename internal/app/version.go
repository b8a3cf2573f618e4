package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build information, set at link time with
// -ldflags "-X github.com/agbru/macscalc/internal/app.Version=v1.2.3 ...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request version output. It is checked
// before flag parsing so that --version works alongside invalid flags.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--version", "-version", "-V", "--V":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "macscalc %s (commit %s, built %s, %s %s/%s)\n",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
