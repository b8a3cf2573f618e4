// Package ui provides theme and color support for the application's user interface.
// It defines color schemes and provides ANSI escape code functions for consistent
// styling across the CLI and other presentation layers. Colors are disabled
// when NO_COLOR is set, with --no-color, or when output is not a terminal.
package ui
