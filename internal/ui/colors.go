package ui

// ColorReset returns the escape code clearing all formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorBold returns the escape code for bold text.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the escape code for underlined text.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary accent color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorCyan returns the informational color.
func ColorCyan() string { return GetCurrentTheme().Info }

// ColorGrey returns the secondary color.
func ColorGrey() string { return GetCurrentTheme().Secondary }
