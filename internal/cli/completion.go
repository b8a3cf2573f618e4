package cli

import (
	"fmt"
	"io"
	"strings"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "help")
	Short     string   // short flag without "-" (e.g., "h")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/no suggestions)
	ValueName string   // label for the value in zsh (e.g., "keV", "duration")
	IsFile    bool     // true if the flag takes a file path
	IsLibrary bool     // true if values come from the library list (dynamic)
	Section   string   // fish comment section
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message", Section: "Help and version"},
	{Long: "version", Short: "V", Help: "Show version information", Section: "Help and version"},
	{Long: "target", Help: "Target nuclide", Values: []string{"Mo-94", "Fe-56", "Au-197", "Lu-177m"}, ValueName: "nuclide", Section: "Data selection"},
	{Long: "library", Help: "Evaluated library", IsLibrary: true, ValueName: "library", Section: "Data selection"},
	{Long: "reaction", Help: "Reaction code", Values: []string{"n,g", "n,p", "n,a"}, ValueName: "reaction", Section: "Data selection"},
	{Long: "data-file", Help: "Local cross-section file", IsFile: true, ValueName: "file", Section: "Data selection"},
	{Long: "endpoint", Help: "EXFOR service base URL", ValueName: "url", Section: "Data selection"},
	{Long: "temperatures", Help: "Temperatures kT in keV", Values: []string{"8,25,30,90", "30", "5,10,15,20,25,30,40,50,60,80,100"}, ValueName: "keV", Section: "Calculation"},
	{Long: "mass", Help: "Target mass number", ValueName: "number", Section: "Calculation"},
	{Long: "no-reduced-mass", Help: "Disable the reduced-mass correction", Section: "Calculation"},
	{Long: "nodes-per-scale", Help: "Quadrature nodes per kT", Values: []string{"8", "16", "32", "64", "128"}, ValueName: "nodes", Section: "Calculation"},
	{Long: "min-coverage", Help: "Minimum Maxwellian weight coverage", Values: []string{"0", "0.5", "0.9", "0.99"}, ValueName: "fraction", Section: "Calculation"},
	{Long: "parallel", Help: "Concurrent temperatures", ValueName: "number", Section: "Calculation"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"30s", "1m", "2m", "5m", "10m"}, ValueName: "duration", Section: "Calculation"},
	{Long: "format", Help: "Output format", Values: []string{"text", "csv", "json"}, ValueName: "format", Section: "Output options"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file", Section: "Output options"},
	{Long: "metrics-file", Help: "Prometheus textfile path", IsFile: true, ValueName: "file", Section: "Output options"},
	{Long: "config", Help: "YAML configuration file", IsFile: true, ValueName: "file", Section: "Output options"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts", Section: "Output options"},
	{Long: "verbose", Short: "v", Help: "Show coverage and debug logs", Section: "Output options"},
	{Long: "no-color", Help: "Disable colored output", Section: "Output options"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell", Section: "Completion"},
}

// fishSections is the order of comment sections in the fish script.
var fishSections = []string{"Help and version", "Data selection", "Calculation", "Output options", "Completion"}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//   - libraries: Evaluated library names offered for --library.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, libraries []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, libraries)
	case "zsh":
		return generateZshCompletion(out, libraries)
	case "fish":
		return generateFishCompletion(out, libraries)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, libraries)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// quoteAll wraps each value in single quotes. Library names contain
// slashes and dots, and some values contain commas.
func quoteAll(values []string) []string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return quoted
}

// generateBashCompletion generates a Bash completion script.
func generateBashCompletion(out io.Writer, libraries []string) error {
	var opts []string
	for _, f := range flagRegistry {
		if f.Long != "" {
			opts = append(opts, "--"+f.Long)
		}
		if f.Short != "" {
			opts = append(opts, "-"+f.Short)
		}
	}

	var caseBody strings.Builder
	writeCase := func(patterns []string, body string) {
		caseBody.WriteString("        ")
		caseBody.WriteString(strings.Join(patterns, "|"))
		caseBody.WriteString(")\n            ")
		caseBody.WriteString(body)
		caseBody.WriteString("\n            return 0\n            ;;\n")
	}

	var filePatterns []string
	for _, f := range flagRegistry {
		switch {
		case f.IsLibrary:
			writeCase([]string{"--" + f.Long}, `COMPREPLY=( $(compgen -W "${libraries}" -- "${cur}") )`)
		case f.IsFile:
			if f.Long != "" {
				filePatterns = append(filePatterns, "--"+f.Long)
			}
			if f.Short != "" {
				filePatterns = append(filePatterns, "-"+f.Short)
			}
		case len(f.Values) > 0:
			writeCase([]string{"--" + f.Long},
				fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")))
		}
	}
	if len(filePatterns) > 0 {
		writeCase(filePatterns, `COMPREPLY=( $(compgen -f -- "${cur}") )`)
	}

	script := fmt.Sprintf(`# Bash completion script for macscalc
# Add this to your ~/.bashrc or ~/.bash_completion

_macscalc_completions() {
    local cur prev opts libraries
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Main options
    opts="%s"

    # Known evaluated libraries
    libraries="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _macscalc_completions macscalc
`, strings.Join(opts, " "), strings.Join(libraries, " "), caseBody.String())

	_, err := fmt.Fprint(out, script)
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

// generateZshCompletion generates a Zsh completion script.
func generateZshCompletion(out io.Writer, libraries []string) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	script := fmt.Sprintf(`#compdef macscalc

# Zsh completion script for macscalc
# Add this to your ~/.zshrc or place in $fpath

_macscalc() {
    local -a libraries
    libraries=(%s)

    _arguments -s \
%s
}

_macscalc "$@"
`, strings.Join(quoteAll(libraries), " "), strings.Join(args, " \\\n"))

	_, err := fmt.Fprint(out, script)
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsLibrary:
		valueSuffix = fmt.Sprintf(":%s:($libraries)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

// generateFishCompletion generates a Fish completion script.
func generateFishCompletion(out io.Writer, libraries []string) error {
	lines := []string{
		"# Fish completion script for macscalc",
		"# Add this to ~/.config/fish/completions/macscalc.fish",
		"",
		"# Disable file completion by default",
		"complete -c macscalc -f",
		"",
	}

	libList := strings.Join(quoteAll(libraries), " ")
	for _, sec := range fishSections {
		lines = append(lines, "# "+sec)
		for _, f := range flagRegistry {
			if f.Section == sec {
				lines = append(lines, fishCompleteLine(f, libList))
			}
		}
		lines = append(lines, "")
	}

	_, err := fmt.Fprint(out, strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion, libList string) string {
	parts := []string{"complete -c macscalc"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsLibrary:
		parts = append(parts, fmt.Sprintf(`-xa "%s"`, libList))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

// generatePowerShellCompletion generates a PowerShell completion script.
func generatePowerShellCompletion(out io.Writer, libraries []string) error {
	var optionEntries []string
	for _, f := range flagRegistry {
		if f.Short != "" {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '-%s'; Description = '%s' }", f.Short, f.Help))
		}
		if f.Long != "" {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '--%s'; Description = '%s' }", f.Long, f.Help))
		}
	}

	psSwitchEntry := func(flag, values string) string {
		return fmt.Sprintf(`        '--%s' {
            %s | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, flag, values)
	}

	var switchEntries []string
	for _, f := range flagRegistry {
		switch {
		case f.IsLibrary:
			switchEntries = append(switchEntries, psSwitchEntry(f.Long, "$macscalcLibraries"))
		case !f.IsFile && len(f.Values) > 0:
			switchEntries = append(switchEntries,
				psSwitchEntry(f.Long, "@("+strings.Join(quoteAll(f.Values), ", ")+")"))
		}
	}

	script := fmt.Sprintf(`# PowerShell completion script for macscalc
# Add this to your $PROFILE

$macscalcLibraries = @(%s)

Register-ArgumentCompleter -CommandName 'macscalc' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    # Context-aware completions
    switch ($prevElement) {
%s
    }

    # Default: show options
    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, strings.Join(quoteAll(libraries), ", "), strings.Join(optionEntries, "\n"), strings.Join(switchEntries, "\n"))

	_, err := fmt.Fprint(out, script)
	return err
}

// flagKey returns the identifier used for lookups: Long name if present, else Short.
func flagKey(f FlagCompletion) string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}
