package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

var (
	// Check if output supports colors
	supportsColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// Color functions
	ColorSuccess  = colorFunc(ansi.Green)
	ColorError    = colorFunc(ansi.Red)
	ColorWarning  = colorFunc(ansi.Yellow)
	ColorInfo     = colorFunc(ansi.Cyan)
	ColorProgress = colorFunc(ansi.Blue)
	ColorBold     = colorFunc("default+b")
	ColorDim      = colorFunc("default+h")
)

// colorFunc returns a function that colors text if supported
func colorFunc(color string) func(string) string {
	return func(text string) string {
		if supportsColor {
			return ansi.Color(text, color)
		}
		return text
	}
}

// ShowHeader displays a formatted header. The box grows to fit long
// titles; schema names can be up to 255 characters.
func ShowHeader(title string) {
	width := 50
	if len(title)+4 > width {
		width = len(title) + 4
	}
	padding := (width - len(title) - 2) / 2

	fmt.Println("\n+" + strings.Repeat("-", width-2) + "+")
	fmt.Printf("|%s%s%s|\n",
		strings.Repeat(" ", padding),
		ColorBold(title),
		strings.Repeat(" ", width-2-padding-len(title)),
	)
	fmt.Println("+" + strings.Repeat("-", width-2) + "+")
}

// ShowError displays a formatted error message
func ShowError(err error) {
	fmt.Printf("\n%s\n", ColorError("ERROR:"))

	message := err.Error()
	for i, line := range strings.Split(message, "\n") {
		if i == 0 {
			fmt.Printf("  %s\n", line)
		} else {
			fmt.Printf("  %s\n", ColorDim(line))
		}
	}

	if suggestion := getSuggestion(message); suggestion != "" {
		fmt.Printf("\n  %s %s\n", ColorInfo("TIP:"), ColorInfo(suggestion))
	}
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	fmt.Printf("%s %s\n", ColorSuccess("SUCCESS:"), message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	fmt.Printf("%s %s\n", ColorWarning("WARNING:"), ColorWarning(message))
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	fmt.Printf("%s %s\n", ColorInfo("INFO:"), message)
}

// getSuggestion returns helpful suggestions based on error messages
func getSuggestion(error string) string {
	lower := strings.ToLower(error)

	switch {
	case strings.Contains(lower, "authentication"):
		return "Check your user and password in the [connection] section"
	case strings.Contains(lower, "failed to start the snowsql client"):
		return "Verify snowsql_path in the [snowsql] section of config.ini"
	case strings.Contains(lower, "sql compilation error"):
		return "Review the SQL syntax in the affected file"
	case strings.Contains(lower, "does not exist"):
		return "Verify the schema and objects exist in the target database"
	case strings.Contains(lower, "schema mismatch") || strings.Contains(lower, "creates objects in schema"):
		return "File prefixes must match the schema used in their SQL statements"
	default:
		return ""
	}
}
