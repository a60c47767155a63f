package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// FormatForTerminal formats a diagnostic for terminal output with ANSI colors
func (d Diagnostic) FormatForTerminal() string {
	var sb strings.Builder

	severityColor := getSeverityColor(d.Severity)
	sb.WriteString(fmt.Sprintf("%s%s[%s]%s: %s\n",
		colorBold+severityColor,
		strings.Title(d.Severity.String()),
		d.Code,
		colorReset,
		d.Message))

	where := d.Location.File
	if d.Location.Element != "" {
		where = d.Location.Element
	}
	sb.WriteString(fmt.Sprintf("  %s-->%s %s:%d:%d\n",
		colorCyan,
		colorReset,
		where,
		d.Location.Line,
		d.Location.Column))

	if d.Context != nil {
		sb.WriteString(formatSourceContext(*d.Context))
	}

	return sb.String()
}

// formatSourceContext renders the source line with a caret under the column
// the diagnostic points at
func formatSourceContext(ctx SourceContext) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("   %s|%s\n", colorBlue, colorReset))
	sb.WriteString(fmt.Sprintf("   %s|%s %s\n", colorBlue, colorReset, ctx.Line))
	sb.WriteString(fmt.Sprintf("   %s|%s ", colorBlue, colorReset))

	for j := 1; j < ctx.Highlight; j++ {
		sb.WriteString(" ")
	}
	sb.WriteString(fmt.Sprintf("%s^%s\n", colorRed, colorReset))

	return sb.String()
}

// getSeverityColor returns the ANSI color for a severity level
func getSeverityColor(severity Severity) string {
	switch severity {
	case Info:
		return colorBlue
	case Warning:
		return colorYellow
	case Error:
		return colorRed
	case Fatal:
		return colorRed + colorBold
	default:
		return colorReset
	}
}

// FormatSummary formats a summary of errors and warnings
func FormatSummary(errorCount, warningCount int) string {
	var parts []string

	if errorCount > 0 {
		parts = append(parts, fmt.Sprintf("%s%d error(s)%s",
			colorRed,
			errorCount,
			colorReset))
	}

	if warningCount > 0 {
		parts = append(parts, fmt.Sprintf("%s%d warning(s)%s",
			colorYellow,
			warningCount,
			colorReset))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%sNo errors or warnings%s\n", colorBlue, colorReset)
	}

	return fmt.Sprintf("\n%sCompilation failed with %s%s\n",
		colorBold,
		strings.Join(parts, " and "),
		colorReset)
}

// StripColors removes ANSI color codes from a string (useful for testing)
func StripColors(s string) string {
	result := s
	result = strings.ReplaceAll(result, colorReset, "")
	result = strings.ReplaceAll(result, colorRed, "")
	result = strings.ReplaceAll(result, colorYellow, "")
	result = strings.ReplaceAll(result, colorBlue, "")
	result = strings.ReplaceAll(result, colorCyan, "")
	result = strings.ReplaceAll(result, colorGray, "")
	result = strings.ReplaceAll(result, colorBold, "")

	for strings.Contains(result, "\033[") {
		start := strings.Index(result, "\033[")
		end := strings.Index(result[start:], "m")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}

	return result
}
