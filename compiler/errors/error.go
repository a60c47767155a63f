// Package errors defines the diagnostics shared by all compilation phases:
// loading the meta-model, parsing the invariants, inferring the constraints
// and generating the artifacts.
package errors

import (
	"encoding/json"
	"fmt"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// SourceLocation represents a location in the meta-model source.
// For diagnostics about invariant bodies, Line and Column are relative to
// the body text and Element names the enclosing class or primitive.
type SourceLocation struct {
	File    string `json:"file"`
	Element string `json:"element,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// SourceContext carries the source line a diagnostic points into
type SourceContext struct {
	Line      string `json:"line"`
	Highlight int    `json:"highlight"` // Column of the caret, 1-indexed
}

// Diagnostic is a single finding of a compilation phase
type Diagnostic struct {
	Phase    string         // "loader", "parser", "infer", "codegen"
	Code     string         // "INF101", "PAR001", ...
	Message  string         // Human-readable message
	Location SourceLocation // Where in the meta-model source
	Severity Severity
	Context  *SourceContext // Optional source line with a caret
}

// Error implements the error interface
func (d Diagnostic) Error() string {
	if d.Location.Element != "" {
		return fmt.Sprintf("%s: %d:%d: %s: %s",
			d.Location.Element,
			d.Location.Line,
			d.Location.Column,
			d.Code,
			d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		d.Location.File,
		d.Location.Line,
		d.Location.Column,
		d.Code,
		d.Message)
}

// New creates a diagnostic
func New(phase, code, message string, location SourceLocation, severity Severity) Diagnostic {
	return Diagnostic{
		Phase:    phase,
		Code:     code,
		Message:  message,
		Location: location,
		Severity: severity,
	}
}

// WithContext attaches the source line the diagnostic points into
func (d Diagnostic) WithContext(source string, highlight int) Diagnostic {
	d.Context = &SourceContext{Line: source, Highlight: highlight}
	return d
}

// MarshalJSON implements json.Marshaler
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Phase    string         `json:"phase"`
		Code     string         `json:"code"`
		Message  string         `json:"message"`
		Severity Severity       `json:"severity"`
		Location SourceLocation `json:"location"`
		Context  *SourceContext `json:"context,omitempty"`
	}{
		Phase:    d.Phase,
		Code:     d.Code,
		Message:  d.Message,
		Severity: d.Severity,
		Location: d.Location,
		Context:  d.Context,
	})
}

// IsError returns true if the diagnostic is at Error or Fatal severity
func (d Diagnostic) IsError() bool {
	return d.Severity == Error || d.Severity == Fatal
}

// CountErrors tallies the errors and warnings in a batch of diagnostics
func CountErrors(diagnostics []Diagnostic) (errorCount, warningCount int) {
	for _, d := range diagnostics {
		switch {
		case d.IsError():
			errorCount++
		case d.Severity == Warning:
			warningCount++
		}
	}
	return errorCount, warningCount
}
