package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryStream Category = "stream"
	CategoryRender Category = "render"
	CategoryExport Category = "export"
	CategoryUpload Category = "upload"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
)

// Location points at a line of an input file.
type Location struct {
	File string
	Line int // 1-based file line
}

// String returns the location as file:line.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line <= 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// VGVError is a structured error with an input location and a suggestion.
type VGVError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (stream, export, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the input line where the error occurred.
	Location *Location

	// Context holds the input lines around Location, starting at
	// ContextStart.
	Context      []string
	ContextStart int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VGVError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return e.Code + ": " + msg
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VGVError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds an input location and reads the surrounding lines.
func (e *VGVError) WithLocation(file string, line int) *VGVError {
	e.Location = &Location{File: file, Line: line}
	e.Context, e.ContextStart = readContextLines(file, line, 3)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VGVError) WithSuggestion(s string) *VGVError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VGVError) WithDetail(d string) *VGVError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VGVError) Wrap(err error) *VGVError {
	e.Wrapped = err
	return e
}

// readContextLines reads up to size lines centered on target. Frame lines
// can be huge, so each line is cut at 120 bytes.
func readContextLines(filename string, target, size int) ([]string, int) {
	if filename == "" || target <= 0 {
		return nil, 0
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	start := target - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1

	var lines []string
	r := bufio.NewReader(file)
	for n := 1; n <= end; n++ {
		line, err := r.ReadString('\n')
		if len(line) > 0 && line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
		}
		if n >= start && (err == nil || line != "") {
			if len(line) > 120 {
				line = line[:120] + "…"
			}
			lines = append(lines, line)
		}
		if err != nil {
			break
		}
	}
	return lines, start
}

// New creates a VGVError from a registered error code.
func New(code string) *VGVError {
	template, ok := registry[code]
	if !ok {
		return &VGVError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VGVError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new VGVError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VGVError {
	return &VGVError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a VGVError.
func FromError(err error, code string) *VGVError {
	if err == nil {
		return nil
	}
	var ve *VGVError
	if errors.As(err, &ve) {
		return ve
	}
	return New(code).Wrap(err)
}
