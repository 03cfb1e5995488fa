// Package errors provides errors annotated with structured logging attributes and the source location where they
// were created. It re-exports the standard library helpers so that callers only need a single errors import.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// annotatedError carries a message, the wrapped cause and [slog.Attr] annotations together with the location of the
// call that created it.
type annotatedError struct {
	msg         string
	cause       error
	annotations []slog.Attr
	file        string
	line        int
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

func (e *annotatedError) source() string {
	if e.file == "" {
		return ""
	}
	return e.file + ":" + strconv.Itoa(e.line)
}

func newAnnotated(skip int, msg string, cause error, attrs []slog.Attr) *annotatedError {
	e := &annotatedError{msg: msg, cause: cause, annotations: attrs, file: "", line: 0}
	if _, file, line, ok := runtime.Caller(skip + 1); ok {
		e.file = file
		e.line = line
	}
	return e
}

// NewSentinel creates an error meant to be declared as a package level variable and compared with [Is].
//
// Every call returns a distinct error even if the messages are equal.
func NewSentinel(msg string) error {
	return &sentinelError{msg: msg}
}

type sentinelError struct {
	msg string
}

func (e *sentinelError) Error() string {
	return e.msg
}

// Wrap annotates err with msg and optional attributes that are logged with [SlogError].
//
// The source location of the Wrap call is recorded. Wrapping a nil error returns an annotated error without cause so
// that a forgotten nil check still produces a useful log line.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return newAnnotated(1, msg, err, attrs)
}

// DecoratePanic converts a recovered panic value into an error pointing at the location that panicked.
//
// It must be called from the deferred function that recovered the panic.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	e := &annotatedError{msg: fmt.Sprintf("panic: %v", excp), cause: nil, annotations: nil, file: "", line: 0}
	if cause, ok := excp.(error); ok {
		e.msg = "panic"
		e.cause = cause
	}
	e.file, e.line = panicSite()
	return e
}

// panicSite finds the first frame after the runtime's panic machinery.
func panicSite() (string, int) {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	panicking := false
	for {
		frame, more := frames.Next()
		if panicking && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File, frame.Line
		}
		if frame.Function == "runtime.gopanic" {
			panicking = true
		}
		if !more {
			return "", 0
		}
	}
}

// SlogError returns an [slog.Attr] group named "error" with the error message, the source location of the innermost
// annotated error and all the annotations found in the error tree.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}
	var (
		annotations []any
		source      string
	)
	walk(err, func(e *annotatedError) {
		for _, a := range e.annotations {
			annotations = append(annotations, a)
		}
		if s := e.source(); s != "" {
			source = s
		}
	})
	attrs := []any{slog.String("message", err.Error())}
	if source != "" {
		attrs = append(attrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		attrs = append(attrs, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", attrs...)
}

// walk visits annotated errors in the tree depth first, outermost first.
func walk(err error, visit func(*annotatedError)) {
	if err == nil {
		return
	}
	if e, ok := err.(*annotatedError); ok { //nolint:errorlint // we walk the tree ourselves.
		visit(e)
	}
	switch u := err.(type) { //nolint:errorlint // we walk the tree ourselves.
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			walk(inner, visit)
		}
	case interface{ Unwrap() error }:
		walk(u.Unwrap(), visit)
	}
}

// New is [errors.New].
func New(text string) error {
	return stderrors.New(text) //nolint:err113 // thin re-export.
}

// Is is [errors.Is].
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is [errors.As].
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Join is [errors.Join].
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
