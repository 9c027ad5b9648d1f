package logthrottle

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// maxCallerFrames bounds the fallback call-site stack captured for errors
// that carry no stack trace of their own.
const maxCallerFrames = 64

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}

// KeyFromString returns s unchanged; a caller-supplied string is its own key.
func KeyFromString(s string) string {
	return s
}

// KeyFromError renders the stack traces recorded in err's chain into a key.
// Error messages never take part in the key, only types and call sites, so
// two errors created at the same place aggregate together while errors from
// different places never do.
//
// Stacks are read from errors created by github.com/pkg/errors (New, Errorf,
// Wrap, WithStack...). When no error in the chain carries a stack, the stack
// of the goroutine calling KeyFromError is used instead.
func KeyFromError(err error) string {
	return keyFromError(err, 3)
}

// keyFromError skips skip frames when falling back to the caller's stack;
// skip 3 lands on the caller of the exported function that called it.
func keyFromError(err error, skip int) string {
	var b strings.Builder
	withStack := false

	for i, e := range errorChain(err) {
		if i > 0 {
			b.WriteString("caused by: ")
		}
		fmt.Fprintf(&b, "%T\n", e)

		st, ok := e.(stackTracer)
		if !ok {
			continue
		}
		withStack = true
		for _, f := range st.StackTrace() {
			writeFrame(&b, fmt.Sprintf("%+v", f))
		}
	}

	if !withStack {
		b.WriteString("logged at:\n")
		pcs := make([]uintptr, maxCallerFrames)
		n := runtime.Callers(skip, pcs)
		frames := runtime.CallersFrames(pcs[:n])
		for {
			f, more := frames.Next()
			writeFrame(&b, fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line))
			if !more {
				break
			}
		}
	}

	return b.String()
}

// writeFrame writes a "function\n\tfile:line" frame on a single line.
func writeFrame(b *strings.Builder, frame string) {
	b.WriteString("\tat ")
	b.WriteString(strings.Replace(frame, "\n\t", " ", 1))
	b.WriteByte('\n')
}

// errorChain flattens err and everything it wraps, outermost first.
func errorChain(err error) []error {
	var chain []error
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			chain = append(chain, e)
			switch x := e.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range x.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				e = x.Unwrap()
			case causer:
				e = x.Cause()
			default:
				return
			}
		}
	}
	walk(err)
	return chain
}
