package taskgroup

import (
	"fmt"
	"runtime"
)

// PanicError wraps a value recovered from a panicking child task together
// with the goroutine stack captured at the point of the panic. It surfaces
// through [TaskGroup.Next] as a regular error result.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

// Error returns the panic value followed by the full stack trace.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns nil. PanicError does not wrap another error.
func (e *PanicError) Unwrap() error { return nil }

func newPanicError(v any) *PanicError {
	// 8 KiB holds most stack traces; runtime.Stack truncates gracefully
	// when it does not.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
