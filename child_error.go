package taskgroup

import (
	"errors"
	"fmt"
)

// ChildError wraps an error together with the [TaskInfo] of the child that
// produced it. Every error result delivered through [TaskGroup.Next] is
// wrapped in a ChildError so the consumer can attribute failures. The
// underlying group treats the payload as opaque.
type ChildError struct {
	Task TaskInfo
	Err  error
}

func (e *ChildError) Error() string {
	return fmt.Sprintf("child %q failed: %v", e.Task.Name, e.Err)
}

func (e *ChildError) Unwrap() error {
	return e.Err
}

// IsChildError reports whether err (or any error in its chain) is a
// [*ChildError].
func IsChildError(err error) bool {
	if err == nil {
		return false
	}
	var ce *ChildError
	return errors.As(err, &ce)
}

// ChildOf extracts the [TaskInfo] from the first [*ChildError] in err's
// chain. Returns false if none is found.
func ChildOf(err error) (TaskInfo, bool) {
	if err == nil {
		return TaskInfo{}, false
	}
	var ce *ChildError
	if errors.As(err, &ce) {
		return ce.Task, true
	}
	return TaskInfo{}, false
}

// CauseOf unwraps the first [*ChildError] in err's chain and returns its
// underlying cause. If err is not a ChildError it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}
	var ce *ChildError
	if errors.As(err, &ce) {
		return ce.Err
	}
	return err
}
