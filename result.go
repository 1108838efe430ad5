package taskgroup

// PollStatus classifies the outcome of one [Group.Poll] call.
type PollStatus uint8

const (
	// PollEmpty: the group has no pending children; there is nothing to
	// wait for and the consumer must not park.
	PollEmpty PollStatus = iota

	// PollMustWait: the consumer was parked in the wait slot and will be
	// resumed by the next offer.
	PollMustWait

	// PollSuccess: a child completed with a value.
	PollSuccess

	// PollError: a child completed with an error.
	PollError
)

func (s PollStatus) String() string {
	switch s {
	case PollEmpty:
		return "Empty"
	case PollMustWait:
		return "MustWait"
	case PollSuccess:
		return "Success"
	case PollError:
		return "Error"
	}
	return "Unknown"
}

// PollResult carries one polled outcome from a [Group].
type PollResult struct {
	Status PollStatus

	// Storage points at the success value inside the completed child's
	// result area. Valid until Task is released.
	Storage *any

	// Err is the error the child failed with, for PollError.
	Err error

	// Task is the retained completed child. Whoever consumes the result
	// must Release it afterwards to balance the offer-time retain.
	Task *Task
}

// pollResultFor builds the result for a settled child, transferring one
// retained reference to the result.
func pollResultFor(child *Task) PollResult {
	storage, err := child.futureResult()
	if err != nil {
		return PollResult{Status: PollError, Err: err, Task: child}
	}
	return PollResult{Status: PollSuccess, Storage: storage, Task: child}
}

// ResultContext is the destination frame a consumer's next result is
// marshalled into. The group fills it before the consumer resumes.
type ResultContext struct {
	// Value holds the success value after a Success fill.
	Value any

	// Err holds the child's error after an Error fill.
	Err error

	// Valid is false after an Empty fill: the group has drained and the
	// consumer received the nil sentinel.
	Valid bool
}

// fillNextResult marshals polled into rctx and settles the retained child.
// For a parked consumer this runs while the offer still holds the wait-slot
// claim, before the consumer is enqueued for resumption.
func fillNextResult(rctx *ResultContext, polled PollResult) {
	switch polled.Status {
	case PollMustWait:
		panic("taskgroup: filling a result context for a parked consumer")
	case PollEmpty:
		rctx.Valid = false
	case PollSuccess:
		rctx.Value = *polled.Storage
		rctx.Valid = true
		polled.Task.Release()
	case PollError:
		rctx.Err = polled.Err
		rctx.Valid = true
		polled.Task.Release()
	}
}
