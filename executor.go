package taskgroup

// Executor schedules a task for resumption. The group enqueues a parked
// consumer on one after filling its result context during direct handoff.
type Executor interface {
	Enqueue(t *Task)
}

// goExecutor resumes each task on its own goroutine.
type goExecutor struct{}

func (goExecutor) Enqueue(t *Task) {
	go t.resume()
}

// GlobalExecutor returns the default executor, which resumes every task on
// a fresh goroutine.
func GlobalExecutor() Executor { return goExecutor{} }
