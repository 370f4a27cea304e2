// Package task describes deferred computations. A Task is plain data: it
// does nothing until a scheduler process steps it.
//
//	t := task.AndThen(func(v any) *task.Task {
//	    return task.Succeed(v.(int) + 1)
//	}, task.Succeed(41))
//
// Composition with AndThen and OnError is strictly sequential within one
// process. Binding is the only way out to the host: the scheduler calls the
// callback, suspends the process and resumes it with whatever task the
// callback later hands to resume.
package task

import (
	"context"
	"time"
)

// Kind is the task variant discriminator.
type Kind uint8

const (
	KindSucceed Kind = iota // Finished with a value
	KindFail                // Finished with an error
	KindBinding             // Native callback boundary
	KindAndThen             // Continue with a function of the inner result
	KindOnError             // Recover from an inner failure
	KindReceive             // Wait for the next mailbox message
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindSucceed:
		return "Succeed"
	case KindFail:
		return "Fail"
	case KindBinding:
		return "Binding"
	case KindAndThen:
		return "AndThen"
	case KindOnError:
		return "OnError"
	case KindReceive:
		return "Receive"
	default:
		return "Unknown"
	}
}

// Callback starts native work. It must arrange for resume to be called
// exactly once with the task the process continues with, and may return a
// cancel function that stops the work if the process is killed first.
// resume may be called synchronously or from any goroutine.
type Callback func(resume func(*Task)) (cancel func())

// Task is an immutable description of a computation. Fields are read by the
// scheduler; build tasks with the constructors.
type Task struct {
	Kind Kind

	Value any   // KindSucceed
	Err   error // KindFail

	Callback Callback // KindBinding

	Then  func(value any) *Task // KindAndThen
	Catch func(err error) *Task // KindOnError
	Inner *Task                 // KindAndThen, KindOnError

	Handler func(msg any) *Task // KindReceive
}

// Succeed returns a task that finishes with v.
func Succeed(v any) *Task {
	return &Task{Kind: KindSucceed, Value: v}
}

// Fail returns a task that fails with err.
func Fail(err error) *Task {
	return &Task{Kind: KindFail, Err: err}
}

// Binding returns a task that suspends its process on cb.
func Binding(cb Callback) *Task {
	return &Task{Kind: KindBinding, Callback: cb}
}

// AndThen runs t and continues with fn applied to its value. Failures of t
// skip fn.
func AndThen(fn func(value any) *Task, t *Task) *Task {
	return &Task{Kind: KindAndThen, Then: fn, Inner: t}
}

// OnError runs t and recovers from its failure with fn. Successes of t
// skip fn.
func OnError(fn func(err error) *Task, t *Task) *Task {
	return &Task{Kind: KindOnError, Catch: fn, Inner: t}
}

// Receive waits for the next message in the process mailbox and continues
// with handler applied to it.
func Receive(handler func(msg any) *Task) *Task {
	return &Task{Kind: KindReceive, Handler: handler}
}

// Map transforms the value of t.
func Map(fn func(value any) any, t *Task) *Task {
	return AndThen(func(v any) *Task { return Succeed(fn(v)) }, t)
}

// Map2 runs a then b and combines their values.
func Map2(fn func(a, b any) any, a, b *Task) *Task {
	return AndThen(func(va any) *Task {
		return AndThen(func(vb any) *Task { return Succeed(fn(va, vb)) }, b)
	}, a)
}

// MapError transforms the error of a failing t.
func MapError(fn func(err error) error, t *Task) *Task {
	return OnError(func(err error) *Task { return Fail(fn(err)) }, t)
}

// Sequence runs tasks in order and succeeds with their values as []any. The
// first failure stops the sequence.
func Sequence(tasks []*Task) *Task {
	acc := Succeed([]any(nil))
	for _, t := range tasks {
		acc = Map2(func(xs, x any) any {
			return append(xs.([]any), x)
		}, acc, t)
	}
	return Map(func(xs any) any {
		if xs.([]any) == nil {
			return []any{}
		}
		return xs
	}, acc)
}

// Forever repeats t until it fails. The step budget keeps a task that never
// suspends from starving other processes.
func Forever(t *Task) *Task {
	var loop func(any) *Task
	loop = func(any) *Task { return AndThen(loop, t) }
	return loop(nil)
}

// Sleep succeeds with nil after d. Killing the process stops the timer.
func Sleep(d time.Duration) *Task {
	return Binding(func(resume func(*Task)) func() {
		timer := time.AfterFunc(d, func() { resume(Succeed(nil)) })
		return func() { timer.Stop() }
	})
}

// Now succeeds with the current time.
func Now() *Task {
	return Binding(func(resume func(*Task)) func() {
		resume(Succeed(time.Now()))
		return nil
	})
}

// Go runs fn on its own goroutine and resumes with its result. Killing the
// process cancels the context passed to fn; its result is then discarded.
func Go(fn func(ctx context.Context) (any, error)) *Task {
	return Binding(func(resume func(*Task)) func() {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			v, err := fn(ctx)
			if err != nil {
				resume(Fail(err))
				return
			}
			resume(Succeed(v))
		}()
		return cancel
	})
}
