package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	velaerrors "github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/pkg/task"
)

func newTestScheduler(maxSteps int) (*Scheduler, *ManualDriver) {
	d := NewManualDriver()
	return New(Config{MaxSteps: maxSteps, Driver: d}), d
}

// spin never suspends.
func spin() *task.Task {
	return task.Forever(task.Succeed(nil))
}

// record returns a task that appends v to out and succeeds with v.
func record(out *[]any, v any) *task.Task {
	return task.Binding(func(resume func(*task.Task)) func() {
		*out = append(*out, v)
		resume(task.Succeed(v))
		return nil
	})
}

func TestSpawnRunsToCompletion(t *testing.T) {
	s, d := newTestScheduler(0)

	var got any
	p := s.Spawn(task.AndThen(func(v any) *task.Task {
		got = v
		return task.Succeed(nil)
	}, task.Map(func(v any) any { return v.(int) + 1 }, task.Succeed(41))))

	if p.State() != StateRunning {
		t.Fatalf("state before tick = %v, want Running", p.State())
	}
	d.Drain()

	if got != 42 {
		t.Errorf("got %v, want 42", got)
	}
	if p.State() != StateDone {
		t.Errorf("state = %v, want Done", p.State())
	}
	if d.Pending() != 0 {
		t.Errorf("pending ticks = %d, want 0", d.Pending())
	}
}

func TestOnErrorRecovers(t *testing.T) {
	s, d := newTestScheduler(0)
	boom := errors.New("boom")

	var got []any
	s.Spawn(task.AndThen(func(v any) *task.Task {
		got = append(got, v)
		return task.Succeed(nil)
	}, task.OnError(func(err error) *task.Task {
		return task.Succeed("recovered: " + err.Error())
	}, task.AndThen(func(any) *task.Task {
		t.Error("AndThen continuation ran after a failure")
		return task.Succeed(nil)
	}, task.Fail(boom)))))
	d.Drain()

	if len(got) != 1 || got[0] != "recovered: boom" {
		t.Errorf("got %v, want [recovered: boom]", got)
	}
}

func TestOnErrorSkippedOnSuccess(t *testing.T) {
	s, d := newTestScheduler(0)

	var got any
	s.Spawn(task.AndThen(func(v any) *task.Task {
		got = v
		return task.Succeed(nil)
	}, task.OnError(func(error) *task.Task {
		return task.Succeed("handler")
	}, task.Succeed("value"))))
	d.Drain()

	if got != "value" {
		t.Errorf("got %v, want value", got)
	}
}

func TestUnhandledFailureFinishesProcess(t *testing.T) {
	s, d := newTestScheduler(0)
	p := s.Spawn(task.Fail(errors.New("nobody listens")))
	d.Drain()

	if p.State() != StateDone {
		t.Errorf("state = %v, want Done", p.State())
	}
}

func TestMailboxFIFO(t *testing.T) {
	s, d := newTestScheduler(0)

	var got []any
	var loop func(any) *task.Task
	loop = func(any) *task.Task {
		return task.Receive(func(msg any) *task.Task {
			got = append(got, msg)
			return loop(nil)
		})
	}
	p := s.Spawn(loop(nil))
	d.Drain()

	if p.State() != StateAwaitingMailbox {
		t.Fatalf("state = %v, want AwaitingMailbox", p.State())
	}

	s.Send(p, 1)
	s.Send(p, 2)
	s.Send(p, 3)
	if p.Pending() != 3 {
		t.Errorf("pending = %d, want 3", p.Pending())
	}
	d.Drain()

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", got)
	}
	if p.State() != StateAwaitingMailbox {
		t.Errorf("state = %v, want AwaitingMailbox", p.State())
	}
}

func TestSendToDeadProcessIsDropped(t *testing.T) {
	s, d := newTestScheduler(0)
	p := s.Spawn(task.Succeed(nil))
	d.Drain()

	s.Send(p, "late")
	if p.Pending() != 0 {
		t.Errorf("pending = %d, want 0", p.Pending())
	}
	if d.Pending() != 0 {
		t.Errorf("send to a finished process posted a tick")
	}
}

func TestStepBudget(t *testing.T) {
	s, d := newTestScheduler(100)

	busy := s.Spawn(spin())
	var done bool
	s.Spawn(task.AndThen(func(any) *task.Task {
		done = true
		return task.Succeed(nil)
	}, task.Succeed(nil)))

	if !d.RunOne() {
		t.Fatal("no tick posted")
	}
	if s.Steps() != 100 {
		t.Errorf("steps after one tick = %d, want 100", s.Steps())
	}
	if done {
		t.Error("second process ran inside the exhausted tick")
	}
	if d.Pending() != 1 {
		t.Fatalf("pending ticks = %d, want 1", d.Pending())
	}

	// The busy process went to the back; the other one finishes first.
	d.RunOne()
	if !done {
		t.Error("second process did not run on the next tick")
	}
	if busy.State() != StateRunning {
		t.Errorf("busy state = %v, want Running", busy.State())
	}

	s.Kill(busy)
	d.Drain()
	if busy.State() != StateKilled {
		t.Errorf("busy state = %v, want Killed", busy.State())
	}
}

func TestBudgetSharedAcrossProcesses(t *testing.T) {
	s, d := newTestScheduler(10)

	// Each of these takes three steps.
	for i := 0; i < 5; i++ {
		s.Spawn(task.AndThen(func(any) *task.Task { return task.Succeed(nil) }, task.Succeed(nil)))
	}
	d.RunOne()

	if s.Steps() != 10 {
		t.Errorf("steps = %d, want 10", s.Steps())
	}
	if n := d.Drain(); n == 0 {
		t.Error("no follow-up tick")
	}
	if s.Steps() != 15 {
		t.Errorf("total steps = %d, want 15", s.Steps())
	}
}

func TestSynchronousResume(t *testing.T) {
	s, d := newTestScheduler(0)

	var out []any
	p := s.Spawn(task.AndThen(func(any) *task.Task {
		return record(&out, "b")
	}, record(&out, "a")))

	d.RunOne()
	if len(out) != 2 {
		t.Errorf("out = %v, want both bindings in one tick", out)
	}
	if p.State() != StateDone {
		t.Errorf("state = %v, want Done", p.State())
	}
}

func TestAsyncResume(t *testing.T) {
	s, d := newTestScheduler(0)

	var resume func(*task.Task)
	var got any
	p := s.Spawn(task.AndThen(func(v any) *task.Task {
		got = v
		return task.Succeed(nil)
	}, task.Binding(func(r func(*task.Task)) func() {
		resume = r
		return nil
	})))
	d.Drain()

	if p.State() != StateAwaitingNative {
		t.Fatalf("state = %v, want AwaitingNative", p.State())
	}

	resume(task.Succeed("later"))
	resume(task.Succeed("twice"))
	d.Drain()

	if got != "later" {
		t.Errorf("got %v, want later", got)
	}
	if p.State() != StateDone {
		t.Errorf("state = %v, want Done", p.State())
	}
}

func TestKillCancelsBindingOnce(t *testing.T) {
	s, d := newTestScheduler(0)

	var cancels atomic.Int32
	var resume func(*task.Task)
	var continued bool
	p := s.Spawn(task.AndThen(func(any) *task.Task {
		continued = true
		return task.Succeed(nil)
	}, task.Binding(func(r func(*task.Task)) func() {
		resume = r
		return func() { cancels.Add(1) }
	})))
	d.Drain()

	s.Kill(p)
	s.Kill(p)
	if cancels.Load() != 1 {
		t.Errorf("cancel called %d times, want 1", cancels.Load())
	}
	if p.State() != StateKilled {
		t.Errorf("state = %v, want Killed", p.State())
	}

	// A stray resume after the kill must not revive the process.
	resume(task.Succeed(nil))
	d.Drain()
	if continued {
		t.Error("killed process continued after a stray resume")
	}
	if cancels.Load() != 1 {
		t.Errorf("cancel called %d times after resume, want 1", cancels.Load())
	}
}

func TestKillBeforeFirstStep(t *testing.T) {
	s, d := newTestScheduler(0)

	var ran bool
	p := s.Spawn(task.Binding(func(func(*task.Task)) func() {
		ran = true
		return nil
	}))
	s.Kill(p)
	d.Drain()

	if ran {
		t.Error("killed process was stepped")
	}
}

func TestKillFromInsideBinding(t *testing.T) {
	s, d := newTestScheduler(0)

	var cancels int
	var p *Process
	p = s.Spawn(task.Binding(func(func(*task.Task)) func() {
		s.Kill(p)
		return func() { cancels++ }
	}))
	d.Drain()

	if cancels != 1 {
		t.Errorf("cancel called %d times, want 1", cancels)
	}
	if p.State() != StateKilled {
		t.Errorf("state = %v, want Killed", p.State())
	}
}

func TestProcessTasks(t *testing.T) {
	s, d := newTestScheduler(0)

	var got []any
	main := task.AndThen(func(v any) *task.Task {
		child := v.(*Process)
		return task.AndThen(func(any) *task.Task {
			return task.AndThen(func(any) *task.Task {
				return task.Succeed(child)
			}, s.KillTask(child))
		}, s.SendTask(child, "ping"))
	}, s.SpawnTask(task.Receive(func(msg any) *task.Task {
		got = append(got, msg)
		return task.Receive(func(msg any) *task.Task {
			got = append(got, msg)
			return task.Succeed(nil)
		})
	})))

	var child *Process
	s.Spawn(task.AndThen(func(v any) *task.Task {
		child = v.(*Process)
		return task.Succeed(nil)
	}, main))
	d.Drain()

	if child == nil {
		t.Fatal("spawn task did not yield a process")
	}
	if child.State() != StateKilled {
		t.Errorf("child state = %v, want Killed", child.State())
	}
	// The child is queued ahead of the parent each time, so it reads ping
	// and is killed while waiting for a second message.
	if len(got) != 1 || got[0] != "ping" {
		t.Errorf("child received %v, want [ping]", got)
	}
}

func TestSleepBinding(t *testing.T) {
	loop := NewLoop(slog.Default())
	s := New(Config{Driver: loop})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go loop.Run(ctx)

	done := make(chan struct{})
	s.Spawn(task.AndThen(func(any) *task.Task {
		close(done)
		return task.Succeed(nil)
	}, task.Sleep(10*time.Millisecond)))

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("sleep never resumed")
	}
}

func TestLoopRunsOnce(t *testing.T) {
	loop := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	ran := make(chan struct{})
	loop.Post(func() { close(ran) })
	<-ran

	if err := loop.Run(ctx); !velaerrors.HasCode(err, "E002") {
		t.Errorf("second Run = %v, want E002", err)
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestNilTaskPanics(t *testing.T) {
	s, d := newTestScheduler(0)
	s.Spawn(task.AndThen(func(any) *task.Task { return nil }, task.Succeed(nil)))

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !velaerrors.HasCode(err, "E141") {
			t.Errorf("panic = %v, want E141", r)
		}
	}()
	d.Drain()
}

func TestUnknownKindPanics(t *testing.T) {
	s, d := newTestScheduler(0)
	s.Spawn(&task.Task{Kind: task.Kind(99)})

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !velaerrors.HasCode(err, "E140") {
			t.Errorf("panic = %v, want E140", r)
		}
	}()
	d.Drain()
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "Running"},
		{StateAwaitingNative, "AwaitingNative"},
		{StateAwaitingMailbox, "AwaitingMailbox"},
		{StateDone, "Done"},
		{StateKilled, "Killed"},
		{State(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
