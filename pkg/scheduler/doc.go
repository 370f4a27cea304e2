// Package scheduler interprets tasks inside lightweight processes.
//
// A process owns a root task, a continuation stack and a mailbox. Stepping
// a process runs its task until one of two suspension points:
//
//   - a Binding, which hands a resume function to native code
//   - a Receive on an empty mailbox
//
// Processes are not goroutines. Ready processes wait in one FIFO queue and
// are stepped one at a time inside ticks posted to a Driver, so everything
// a process does between two suspension points is atomic with respect to
// every other process. All processes share one step budget per tick; a
// process still runnable when the budget runs out goes to the back of the
// queue and the scheduler posts another tick.
//
// Send, Kill and binding resumes may be called from any goroutine. Killing a
// process suspended on a binding calls the binding's cancel function once,
// and late resumes of a killed or already resumed process are ignored.
//
//	s := scheduler.New(scheduler.Config{Driver: scheduler.NewLoop(nil)})
//	p := s.Spawn(task.Receive(func(msg any) *task.Task {
//	    return task.Succeed(msg)
//	}))
//	s.Send(p, "hello")
package scheduler
