package effects

import "github.com/vango-dev/vela/pkg/task"

// TaskHome is the home of the task manager.
const TaskHome = "Task"

// performCmd runs a task whose value is the message for the application.
type performCmd struct {
	task *task.Task
}

// TaskManager runs every command task in its own process and sends the
// resulting message to the application.
func TaskManager() *Manager {
	return &Manager{
		Kind: KindCmd,
		Init: task.Succeed(nil),
		OnEffects: func(r *Router, cmds, _ []any, state any) *task.Task {
			spawns := make([]*task.Task, 0, len(cmds))
			for _, c := range cmds {
				cmd := c.(performCmd)
				spawns = append(spawns, r.Spawn(task.AndThen(r.SendToApp, cmd.task)))
			}
			return task.Map(func(any) any { return state }, task.Sequence(spawns))
		},
		CmdMap: func(fn func(any) any, cmd any) any {
			return performCmd{task: task.Map(fn, cmd.(performCmd).task)}
		},
	}
}

// Perform returns a command that runs t and sends toMsg of its value to the
// application. t must not fail; use Attempt for tasks that can.
func Perform(toMsg func(value any) any, t *task.Task) *Bag {
	return Leaf(TaskHome, performCmd{task: task.Map(toMsg, t)})
}

// Attempt returns a command that runs t and sends toMsg of its outcome to
// the application. Exactly one of value and err is meaningful.
func Attempt(toMsg func(value any, err error) any, t *task.Task) *Bag {
	settled := task.OnError(func(err error) *task.Task {
		return task.Succeed(toMsg(nil, err))
	}, task.Map(func(v any) any { return toMsg(v, nil) }, t))
	return Leaf(TaskHome, performCmd{task: settled})
}
