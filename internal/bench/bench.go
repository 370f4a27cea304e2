// Package bench holds the workloads behind "vela bench": message
// round trips between two scheduler processes and keyed list shuffles
// through the diff engine.
package bench

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/vela/internal/errors"
	"github.com/vango-dev/vela/pkg/host"
	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/task"
	"github.com/vango-dev/vela/pkg/vdom"
)

// Profile sizes the workloads.
type Profile struct {
	Name string

	// Messages is the number of ping-pong round trips.
	Messages int

	// ListSize is the number of keyed rows shuffled.
	ListSize int

	// Rounds is the number of shuffles.
	Rounds int
}

var profiles = map[string]Profile{
	"fast": {
		Name:     "fast",
		Messages: 10_000,
		ListSize: 50,
		Rounds:   100,
	},
	"standard": {
		Name:     "standard",
		Messages: 100_000,
		ListSize: 200,
		Rounds:   500,
	},
	"stress": {
		Name:     "stress",
		Messages: 1_000_000,
		ListSize: 1_000,
		Rounds:   1_000,
	},
}

// LookupProfile returns the named profile.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, errors.New("E104").
			WithDetailf("unknown bench profile %q", name).
			WithSuggestion("Use one of: " + joinNames())
	}
	return p, nil
}

func joinNames() string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Result is the outcome of one workload.
type Result struct {
	Name    string
	Ops     int
	Elapsed time.Duration

	// Steps and Ticks are set by scheduler workloads.
	Steps int64
	Ticks int64

	// Patches is set by diff workloads.
	Patches int
}

// OpsPerSecond returns the throughput of r.
func (r Result) OpsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// PingPong bounces a counter between two processes n times. Both processes
// block in Receive between messages, so every round trip goes through the
// mailboxes and the run queue.
func PingPong(n int) (Result, error) {
	driver := scheduler.NewManualDriver()
	sched := scheduler.New(scheduler.Config{Driver: driver})

	var ping, pong *scheduler.Process

	pong = sched.Spawn(task.Forever(task.Receive(func(msg any) *task.Task {
		return sched.SendTask(ping, msg.(int)+1)
	})))

	var pingLoop func() *task.Task
	pingLoop = func() *task.Task {
		return task.Receive(func(msg any) *task.Task {
			count := msg.(int)
			if count >= n {
				return task.Succeed(count)
			}
			return task.AndThen(func(any) *task.Task { return pingLoop() }, sched.SendTask(pong, count))
		})
	}
	ping = sched.Spawn(pingLoop())

	start := time.Now()
	sched.Send(pong, 0)
	driver.Drain()
	elapsed := time.Since(start)

	sched.Kill(pong)
	driver.Drain()

	if ping.State() != scheduler.StateDone {
		return Result{}, errors.Newf(errors.CategoryRuntime, "ping process ended %s", ping.State())
	}
	return Result{
		Name:    "scheduler ping-pong",
		Ops:     n,
		Elapsed: elapsed,
		Steps:   sched.Steps(),
		Ticks:   sched.Ticks(),
	}, nil
}

// KeyedShuffle renders a keyed list of size rows and reorders it rounds
// times with a seeded shuffle. Every round is diffed and applied to an
// in-memory document.
func KeyedShuffle(size, rounds int, seed uint64) (Result, error) {
	doc := host.NewDocument()
	patches := 0
	engine := vdom.NewEngine(doc, vdom.WithPatchObserver(func(*vdom.Patch) { patches++ }))
	view := vdom.NewView(engine, doc.Body(), func(any) {})

	rows := make([]int, size)
	for i := range rows {
		rows[i] = i
	}
	view.Update(keyedList(rows))

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	start := time.Now()
	for r := 0; r < rounds; r++ {
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		view.Update(keyedList(rows))
	}
	elapsed := time.Since(start)

	list := doc.Find(doc.Body(), 0)
	for i, row := range rows {
		if got := host.TextContent(list.Children[i]); got != strconv.Itoa(row) {
			return Result{}, errors.Newf(errors.CategoryRuntime,
				"row %d is %q after %d shuffles, want %d", i, got, rounds, row)
		}
	}

	return Result{
		Name:    "keyed shuffle",
		Ops:     rounds,
		Elapsed: elapsed,
		Patches: patches,
	}, nil
}

func keyedList(rows []int) *vdom.VNode {
	return vdom.Keyed("ul", nil, vdom.RangeKeyed(rows,
		func(row int) string { return strconv.Itoa(row) },
		func(row int) *vdom.VNode { return vdom.Li(vdom.Text(strconv.Itoa(row))) },
	))
}
