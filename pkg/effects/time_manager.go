package effects

import (
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vango-dev/vela/pkg/scheduler"
	"github.com/vango-dev/vela/pkg/task"
)

// TimeHome is the home of the time manager.
const TimeHome = "Time"

type everySub struct {
	interval time.Duration
	toMsg    func(time.Time) any
}

// timeState is the time manager state: one ticker process per interval and
// the subscribers of each.
type timeState struct {
	taggers map[time.Duration][]func(time.Time) any
	tickers map[time.Duration]*scheduler.Process
}

// TimeManager keeps one ticker process per subscribed interval. Each cycle
// it diffs the subscribed intervals against the running tickers, killing
// the ones nobody wants and starting the new ones.
func TimeManager() *Manager {
	return &Manager{
		Kind: KindSub,
		Init: task.Succeed(&timeState{tickers: map[time.Duration]*scheduler.Process{}}),
		OnEffects: func(r *Router, _, subs []any, state any) *task.Task {
			return timeEffects(r, subs, state.(*timeState))
		},
		OnSelfMsg: func(r *Router, msg any, state any) *task.Task {
			st := state.(*timeState)
			taggers := st.taggers[msg.(time.Duration)]
			return task.AndThen(func(v any) *task.Task {
				now := v.(time.Time)
				sends := make([]*task.Task, 0, len(taggers))
				for _, toMsg := range taggers {
					sends = append(sends, r.SendToApp(toMsg(now)))
				}
				return task.Map(func(any) any { return st }, task.Sequence(sends))
			}, task.Now())
		},
		SubMap: func(fn func(any) any, sub any) any {
			s := sub.(everySub)
			return everySub{
				interval: s.interval,
				toMsg:    func(t time.Time) any { return fn(s.toMsg(t)) },
			}
		},
	}
}

func timeEffects(r *Router, subs []any, st *timeState) *task.Task {
	taggers := make(map[time.Duration][]func(time.Time) any)
	for _, s := range subs {
		sub := s.(everySub)
		if sub.interval <= 0 {
			continue
		}
		taggers[sub.interval] = append(taggers[sub.interval], sub.toMsg)
	}

	running := mapset.NewThreadUnsafeSet[time.Duration]()
	for interval := range st.tickers {
		running.Add(interval)
	}
	wanted := mapset.NewThreadUnsafeSet[time.Duration]()
	for interval := range taggers {
		wanted.Add(interval)
	}

	stale := running.Difference(wanted).ToSlice()
	fresh := wanted.Difference(running).ToSlice()
	slices.Sort(stale)
	slices.Sort(fresh)

	kills := make([]*task.Task, 0, len(stale))
	for _, interval := range stale {
		kills = append(kills, r.Kill(st.tickers[interval]))
	}
	spawns := make([]*task.Task, 0, len(fresh))
	for _, interval := range fresh {
		spawns = append(spawns, r.Spawn(ticker(r, interval)))
	}

	return task.AndThen(func(any) *task.Task {
		return task.Map(func(v any) any {
			tickers := make(map[time.Duration]*scheduler.Process, len(taggers))
			for interval, p := range st.tickers {
				if wanted.Contains(interval) {
					tickers[interval] = p
				}
			}
			for i, p := range v.([]any) {
				tickers[fresh[i]] = p.(*scheduler.Process)
			}
			return &timeState{taggers: taggers, tickers: tickers}
		}, task.Sequence(spawns))
	}, task.Sequence(kills))
}

// ticker sends interval to the manager every interval.
func ticker(r *Router, interval time.Duration) *task.Task {
	return task.Forever(task.AndThen(func(any) *task.Task {
		return r.SendToSelf(interval)
	}, task.Sleep(interval)))
}

// Every returns a subscription that sends toMsg of the current time to the
// application every interval. Subscriptions with the same interval share
// one ticker.
func Every(interval time.Duration, toMsg func(time.Time) any) *Bag {
	return Leaf(TimeHome, everySub{interval: interval, toMsg: toMsg})
}
