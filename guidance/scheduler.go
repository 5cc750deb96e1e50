package guidance

import (
	"sort"
	"sync"
	"time"
)

type deferredTask struct {
	due       time.Time
	seq       uint64
	fn        func()
	cancelled bool
}

// taskQueue defers work onto the session's tick thread. AfterFunc and runDue are only
// called with the session lock held; Post may be called from any goroutine.
type taskQueue struct {
	now   func() time.Time
	tasks []*deferredTask
	seq   uint64

	postMu sync.Mutex
	posted []func()
}

func (q *taskQueue) AfterFunc(d time.Duration, f func()) func() {
	q.seq++
	t := &deferredTask{due: q.now().Add(d), seq: q.seq, fn: f}
	q.tasks = append(q.tasks, t)
	return func() { t.cancelled = true }
}

func (q *taskQueue) Post(f func()) {
	q.postMu.Lock()
	q.posted = append(q.posted, f)
	q.postMu.Unlock()
}

// drainPosted runs callbacks handed in by Post, oldest first.
func (q *taskQueue) drainPosted() {
	q.postMu.Lock()
	posted := q.posted
	q.posted = nil
	q.postMu.Unlock()

	for _, f := range posted {
		f()
	}
}

func (q *taskQueue) dropPosted() {
	q.postMu.Lock()
	q.posted = nil
	q.postMu.Unlock()
}

// runDue runs every task due at or before now, including ones scheduled while running.
func (q *taskQueue) runDue(now time.Time) {
	for {
		sort.Slice(q.tasks, func(i, j int) bool {
			if q.tasks[i].due.Equal(q.tasks[j].due) {
				return q.tasks[i].seq < q.tasks[j].seq
			}
			return q.tasks[i].due.Before(q.tasks[j].due)
		})
		if len(q.tasks) == 0 || q.tasks[0].due.After(now) {
			return
		}
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		if !t.cancelled {
			t.fn()
		}
	}
}

func (q *taskQueue) pending() int {
	n := 0
	for _, t := range q.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
