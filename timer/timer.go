// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type TimerTask struct {
	Id       int64
	Execute  time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type TimerQueue []*TimerTask

func (q TimerQueue) Len() int { return len(q) }

func (q TimerQueue) Less(i, j int) bool {
	if q[i].Execute.Equal(q[j].Execute) {
		return q[i].Id < q[j].Id
	}
	return q[i].Execute.Before(q[j].Execute)
}

func (q TimerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *TimerQueue) Push(x interface{}) {
	n := len(*q)
	task := x.(*TimerTask)
	task.index = n
	*q = append(*q, task)
}

func (q *TimerQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	task.index = -1
	*q = old[0 : n-1]
	return task
}

// TimerManager schedules callbacks that are run by whoever calls Advance,
// so they execute on the caller's goroutine.
type TimerManager struct {
	queue  TimerQueue
	mutex  sync.Mutex
	nextId int64
	now    func() time.Time
}

// NewTimerManager uses clock to stamp new timers; nil means time.Now.
func NewTimerManager(clock func() time.Time) *TimerManager {
	if clock == nil {
		clock = time.Now
	}
	manager := &TimerManager{
		queue:  make(TimerQueue, 0),
		nextId: 1,
		now:    clock,
	}
	heap.Init(&manager.queue)
	return manager
}

// AddTimer runs callback after delay, then every interval when interval is
// positive.
func (m *TimerManager) AddTimer(delay time.Duration, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task := &TimerTask{
		Id:       m.nextId,
		Execute:  m.now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	m.nextId++

	heap.Push(&m.queue, task)
	return task.Id
}

func (m *TimerManager) RemoveTimer(timerId int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, task := range m.queue {
		if task.Id == timerId {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

func (m *TimerManager) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.queue.Len()
}

// Advance runs every task due at now and returns how many ran. A repeating
// task runs at most once per call.
func (m *TimerManager) Advance(now time.Time) int {
	m.mutex.Lock()
	var due []*TimerTask
	for m.queue.Len() > 0 {
		task := m.queue[0]
		if task.Execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		due = append(due, task)
	}
	for _, task := range due {
		if task.Interval > 0 {
			task.Execute = now.Add(task.Interval)
			heap.Push(&m.queue, task)
		}
	}
	m.mutex.Unlock()

	for _, task := range due {
		task.Callback()
	}
	return len(due)
}
