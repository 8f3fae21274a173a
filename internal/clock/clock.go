package clock

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs a callback periodically until the returned stop function is called.
// stop is idempotent and safe to call from inside the callback.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// Real schedules callbacks on the wall clock.
type Real struct{}

func (Real) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// Manual fires callbacks only when Advance is called. Intended for tests.
type Manual struct {
	mu     sync.Mutex
	nextID int
	tasks  map[int]func()
}

func NewManual() *Manual {
	return &Manual{tasks: make(map[int]func())}
}

func (m *Manual) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.tasks[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// Advance fires every live callback n times, in registration order.
// A callback stopped during Advance does not fire again.
func (m *Manual) Advance(n int) {
	for i := 0; i < n; i++ {
		for _, id := range m.liveIDs() {
			m.mu.Lock()
			fn, ok := m.tasks[id]
			m.mu.Unlock()
			if ok {
				fn()
			}
		}
	}
}

// Active reports how many callbacks are still scheduled.
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) liveIDs() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
