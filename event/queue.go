package event

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const MaxQueued = 65535

const (
	Add = iota
	Peek
	Get
)

var WaitTimeoutExceeded error = waitTimeoutError{}

// ErrQueueFull is returned when MaxQueued events are waiting.
var ErrQueueFull = errors.New("event queue is full")

type waitTimeoutError struct{}

func (waitTimeoutError) Error() string   { return "wait timeout exceeded" }
func (waitTimeoutError) Timeout() bool   { return true }
func (waitTimeoutError) Temporary() bool { return true }

// Filter decides whether an event is queued. Returning false drops it.
type Filter func(userdata interface{}, event Event) bool

type Watcher struct {
	Callback Filter
	Userdata interface{}
}

// Queue buffers events between the dispatching goroutine, which feeds it
// through Handle, and a consumer that may run elsewhere. The zero value is
// ready to use.
type Queue struct {
	mu      sync.Mutex
	events  []Event
	dropped int
	notify  chan struct{}

	maxEventsSeen int

	watchers []*Watcher
	ok       Filter
	okdata   interface{}
}

func (q *Queue) wake() chan struct{} {
	if q.notify == nil {
		q.notify = make(chan struct{}, 1)
	}
	return q.notify
}

// Handle implements Handler. Events beyond MaxQueued are counted and dropped.
func (q *Queue) Handle(ev Event) {
	if _, err := q.Push(ev); errors.Is(err, ErrQueueFull) {
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
	}
}

// Push runs the watchers and the filter and queues ev. It reports whether the
// filter let the event through.
func (q *Queue) Push(ev Event) (bool, error) {
	q.mu.Lock()
	ok, okdata := q.ok, q.okdata
	watchers := append([]*Watcher(nil), q.watchers...)
	q.mu.Unlock()

	if ok != nil && !ok(okdata, ev) {
		return false, nil
	}
	for _, w := range watchers {
		w.Callback(w.Userdata, ev)
	}
	_, err := q.Peep([]Event{ev}, Add, FirstEvent, LastEvent)
	if err != nil {
		return true, errors.Wrap(err, "unable to add event to queue")
	}
	return true, nil
}

// Peep adds events, or copies (Peek) or removes (Get) queued events whose type
// is within [minType, maxType]. With a nil slice Peek and Get only count.
func (q *Queue) Peep(events []Event, action int, minType, maxType uint32) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	used := 0
	switch action {
	case Add:
		for _, ev := range events {
			if len(q.events) >= MaxQueued {
				return used, ErrQueueFull
			}
			q.events = append(q.events, ev)
			used++
		}
		if len(q.events) > q.maxEventsSeen {
			q.maxEventsSeen = len(q.events)
		}
		if used > 0 {
			select {
			case q.wake() <- struct{}{}:
			default:
			}
		}
	case Peek, Get:
		kept := q.events[:0]
		for _, ev := range q.events {
			matches := minType <= ev.Type() && ev.Type() <= maxType
			if matches && (events == nil || used < len(events)) {
				if events != nil {
					events[used] = ev
				}
				used++
				if action == Get && events != nil {
					continue
				}
			}
			kept = append(kept, ev)
		}
		for i := len(kept); i < len(q.events); i++ {
			q.events[i] = nil
		}
		q.events = kept
	default:
		return 0, errors.New("invalid action type")
	}
	return used, nil
}

func (q *Queue) HasType(evType uint32) bool {
	return q.HasTypes(evType, evType)
}

func (q *Queue) HasTypes(minType, maxType uint32) bool {
	cnt, _ := q.Peep(nil, Peek, minType, maxType)
	return cnt > 0
}

func (q *Queue) FlushType(evType uint32) {
	q.FlushTypes(evType, evType)
}

// FlushTypes drops every queued event with a type in [minType, maxType].
func (q *Queue) FlushTypes(minType, maxType uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.events[:0]
	for _, ev := range q.events {
		if minType <= ev.Type() && ev.Type() <= maxType {
			continue
		}
		kept = append(kept, ev)
	}
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = nil
	}
	q.events = kept
}

// Len is the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped is the number of events lost because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Poll removes the oldest event without blocking.
func (q *Queue) Poll() (Event, bool) {
	buf := make([]Event, 1)
	n, _ := q.Peep(buf, Get, FirstEvent, LastEvent)
	if n == 0 {
		return nil, false
	}
	return buf[0], true
}

// Wait blocks until an event is available or ctx is done.
func (q *Queue) Wait(ctx context.Context) (Event, error) {
	for {
		if ev, ok := q.Poll(); ok {
			return ev, nil
		}
		q.mu.Lock()
		notify := q.wake()
		q.mu.Unlock()
		select {
		case <-notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// WaitTimeout is Wait bounded by timeout. It fails with WaitTimeoutExceeded.
func (q *Queue) WaitTimeout(timeout time.Duration) (Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ev, err := q.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, WaitTimeoutExceeded
	}
	return ev, err
}

// SetFilter installs f and drops every queued event f rejects.
func (q *Queue) SetFilter(f Filter, userdata interface{}) {
	q.mu.Lock()
	q.ok = f
	q.okdata = userdata
	q.mu.Unlock()
	if f != nil {
		q.Filter(f, userdata)
	}
}

func (q *Queue) GetFilter() (Filter, interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ok, q.okdata
}

// AddWatch registers a callback that sees every event the filter accepts,
// before it is queued.
func (q *Queue) AddWatch(watcher *Watcher) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.watchers = append(q.watchers, watcher)
}

func (q *Queue) DelWatch(watcher *Watcher) {
	q.mu.Lock()
	defer q.mu.Unlock()
	updatedWatchers := q.watchers[:0]
	for _, w := range q.watchers {
		if w != watcher {
			updatedWatchers = append(updatedWatchers, w)
		}
	}
	q.watchers = updatedWatchers
}

// Filter drops the queued events f rejects.
func (q *Queue) Filter(f Filter, userdata interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.events[:0]
	for _, ev := range q.events {
		if f(userdata, ev) {
			kept = append(kept, ev)
		}
	}
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = nil
	}
	q.events = kept
}
