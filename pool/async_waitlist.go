/*
Copyright 2023 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pool

import (
	"container/heap"
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// asyncCompletion is what the waitlist hands back to the async pool core
// when a waiter is popped or expires: an error (nil on success) and,
// on success, the slot reserved for this waiter. The pool -- not the
// waitlist -- decides how to turn that into a public completion call; the
// waitlist only ever moves this callback between its own structures and
// the caller's Executor, it never inspects it.
type asyncCompletion[T any] func(err error, el *list.Element)

// waiterNode is one pending acquisition. It lives in exactly two index
// structures at once: the FIFO order list (orderElem) and the
// deadline-ordered heap (heapIndex), per §3's "Waiter" record and §9's
// design note recommending stable node identity over raw cross-pointers.
// Nodes are recycled through a sync.Pool arena instead of being freed and
// reallocated on every push/pop, mirroring the node-reuse pattern in
// vitess's smartconnpool waitlist.
type waiterNode[T any] struct {
	id        uuid.UUID
	executor  Executor
	req       asyncCompletion[T]
	onExpired func()
	deadline  time.Time

	startedAt time.Time
	orderElem *list.Element
	heapIndex int
}

// deadlineHeap orders live waiterNodes by deadline, earliest first. It
// implements container/heap.Interface directly over *waiterNode pointers,
// which is what lets pop() (through removeLocked) remove an arbitrary node
// in O(log n) via heap.Remove(h, node.heapIndex).
type deadlineHeap[T any] []*waiterNode[T]

func (h deadlineHeap[T]) Len() int { return len(h) }
func (h deadlineHeap[T]) Less(i, j int) bool {
	return h[i].deadline.Before(h[j].deadline)
}
func (h deadlineHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *deadlineHeap[T]) Push(x any) {
	n := x.(*waiterNode[T])
	n.heapIndex = len(*h)
	*h = append(*h, n)
}
func (h *deadlineHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// asyncWaitlist is the FIFO of pending acquisitions described in §4.5: a
// capacity-bounded queue, ordered both by arrival (for strict-FIFO
// service) and by per-waiter deadline (for expiry), with one single-shot
// Timer maintained per distinct Executor seen in the queue.
type asyncWaitlist[T any] struct {
	mu       sync.Mutex
	capacity int
	onPanic  PanicHandler

	order *list.List // of *waiterNode[T], FIFO by arrival
	byDue deadlineHeap[T]

	timers map[Executor]Timer
	nodes  sync.Pool
}

func newAsyncWaitlist[T any](capacity int, onPanic PanicHandler) *asyncWaitlist[T] {
	wl := &asyncWaitlist[T]{
		capacity: capacity,
		onPanic:  onPanic,
		order:    list.New(),
		timers:   make(map[Executor]Timer),
	}
	wl.nodes.New = func() any { return &waiterNode[T]{} }
	return wl
}

// push enqueues a waiter. It returns false without enqueuing if the queue
// is already at capacity. wait is the caller's requested patience; the
// waiter's absolute deadline is computed as now+wait, saturating per
// clock.go so a caller can pass an effectively-infinite wait.
func (wl *asyncWaitlist[T]) push(executor Executor, req asyncCompletion[T], onExpired func(), wait time.Duration) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	if wl.byDue.Len() >= wl.capacity {
		return false
	}

	now := Now()
	n := wl.nodes.Get().(*waiterNode[T])
	*n = waiterNode[T]{
		id:        uuid.New(),
		executor:  executor,
		req:       req,
		onExpired: onExpired,
		deadline:  addSaturating(now, wait),
		startedAt: now,
	}
	n.orderElem = wl.order.PushBack(n)
	heap.Push(&wl.byDue, n)

	wl.updateTimerLocked()
	return true
}

// pop removes and returns the head of the FIFO, along with its id, the
// Executor it was registered against, and the time it was pushed. It
// reports false if the queue is empty.
func (wl *asyncWaitlist[T]) pop() (uuid.UUID, Executor, asyncCompletion[T], time.Time, bool) {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	front := wl.order.Front()
	if front == nil {
		var zero asyncCompletion[T]
		return uuid.Nil, nil, zero, time.Time{}, false
	}
	n := front.Value.(*waiterNode[T])
	wl.removeLocked(n)
	wl.updateTimerLocked()

	id, executor, req, startedAt := n.id, n.executor, n.req, n.startedAt
	wl.nodes.Put(n)
	return id, executor, req, startedAt, true
}

// removeLocked detaches n from both index structures. Callers must hold
// wl.mu.
func (wl *asyncWaitlist[T]) removeLocked(n *waiterNode[T]) {
	wl.order.Remove(n.orderElem)
	heap.Remove(&wl.byDue, n.heapIndex)
}

// expire is the timer callback: every waiter whose deadline has passed as
// of `at` is removed from both structures and has its onExpired callback
// posted on its own Executor -- never invoked inline, and never under
// wl.mu, so a re-entrant caller can't deadlock against this lock.
func (wl *asyncWaitlist[T]) expire(status TimerStatus, at time.Time) {
	if status == TimerCancelled {
		return
	}

	var toNotify []*waiterNode[T]

	wl.mu.Lock()
	for wl.byDue.Len() > 0 && !wl.byDue[0].deadline.After(at) {
		n := heap.Pop(&wl.byDue).(*waiterNode[T])
		wl.order.Remove(n.orderElem)
		toNotify = append(toNotify, n)
	}
	wl.updateTimerLocked()
	wl.mu.Unlock()

	for _, n := range toNotify {
		executor, onExpired, id := n.executor, n.onExpired, n.id
		logInfof("pool: waiter %s expired", id)
		postSafe(executor, wl.onPanic, onExpired)
		wl.nodes.Put(n)
	}
}

// updateTimerLocked reprograms the timer bound to the earliest deadline's
// Executor, or cancels every timer this waitlist owns if it's now empty.
// Callers must hold wl.mu.
func (wl *asyncWaitlist[T]) updateTimerLocked() {
	if wl.byDue.Len() == 0 {
		for _, t := range wl.timers {
			t.Cancel()
		}
		wl.timers = make(map[Executor]Timer)
		return
	}

	earliest := wl.byDue[0]
	deadline := earliest.deadline
	t := wl.timerForLocked(earliest.executor)
	t.ArmAt(deadline, func(status TimerStatus) {
		wl.expire(status, deadline)
	})
}

func (wl *asyncWaitlist[T]) timerForLocked(executor Executor) Timer {
	if t, ok := wl.timers[executor]; ok {
		return t
	}
	t := executor.NewTimer()
	wl.timers[executor] = t
	return t
}

// size returns the number of waiters currently queued.
func (wl *asyncWaitlist[T]) size() int {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return wl.byDue.Len()
}

// drainedWaiter is one entry returned by drain(): enough to both deliver a
// terminal completion and log which waiter it was.
type drainedWaiter[T any] struct {
	id       uuid.UUID
	executor Executor
	req      asyncCompletion[T]
}

// drain pops every waiter and returns their id/Executor/completion, for
// Disable() to notify and log all of them at once.
func (wl *asyncWaitlist[T]) drain() []drainedWaiter[T] {
	var all []drainedWaiter[T]
	for {
		id, executor, req, _, ok := wl.pop()
		if !ok {
			break
		}
		all = append(all, drainedWaiter[T]{id: id, executor: executor, req: req})
	}
	return all
}
