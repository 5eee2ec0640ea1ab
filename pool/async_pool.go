/*
Copyright 2017 Google Inc.

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
	"container/list"
	"time"
)

// AsyncPool is the non-blocking counterpart of Pool. Get never blocks the
// caller; the outcome is delivered through a completion callback posted to
// the caller-supplied Executor, matching §4.6/§4.7's contract.
type AsyncPool[T any] struct {
	core *asyncCore[T]
}

// NewAsyncPool creates an AsyncPool with the given resource capacity and
// waiter-queue capacity. queueCapacity bounds how many pending Gets may be
// queued at once; a Get that would exceed it completes immediately with
// ErrQueueOverflow instead of being queued. NewAsyncPool panics if either
// capacity is <= 0.
//
// onPanic, if non-nil, is called instead of the default glog-backed handler
// whenever a completion callback panics while running on an Executor.
func NewAsyncPool[T any](capacity, queueCapacity int, idleTimeout time.Duration, onPanic PanicHandler) *AsyncPool[T] {
	return &AsyncPool[T]{core: newAsyncCore[T](capacity, queueCapacity, idleTimeout, onPanic)}
}

// Capacity returns the pool's fixed resource capacity.
func (p *AsyncPool[T]) Capacity() int { return p.core.capacity }

// Stats returns a read-only snapshot of the pool's counters, including the
// current waiter-queue depth.
func (p *AsyncPool[T]) Stats() Stats { return p.core.stats() }

// Queued returns the number of Gets currently waiting for a slot.
func (p *AsyncPool[T]) Queued() int { return p.core.waiters.size() }

// GetAutoRecycle requests a slot without blocking. completion is invoked
// exactly once, posted through executor, with either a non-nil error (one
// of ErrDisabled, ErrQueueOverflow, ErrTimeout) and a nil handle, or a nil
// error and a handle whose disposition strategy is Recycle. wait bounds how
// long the request may sit queued before completing with ErrTimeout; pass a
// value produced by a saturating computation (or a very large Duration) to
// mean "no deadline".
func (p *AsyncPool[T]) GetAutoRecycle(executor Executor, wait time.Duration, completion func(*AsyncHandle[T], error)) {
	p.get(executor, wait, dispositionRecycle, completion)
}

// GetAutoWaste is the same as GetAutoRecycle but the handle's disposition
// strategy is Waste: on Close, the slot's value is discarded rather than
// returned to the available set.
func (p *AsyncPool[T]) GetAutoWaste(executor Executor, wait time.Duration, completion func(*AsyncHandle[T], error)) {
	p.get(executor, wait, dispositionWaste, completion)
}

func (p *AsyncPool[T]) get(executor Executor, wait time.Duration, strategy disposition, completion func(*AsyncHandle[T], error)) {
	p.core.get(executor, func(err error, el *list.Element) {
		if err != nil {
			completion(nil, err)
			return
		}
		completion(&AsyncHandle[T]{pool: p, el: el, strategy: strategy}, nil)
	}, wait)
}

// Disable shuts the pool down: every queued Get completes with
// ErrDisabled, and no further Get succeeds. It never returns to enabled.
func (p *AsyncPool[T]) Disable() {
	p.core.disable()
}
