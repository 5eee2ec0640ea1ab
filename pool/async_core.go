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
	"sync"
	"time"
)

// asyncCore is the non-blocking counterpart of syncCore. get/recycle/waste
// never block the caller; every outcome -- immediate or queued -- reaches
// the caller through a posted completion, never a direct call under
// asyncCore's own mutex, matching §4.6's atomicity contract.
type asyncCore[T any] struct {
	mu sync.Mutex

	capacity    int
	idleTimeout time.Duration
	disabled    bool
	onPanic     PanicHandler

	available *list.List // of *slot[T]
	used      *list.List // of *slot[T]

	waiters *asyncWaitlist[T]

	waitCount int64
	waitTime  time.Duration
}

func newAsyncCore[T any](capacity, queueCapacity int, idleTimeout time.Duration, onPanic PanicHandler) *asyncCore[T] {
	if capacity <= 0 {
		panic("pool: capacity must be positive")
	}
	if queueCapacity <= 0 {
		panic("pool: queue capacity must be positive")
	}
	return &asyncCore[T]{
		capacity:    capacity,
		idleTimeout: idleTimeout,
		onPanic:     onPanic,
		available:   list.New(),
		used:        list.New(),
		waiters:     newAsyncWaitlist[T](queueCapacity, onPanic),
	}
}

func (c *asyncCore[T]) sizeLocked() int {
	return c.available.Len() + c.used.Len()
}

func (c *asyncCore[T]) fitsCapacityLocked() bool {
	return c.sizeLocked() < c.capacity
}

// allocAvailableLocked is identical in spirit to syncCore's: pop the front
// of the available list, lazily dropping anything past its drop time.
func (c *asyncCore[T]) allocAvailableLocked() *list.Element {
	now := Now()
	for {
		front := c.available.Front()
		if front == nil {
			return nil
		}
		s := front.Value.(*slot[T])
		c.available.Remove(front)
		if s.expired(now) {
			continue
		}
		return c.used.PushBack(s)
	}
}

// get implements §4.6's three-way branch: disabled, immediately servable,
// or queued. executor and wait describe where and how long to wait; req is
// called exactly once, always via executor.Post, never inline.
func (c *asyncCore[T]) get(executor Executor, req asyncCompletion[T], wait time.Duration) {
	c.mu.Lock()

	if c.disabled {
		c.mu.Unlock()
		postSafe(executor, c.onPanic, func() { req(ErrDisabled, nil) })
		return
	}

	if el := c.allocAvailableLocked(); el != nil {
		c.mu.Unlock()
		postSafe(executor, c.onPanic, func() { req(nil, el) })
		return
	}

	if c.fitsCapacityLocked() {
		el := c.used.PushBack(&slot[T]{})
		c.mu.Unlock()
		postSafe(executor, c.onPanic, func() { req(nil, el) })
		return
	}
	c.mu.Unlock()

	onExpired := func() { req(ErrTimeout, nil) }
	if !c.waiters.push(executor, req, onExpired, wait) {
		logInfof("pool: waiter queue overflow")
		postSafe(executor, c.onPanic, func() { req(ErrQueueOverflow, nil) })
	}
}

// recycle returns a slot to the available set and, only if somebody is
// actually waiting, immediately takes a slot back out of available to
// serve them -- the same alloc_resource the pool runs for any other Get,
// just invoked straight from here instead of from a caller's stack.
func (c *asyncCore[T]) recycle(el *list.Element) {
	s := el.Value.(*slot[T])
	if c.idleTimeout > 0 {
		s.dropTime = addSaturating(Now(), c.idleTimeout)
	} else {
		s.dropTime = time.Time{}
	}

	c.mu.Lock()
	c.used.Remove(el)
	c.available.PushBack(s)

	_, executor, req, startedAt, ok := c.waiters.pop()
	if !ok {
		c.mu.Unlock()
		return
	}
	served := c.allocAvailableLocked()
	if served == nil {
		// Every available slot, including the one just recycled, had
		// already passed its drop time and was evicted. We already
		// committed to serving this waiter, so grow instead of losing
		// them: sizeLocked() just shrank by at least one eviction, so there's
		// room.
		served = c.used.PushBack(&slot[T]{})
	}
	c.mu.Unlock()

	c.recordWait(startedAt)
	postSafe(executor, c.onPanic, func() { req(nil, served) })
}

// waste empties a slot and serves the oldest waiter by growing a fresh
// empty reservation for them -- never by reusing `available`, which waste
// never populates. This mirrors the original's deliberate asymmetry:
// recycle wakes via alloc_resource, waste wakes via reserve_resource (see
// SPEC_FULL.md §12.4).
func (c *asyncCore[T]) waste(el *list.Element) {
	c.mu.Lock()
	c.used.Remove(el)

	_, executor, req, startedAt, ok := c.waiters.pop()
	if !ok {
		c.mu.Unlock()
		return
	}
	grown := c.used.PushBack(&slot[T]{})
	c.mu.Unlock()

	c.recordWait(startedAt)
	postSafe(executor, c.onPanic, func() { req(nil, grown) })
}

func (c *asyncCore[T]) recordWait(startedAt time.Time) {
	if startedAt.IsZero() {
		return
	}
	d := Now().Sub(startedAt)
	if d < 0 {
		return
	}
	c.mu.Lock()
	c.waitCount++
	c.waitTime += d
	c.mu.Unlock()
}

// disable shuts the pool down and drains every pending waiter with
// ErrDisabled, each delivered through its own Executor.
func (c *asyncCore[T]) disable() {
	c.mu.Lock()
	c.disabled = true
	c.mu.Unlock()

	logInfof("pool: disabled")
	for _, w := range c.waiters.drain() {
		executor, req := w.executor, w.req
		logInfof("pool: waiter %s disabled", w.id)
		postSafe(executor, c.onPanic, func() { req(ErrDisabled, nil) })
	}
}

func (c *asyncCore[T]) stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Capacity:  c.capacity,
		Available: c.available.Len(),
		Used:      c.used.Len(),
		Waiters:   c.waiters.size(),
		WaitCount: c.waitCount,
		WaitTime:  c.waitTime,
		Disabled:  c.disabled,
	}
}
