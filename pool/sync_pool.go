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
	"context"
	"time"
)

// Pool is a bounded, reusable collection of values of type T. Capacity is
// fixed at construction and the pool never resizes, matching §4.8's
// "never resize" contract.
type Pool[T any] struct {
	core *syncCore[T]
}

// NewPool creates a Pool with the given capacity. idleTimeout, if
// positive, is how long a recycled slot may sit available before it's
// lazily dropped the next time somebody tries to acquire it; zero means
// recycled values never expire. NewPool panics if capacity <= 0, matching
// the original's assert_capacity, which treats a non-positive capacity as
// a programming error rather than a runtime condition.
func NewPool[T any](capacity int, idleTimeout time.Duration) *Pool[T] {
	return &Pool[T]{core: newSyncCore[T](capacity, idleTimeout)}
}

// Capacity returns the pool's fixed capacity.
func (p *Pool[T]) Capacity() int { return p.core.capacity }

// Stats returns a read-only snapshot of the pool's counters.
func (p *Pool[T]) Stats() Stats { return p.core.stats() }

// GetAutoRecycle blocks until a slot is available, ctx is done, or the
// pool is disabled, returning a Handle whose disposition strategy is
// Recycle. On growth, the returned handle is empty; call Reset before
// using it.
func (p *Pool[T]) GetAutoRecycle(ctx context.Context) (*Handle[T], error) {
	return p.get(ctx, dispositionRecycle)
}

// GetAutoWaste is the same as GetAutoRecycle but the handle's disposition
// strategy is Waste: on Close, the slot's value is discarded rather than
// returned to the available set.
func (p *Pool[T]) GetAutoWaste(ctx context.Context) (*Handle[T], error) {
	return p.get(ctx, dispositionWaste)
}

func (p *Pool[T]) get(ctx context.Context, strategy disposition) (*Handle[T], error) {
	el, err := p.core.get(ctx)
	if err != nil {
		return nil, err
	}
	return &Handle[T]{pool: p, el: el, strategy: strategy}, nil
}

// Disable shuts the pool down: every blocked Get returns ErrDisabled, and
// no further Get succeeds. It never returns to enabled.
func (p *Pool[T]) Disable() {
	p.core.disable()
}
