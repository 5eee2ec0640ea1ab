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

import "time"

// Executor is the reactor abstraction the async pool needs from its host:
// a way to run a callback later without blocking the caller, and a way to
// be woken up at a specific point in time. Concrete resources, sockets and
// the I/O loop that drives them are an external collaborator (spec §1) --
// the pool only ever asks an Executor to Post or to arm a Timer.
//
// Two waiters registered against distinct Executor values are tracked with
// independent timers; the waitlist never assumes there's only one.
type Executor interface {
	// Post schedules fn to run later, without blocking the caller. The
	// pool never calls a user callback synchronously under one of its own
	// locks -- it always goes through Post.
	Post(fn func())

	// NewTimer returns a Timer bound to this executor.
	NewTimer() Timer
}

// TimerStatus is passed to a Timer's fire callback.
type TimerStatus int

const (
	// TimerFired means the timer reached its deadline normally.
	TimerFired TimerStatus = iota
	// TimerCancelled means Cancel was called before the deadline.
	TimerCancelled
)

// Timer is a single-shot wait until a time point. ArmAt may be called
// again on the same Timer to reprogram it; doing so implicitly cancels any
// pending firing first.
type Timer interface {
	// ArmAt schedules onFire to run at t. A Timer that fires normally
	// calls onFire(TimerFired); a Timer whose pending firing is cancelled
	// calls onFire(TimerCancelled) at most once.
	ArmAt(t time.Time, onFire func(TimerStatus))

	// Cancel transitions any pending firing to TimerCancelled. Calling
	// Cancel on a Timer with nothing armed is a no-op.
	Cancel()
}
