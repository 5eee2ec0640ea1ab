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
	"sync"
	"time"
)

// GoExecutor is the default Executor: Post spawns a goroutine, and its
// Timer wraps time.AfterFunc. It's a reasonable stand-in for a real I/O
// reactor in tests and in programs that don't already have one of their
// own; callers with an existing event loop should implement Executor
// against it instead of going through this.
type GoExecutor struct{}

// Post implements Executor.
func (GoExecutor) Post(fn func()) {
	go fn()
}

// NewTimer implements Executor.
func (GoExecutor) NewTimer() Timer {
	return &goTimer{}
}

type goTimer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// ArmAt implements Timer.
func (t *goTimer) ArmAt(at time.Time, onFire func(TimerStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen

	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		fired := gen == t.gen
		t.mu.Unlock()
		if fired {
			onFire(TimerFired)
		}
	})
}

// Cancel implements Timer.
func (t *goTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}
