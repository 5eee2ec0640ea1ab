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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thed636/resource-pool/pool/internal/leakcheck"
)

type asyncResult struct {
	handle *AsyncHandle[int]
	err    error
}

func awaitAsyncResult(t *testing.T, ch <-chan asyncResult) asyncResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
		return asyncResult{}
	}
}

func TestNewAsyncPoolPanicsOnNonPositiveCapacity(t *testing.T) {
	require.Panics(t, func() { NewAsyncPool[int](0, 1, 0, nil) })
	require.Panics(t, func() { NewAsyncPool[int](1, 0, 0, nil) })
}

func TestAsyncPoolImmediateGet(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	p := NewAsyncPool[int](2, 4, 0, nil)
	ch := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Second, func(h *AsyncHandle[int], err error) {
		ch <- asyncResult{h, err}
	})

	r := awaitAsyncResult(t, ch)
	require.NoError(t, r.err)
	require.True(t, r.handle.Empty())
	require.NoError(t, r.handle.Reset(intPtr(42)))
	v, err := r.handle.Get()
	require.NoError(t, err)
	require.Equal(t, 42, *v)
	r.handle.Recycle()
}

func TestAsyncPoolQueuesAndServesStrictFIFO(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	p := NewAsyncPool[int](1, 3, 0, nil)

	first := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		first <- asyncResult{h, err}
	})
	held := awaitAsyncResult(t, first)
	require.NoError(t, held.err)

	order := make(chan int, 3)
	results := make([]chan asyncResult, 3)
	for i := 0; i < 3; i++ {
		idx := i
		results[idx] = make(chan asyncResult, 1)
		p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
			order <- idx
			results[idx] <- asyncResult{h, err}
		})
		time.Sleep(5 * time.Millisecond) // keep push() order deterministic
	}
	require.Equal(t, 3, p.Queued())

	held.handle.Recycle()
	got0 := awaitAsyncResult(t, results[0])
	require.NoError(t, got0.err)
	require.Equal(t, 0, <-order)

	got0.handle.Recycle()
	got1 := awaitAsyncResult(t, results[1])
	require.NoError(t, got1.err)
	require.Equal(t, 1, <-order)

	got1.handle.Recycle()
	got2 := awaitAsyncResult(t, results[2])
	require.NoError(t, got2.err)
	require.Equal(t, 2, <-order)

	got2.handle.Recycle()
}

func TestAsyncPoolQueueOverflow(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	p := NewAsyncPool[int](1, 1, 0, nil)

	heldCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		heldCh <- asyncResult{h, err}
	})
	held := awaitAsyncResult(t, heldCh)

	queuedCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		queuedCh <- asyncResult{h, err}
	})

	overflowCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		overflowCh <- asyncResult{h, err}
	})

	overflow := awaitAsyncResult(t, overflowCh)
	require.ErrorIs(t, overflow.err, ErrQueueOverflow)

	held.handle.Recycle()
	queued := awaitAsyncResult(t, queuedCh)
	require.NoError(t, queued.err)
	queued.handle.Recycle()
}

func TestAsyncPoolWaiterTimesOut(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	p := NewAsyncPool[int](1, 1, 0, nil)

	heldCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		heldCh <- asyncResult{h, err}
	})
	held := awaitAsyncResult(t, heldCh)

	timeoutCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, 20*time.Millisecond, func(h *AsyncHandle[int], err error) {
		timeoutCh <- asyncResult{h, err}
	})

	r := awaitAsyncResult(t, timeoutCh)
	require.ErrorIs(t, r.err, ErrTimeout)
	require.Nil(t, r.handle)

	held.handle.Recycle()
}

func TestAsyncPoolDisableDrainsWaiters(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	p := NewAsyncPool[int](1, 3, 0, nil)

	heldCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		heldCh <- asyncResult{h, err}
	})
	held := awaitAsyncResult(t, heldCh)

	const n = 3
	waiterChs := make([]chan asyncResult, n)
	for i := 0; i < n; i++ {
		waiterChs[i] = make(chan asyncResult, 1)
		ch := waiterChs[i]
		p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
			ch <- asyncResult{h, err}
		})
	}

	time.Sleep(10 * time.Millisecond)
	p.Disable()

	for i := 0; i < n; i++ {
		r := awaitAsyncResult(t, waiterChs[i])
		require.ErrorIs(t, r.err, ErrDisabled)
	}

	held.handle.Recycle()
}

func TestAsyncPoolWasteNeverReusesAvailable(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	p := NewAsyncPool[int](1, 1, 0, nil)

	heldCh := make(chan asyncResult, 1)
	p.GetAutoWaste(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		heldCh <- asyncResult{h, err}
	})
	held := awaitAsyncResult(t, heldCh)
	require.NoError(t, held.handle.Reset(intPtr(1)))

	waiterCh := make(chan asyncResult, 1)
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		waiterCh <- asyncResult{h, err}
	})

	held.handle.Waste()

	r := awaitAsyncResult(t, waiterCh)
	require.NoError(t, r.err)
	require.True(t, r.handle.Empty(), "waste must grow a fresh slot for the waiter, never hand back the wasted value")
	r.handle.Recycle()
}

func TestAsyncPoolRecoversPanickingCompletion(t *testing.T) {
	t.Cleanup(func() { leakcheck.VerifyNone(t) })

	recovered := make(chan any, 1)
	p := NewAsyncPool[int](1, 1, 0, func(r any) { recovered <- r })

	done := make(chan struct{})
	p.GetAutoRecycle(GoExecutor{}, time.Minute, func(h *AsyncHandle[int], err error) {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("completion never ran")
	}

	select {
	case r := <-recovered:
		require.Equal(t, "boom", r)
	case <-time.After(2 * time.Second):
		t.Fatal("panic handler never ran")
	}
}
