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

// Package leakcheck gives pool's tests a way to assert that exercising a
// Pool or AsyncPool never leaves goroutines behind: no stuck waiter
// goroutine, no leaked context watcher, no timer goroutine that outlived
// its pool.
package leakcheck

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

// ignored lists background goroutines started by this module's own
// dependencies that are expected to outlive any single test.
var ignored = []goleak.Option{
	goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
	goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	goleak.IgnoreTopFunction("testing.tRunner.func1"),
}

// VerifyNone fails the test immediately if any unexpected goroutine is
// still running. Call it with t.Cleanup at the top of a test that
// exercises a Pool or AsyncPool directly.
func VerifyNone(t testing.TB) {
	t.Helper()
	if t.Failed() {
		return
	}
	if err := find(); err != nil {
		t.Fatal(err)
	}
}

// find retries briefly because a blocking Get's context-watcher goroutine, or a
// GoExecutor's time.AfterFunc goroutine, may still be unwinding its own
// defers when the test body returns.
func find() error {
	var err error
	for i := 0; i < 10; i++ {
		err = goleak.Find(ignored...)
		if err == nil {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return err
}
