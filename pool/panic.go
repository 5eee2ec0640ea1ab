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

// PanicHandler is invoked, on whatever goroutine the Executor chose to run
// it on, when a posted completion panics. It is the Go analog of the
// original's call_and_catch_exception/client_handler_exception: a panicking
// callback must never take down the executor goroutine it happened to run
// on, or the pool along with it.
type PanicHandler func(recovered any)

// defaultPanicHandler logs and swallows the panic. Unlike the original's
// default handler chain, it never aborts the process -- taking down a Go
// process by default from a library import is hostile.
func defaultPanicHandler(recovered any) {
	logErrorf("pool: %s: %v", ErrClientHandlerPanic, recovered)
}

// postSafe posts fn to executor wrapped in a recover that routes any panic
// to handler instead of letting it escape onto the executor's goroutine.
func postSafe(executor Executor, handler PanicHandler, fn func()) {
	if handler == nil {
		handler = defaultPanicHandler
	}
	executor.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				handler(r)
			}
		}()
		fn()
	})
}
