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

import "time"

// slot is the in-pool representation of one resource cell: an optional
// value plus the time at which it should be dropped instead of reused.
// A slot with a nil value and dropTime == zero value is "empty" (reserved
// but not yet filled by Reset, or materialized for growth).
type slot[T any] struct {
	value    *T
	dropTime time.Time
}

// expired reports whether this slot's value, if any, is past its drop
// time and should be discarded instead of handed out. A zero dropTime
// (never set) or noDeadline both mean "never expires".
func (s slot[T]) expired(now time.Time) bool {
	if s.value == nil {
		return false
	}
	if s.dropTime.IsZero() || s.dropTime.Equal(noDeadline) {
		return false
	}
	return !s.dropTime.After(now)
}
