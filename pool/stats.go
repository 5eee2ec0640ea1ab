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

// Stats is a read-only snapshot of a pool's counters, the Go equivalent of
// the teacher's hand-built StatsJSON string -- here it's a real struct with
// json tags so callers can marshal it however they like instead of parsing
// a %v-formatted blob.
type Stats struct {
	Capacity  int           `json:"capacity"`
	Available int           `json:"available"`
	Used      int           `json:"used"`
	Waiters   int           `json:"waiters"`
	WaitCount int64         `json:"wait_count"`
	WaitTime  time.Duration `json:"wait_time"`
	Disabled  bool          `json:"disabled"`
}
