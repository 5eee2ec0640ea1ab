/*
Copyright 2019 The Vitess Authors.

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

import "github.com/golang/glog"

// logInfof and logErrorf are a thin adapter around glog, the way
// vitess/go/vt/log wraps it: the rest of the package never imports glog
// directly, so the logging backend stays swappable in one place.
var (
	logInfof  = glog.Infof
	logErrorf = glog.Errorf
)
