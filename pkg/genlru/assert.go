// Copyright 2022 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package genlru

import (
	"fmt"
)

// Contract violations are programming errors: callers guarantee the
// preconditions of every operation. With assertions enabled a violation
// panics, otherwise the check costs one branch and the behavior on a
// violated invariant is undefined.

var assertionsEnabled bool = false

// SetAssertions enables or disables invariant checking.
func SetAssertions(enabled bool) {
	assertionsEnabled = enabled
}

func assert(cond bool, format string, v ...interface{}) {
	if assertionsEnabled && !cond {
		panic(fmt.Sprintf("genlru: assertion failed: "+format, v...))
	}
}
