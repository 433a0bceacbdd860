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

// VMAFlags carry the mapping-level properties the activation protocol
// consults. The fault handler fills them in from the faulting mapping.
type VMAFlags uint64

const (
	// VMALocked marks an mlocked mapping; its pages never age normally.
	VMALocked VMAFlags = 1 << iota
	// VMASpecial marks mappings without regular page semantics.
	VMASpecial
)

// VMA is the read-only view of a virtual memory area the activation
// protocol needs: pages of DAX, locked and special mappings are not
// promoted on fault.
type VMA struct {
	Flags VMAFlags
	Dax   bool
}
