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

const (
	// MaxNrGens is the number of generations tracked with the sliding
	// window technique.
	MaxNrGens = 4
	// MinNrGens is the number of generations a window always keeps: the
	// active pair cannot be aged away.
	MinNrGens = 2
	// MaxNrTiers is the number of usage tiers within a generation.
	MaxNrTiers = 4
	// MaxNrZones is the number of physical memory zones per node.
	MaxNrZones = 5
)

// Class tells whether a page belongs to the anonymous or the file-backed
// address space. The value doubles as an index into per-class arrays.
type Class int

const (
	ClassAnon Class = iota
	ClassFile
	NrClasses
)

func (c Class) String() string {
	switch c {
	case ClassAnon:
		return "anon"
	case ClassFile:
		return "file"
	}
	return "invalid"
}

// LRUList is an index into the classic two-list bookkeeping. The active
// list of a class immediately follows its inactive list.
type LRUList int

const (
	LRUInactiveAnon LRUList = iota
	LRUActiveAnon
	LRUInactiveFile
	LRUActiveFile
	LRUUnevictable
	NrLRULists
)

func (lru LRUList) String() string {
	switch lru {
	case LRUInactiveAnon:
		return "inactive_anon"
	case LRUActiveAnon:
		return "active_anon"
	case LRUInactiveFile:
		return "inactive_file"
	case LRUActiveFile:
		return "active_file"
	case LRUUnevictable:
		return "unevictable"
	}
	return "invalid"
}

// lruBase returns the inactive list of a class.
func lruBase(class Class) LRUList {
	if class == ClassFile {
		return LRUInactiveFile
	}
	return LRUInactiveAnon
}

// Layout of the page state word. Boolean flags occupy the low bits, the
// generation tag and the usage counter are packed above them. The layout
// is private: callers go through the Page accessors.
const (
	flagLRU uint64 = 1 << iota
	flagActive
	flagReferenced
	flagWorkingset
	flagUnevictable
	flagSwapBacked
	flagSwapCache
	flagDirty
	flagWriteback
	flagReclaim
)

const (
	genShift = 16
	genWidth = 3
	genMask  uint64 = ((1 << genWidth) - 1) << genShift

	usageShift = genShift + genWidth
	usageWidth = 2
	usageMask  uint64 = ((1 << usageWidth) - 1) << usageShift
	usageOne   uint64 = 1 << usageShift
)
