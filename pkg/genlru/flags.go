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
	"math/bits"
	"sync/atomic"
)

// State word codec. Every mutation is a read-modify-write loop retried
// with CompareAndSwapUint64 until it wins against concurrent writers.
// The loops terminate: the only legal concurrent writers are usage
// increments, which are additive on a disjoint bit range, and a single
// generation assignment or removal, excluded from each other by the
// list-membership protocol. None of these operations block and all are
// safe to call from any goroutine.

// The generation tag is stored as gen+1 so that a zero field means
// "unassigned".

// Gen returns the generation the page is tagged with, or -1 when the
// page is not on a generational list.
func (p *Page) Gen() int {
	return int((p.load()&genMask)>>genShift) - 1
}

// assignGen tags the page with gen and clears the legacy active flag,
// which is now derived from generation recency. Usage history is dropped
// unless the page carries a reference record.
func (p *Page) assignGen(gen int) {
	assert(gen >= 0 && gen < MaxNrGens, "generation %d out of range", gen)
	for {
		old := p.load()
		assert(old&genMask == 0, "page already has a generation, flags %#x", old)

		new := (old &^ (genMask | flagActive)) | (uint64(gen+1) << genShift)
		if old&flagReferenced == 0 {
			new &^= usageMask | flagWorkingset
		}
		if atomic.CompareAndSwapUint64(&p.flags, old, new) {
			return
		}
	}
}

// clearGen removes the generation tag and returns the generation the
// page was in, or -1 when there was none. isActive tells whether a
// generation counts as active; when it does, the legacy active flag is
// restored so code paths still reading that flag keep working.
func (p *Page) clearGen(isActive func(gen int) bool) int {
	for {
		old := p.load()
		if old&genMask == 0 {
			return -1
		}

		assert(old&flagActive == 0, "generational page has legacy active flag, flags %#x", old)
		assert(old&flagUnevictable == 0, "generational page is unevictable, flags %#x", old)

		gen := int((old&genMask)>>genShift) - 1
		new := old &^ genMask
		if isActive(gen) {
			new |= flagActive
		}
		if atomic.CompareAndSwapUint64(&p.flags, old, new) {
			return gen
		}
	}
}

// TierUsage returns the level of usage of the page: 0 when the page has
// no workingset record, otherwise the saturating access count plus one.
func (p *Page) TierUsage() int {
	flags := p.load()
	if flags&flagWorkingset == 0 {
		return 0
	}
	return int((flags&usageMask)>>usageShift) + 1
}

// TierFromUsage converts a level of usage to a tier within a generation.
// Tiers grow logarithmically so that one more access matters less the
// hotter a page already is.
func TierFromUsage(usage int) int {
	// order_base_2(usage + 1)
	if usage <= 0 {
		return 0
	}
	return bits.Len(uint(usage))
}

// Tier returns the usage tier of the page, in [0, MaxNrTiers).
func (p *Page) Tier() int {
	return TierFromUsage(p.TierUsage())
}

// incUsage records one more access. The first access only sets the
// workingset marker; later ones bump the counter, saturating at the
// maximum representable value.
func (p *Page) incUsage() {
	for {
		old := p.load()
		var new uint64
		if old&flagWorkingset == 0 {
			new = old | flagWorkingset
		} else {
			usage := old & usageMask
			if usage == usageMask {
				return
			}
			usage += usageOne
			if usage > usageMask {
				usage = usageMask
			}
			new = (old &^ usageMask) | usage
		}
		if atomic.CompareAndSwapUint64(&p.flags, old, new) {
			return
		}
	}
}
