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
	"container/list"
	"fmt"
	"sync/atomic"
)

// Page describes one physical page, or the head page of a compound run
// of 1<<order pages. The state word packs the boolean flags, the
// generation tag and the usage counter; it is read and written with
// atomic operations only. List membership and the owner pointer are
// guarded by the owning container's lock.
type Page struct {
	flags uint64
	order int
	zone  int

	owner   *Lruvec
	element *list.Element
}

// NewPage creates an unassigned page descriptor. Anonymous pages start
// swap-backed, which is what makes them anonymous to the LRU.
func NewPage(class Class, zone int, order int) *Page {
	assert(zone >= 0 && zone < MaxNrZones, "zone %d out of range", zone)
	assert(order >= 0, "negative compound order %d", order)
	p := &Page{zone: zone, order: order}
	if class == ClassAnon {
		p.setFlag(flagSwapBacked, true)
	}
	return p
}

// NrPages returns the number of base pages this descriptor stands for.
func (p *Page) NrPages() int64 {
	return int64(1) << p.order
}

func (p *Page) Zone() int {
	return p.zone
}

// Class returns ClassFile for regular page cache pages and lazily freed
// anonymous pages, ClassAnon for swap-backed pages. The distinction must
// survive until the page leaves the LRU, hence a flag rather than a
// recomputation.
func (p *Page) Class() Class {
	if p.testFlag(flagSwapBacked) {
		return ClassAnon
	}
	return ClassFile
}

func (p *Page) load() uint64 {
	return atomic.LoadUint64(&p.flags)
}

func (p *Page) testFlag(mask uint64) bool {
	return p.load()&mask != 0
}

func (p *Page) setFlag(mask uint64, value bool) {
	for {
		old := p.load()
		new := old &^ mask
		if value {
			new = old | mask
		}
		if old == new || atomic.CompareAndSwapUint64(&p.flags, old, new) {
			return
		}
	}
}

func (p *Page) OnLRU() bool        { return p.testFlag(flagLRU) }
func (p *Page) Active() bool       { return p.testFlag(flagActive) }
func (p *Page) Referenced() bool   { return p.testFlag(flagReferenced) }
func (p *Page) Workingset() bool   { return p.testFlag(flagWorkingset) }
func (p *Page) Unevictable() bool  { return p.testFlag(flagUnevictable) }
func (p *Page) SwapBacked() bool   { return p.testFlag(flagSwapBacked) }
func (p *Page) SwapCache() bool    { return p.testFlag(flagSwapCache) }
func (p *Page) Dirty() bool        { return p.testFlag(flagDirty) }
func (p *Page) Writeback() bool    { return p.testFlag(flagWriteback) }
func (p *Page) UnderReclaim() bool { return p.testFlag(flagReclaim) }

func (p *Page) SetActive(v bool)       { p.setFlag(flagActive, v) }
func (p *Page) SetReferenced(v bool)   { p.setFlag(flagReferenced, v) }
func (p *Page) SetWorkingset(v bool)   { p.setFlag(flagWorkingset, v) }
func (p *Page) SetUnevictable(v bool)  { p.setFlag(flagUnevictable, v) }
func (p *Page) SetSwapCache(v bool)    { p.setFlag(flagSwapCache, v) }
func (p *Page) SetDirty(v bool)        { p.setFlag(flagDirty, v) }
func (p *Page) SetWriteback(v bool)    { p.setFlag(flagWriteback, v) }
func (p *Page) SetUnderReclaim(v bool) { p.setFlag(flagReclaim, v) }

// LRU returns the classic list the page belongs on.
func (p *Page) LRU() LRUList {
	assert(!(p.Active() && p.Unevictable()), "page both active and unevictable")
	if p.Unevictable() {
		return LRUUnevictable
	}
	lru := lruBase(p.Class())
	if p.Active() {
		lru++
	}
	return lru
}

// ClearLRUFlags drops the LRU-related flags before the page is released
// back to the allocator.
func (p *Page) ClearLRUFlags() {
	assert(p.OnLRU(), "clearing LRU flags of a page not on LRU")
	p.setFlag(flagLRU, false)

	// this shouldn't happen, so leave the flags for the caller to report
	if p.Active() && p.Unevictable() {
		return
	}
	p.setFlag(flagActive|flagUnevictable, false)
}

func (p *Page) String() string {
	return fmt.Sprintf("page{class=%s zone=%d pages=%d gen=%d tier=%d flags=%#x}",
		p.Class(), p.zone, p.NrPages(), p.Gen(), p.TierUsage(), p.load())
}
