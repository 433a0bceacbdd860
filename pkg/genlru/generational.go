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

// The generational scheme. Pages are classified into a generation by
// expected reuse distance on insertion rather than defaulting to one end
// of a list, and accesses bump a per-page usage counter instead of
// shuffling list positions.

type generational struct{}

func init() {
	SchemeRegister("generational", NewGenerationalScheme)
}

func NewGenerationalScheme() Scheme {
	return &generational{}
}

func (g *generational) Enabled(lv *Lruvec, class Class) bool {
	return lv.enabled[class]
}

func (g *generational) Insert(lv *Lruvec, page *Page, front bool) bool {
	class := page.Class()
	zone := page.Zone()

	if page.Unevictable() || !lv.enabled[class] {
		stats.Store(StatsFallback{Op: "insert"})
		return false
	}

	lv.lock()
	defer lv.unlock()

	// A page being faulted in goes to the youngest generation: the aging
	// loop watches the size of that generation to decide when aging is
	// due.
	//
	// A page that can't be evicted immediately, i.e. an anonymous page
	// not in swap cache, a dirty page waiting on writeback, or a page
	// reclaim already rejected once, goes to the second oldest
	// generation.
	//
	// A page that could be evicted immediately, i.e. deactivated, rotated
	// by writeback, or allocated for buffered io, goes to the oldest
	// generation.
	var gen int
	switch {
	case page.Active():
		gen = genFromSeq(lv.maxSeq)
	case (class == ClassAnon && !page.SwapCache()) ||
		(page.UnderReclaim() && (page.Dirty() || page.Writeback())) ||
		(!page.Referenced() && page.Workingset()):
		gen = genFromSeq(lv.minSeq[class] + 1)
	default:
		gen = genFromSeq(lv.minSeq[class])
	}

	page.assignGen(gen)
	lv.updateSize(page, -1, gen)
	if front {
		page.element = lv.lists[gen][class][zone].PushFront(page)
	} else {
		page.element = lv.lists[gen][class][zone].PushBack(page)
	}
	page.owner = lv

	stats.Store(StatsInserted{Class: class, Pages: page.NrPages()})
	return true
}

func (g *generational) Remove(lv *Lruvec, page *Page) bool {
	lv.lock()
	defer lv.unlock()

	gen := page.clearGen(lv.genIsActive)
	if gen < 0 {
		stats.Store(StatsFallback{Op: "remove"})
		return false
	}

	lv.updateSize(page, gen, -1)
	lv.lists[gen][page.Class()][page.Zone()].Remove(page.element)
	page.element = nil
	page.owner = nil

	stats.Store(StatsRemoved{Class: page.Class(), Pages: page.NrPages()})
	return true
}

func (g *generational) ActivateOnFault(lv *Lruvec, page *Page, vma *VMA) {
	if !lv.enabled[page.Class()] {
		return
	}
	if page.Active() || page.Unevictable() {
		return
	}
	if vma != nil && (vma.Dax || vma.Flags&(VMALocked|VMASpecial) != 0) {
		return
	}
	hotLog.Debugf("activating %s on fault", page)
	lv.activate(page)
}

func (g *generational) IncUsage(lv *Lruvec, page *Page) bool {
	page.incUsage()
	stats.Store(StatsUsage{})
	return true
}

func (g *generational) IsActive(lv *Lruvec, page *Page) bool {
	gen := page.Gen()
	if gen < 0 {
		return page.Active()
	}

	assert(!page.Unevictable(), "generational page is unevictable")
	assert(!page.Active(), "generational page has legacy active flag")

	if lv == nil {
		// The page resolves its own container; the caller must keep the
		// page from migrating meanwhile.
		lv = page.owner
	}
	assert(lv != nil, "generational page without a container")
	return lv.genIsActive(gen)
}
