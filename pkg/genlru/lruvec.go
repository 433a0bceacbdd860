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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Lruvec is the generation container of one (memory domain, node) pair.
// maxSeq and minSeq bound the sliding window of generations; pages of
// one class and zone tagged with the same generation live on the same
// list. The mutex serializes all structural changes: list edits, size
// counter edits and window advancement. The sequence bounds are read
// with atomic loads so that page-level operations can classify a
// generation as active without the lock.
type Lruvec struct {
	mutex  sync.Mutex
	locked int32

	name    string
	maxSeq  uint64
	minSeq  [NrClasses]uint64
	enabled [NrClasses]bool

	lists [MaxNrGens][NrClasses][MaxNrZones]*list.List
	sizes [MaxNrGens][NrClasses][MaxNrZones]int64

	classicLists [NrLRULists]*list.List
	lruSizes     [NrLRULists][MaxNrZones]int64

	node   *NodeStats
	memcg  MemcgAccounting
	scheme Scheme

	activate func(*Page)
}

// NewLruvec creates a container for the given node. memcg may be nil
// when cgroup accounting is not in use.
func NewLruvec(config *Config, node *NodeStats, memcg MemcgAccounting) (*Lruvec, error) {
	if config == nil {
		config = &Config{}
		if err := config.parse(lruvecDefaults); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid lruvec configuration")
	}
	if node == nil {
		return nil, errors.New("lruvec requires node statistics")
	}
	scheme, err := NewScheme(config.Scheme)
	if err != nil {
		return nil, errors.Wrapf(err, "creating scheme for lruvec %q", config.Name)
	}
	lv := &Lruvec{
		name:   config.Name,
		maxSeq: MinNrGens + 1,
		node:   node,
		memcg:  memcg,
		scheme: scheme,
	}
	lv.enabled[ClassAnon] = config.EnabledAnon
	lv.enabled[ClassFile] = config.EnabledFile
	for gen := 0; gen < MaxNrGens; gen++ {
		for class := Class(0); class < NrClasses; class++ {
			for zone := 0; zone < MaxNrZones; zone++ {
				lv.lists[gen][class][zone] = list.New()
			}
		}
	}
	for lru := LRUList(0); lru < NrLRULists; lru++ {
		lv.classicLists[lru] = list.New()
	}
	lv.activate = lv.defaultActivate
	return lv, nil
}

func (lv *Lruvec) Name() string {
	return lv.name
}

func (lv *Lruvec) lock() {
	lv.mutex.Lock()
	atomic.StoreInt32(&lv.locked, 1)
}

func (lv *Lruvec) unlock() {
	atomic.StoreInt32(&lv.locked, 0)
	lv.mutex.Unlock()
}

// assertLocked checks that the container mutex is held. The flag cannot
// tell which goroutine holds it, so a caller racing with another locker
// can slip past. Structural mutators reach this only through lock(), which
// keeps the check honest on the paths that matter.
func (lv *Lruvec) assertLocked() {
	assert(atomic.LoadInt32(&lv.locked) == 1, "lruvec %q lock not held", lv.name)
}

// genFromSeq maps a sequence number to its slot in the window.
func genFromSeq(seq uint64) int {
	return int(seq % MaxNrGens)
}

func (lv *Lruvec) maxSeqLoad() uint64 {
	return atomic.LoadUint64(&lv.maxSeq)
}

func (lv *Lruvec) minSeqLoad(class Class) uint64 {
	return atomic.LoadUint64(&lv.minSeq[class])
}

// genIsActive tells whether a generation slot belongs to the youngest or
// the second youngest generation. Safe to call without the lock.
func (lv *Lruvec) genIsActive(gen int) bool {
	maxSeq := lv.maxSeqLoad()

	assert(maxSeq != 0, "lruvec %q has zero max sequence", lv.name)
	assert(gen >= 0 && gen < MaxNrGens, "generation %d out of range", gen)

	return gen == genFromSeq(maxSeq) || gen == genFromSeq(maxSeq-1)
}

// SeqWindow returns the oldest and youngest sequence numbers of a class.
func (lv *Lruvec) SeqWindow(class Class) (minSeq, maxSeq uint64) {
	return lv.minSeqLoad(class), lv.maxSeqLoad()
}

// GenEnabled tells whether the generational scheme handles pages of the
// given class in this container.
func (lv *Lruvec) GenEnabled(class Class) bool {
	return lv.scheme.Enabled(lv, class)
}

// Insert puts the page on a generational list, classifying it into a
// generation by its expected reuse distance. Returns false without side
// effects when the page is unevictable or the generational scheme does
// not handle its class; the caller then falls back to the classic path.
func (lv *Lruvec) Insert(page *Page) bool {
	return lv.scheme.Insert(lv, page, true)
}

// InsertTail is Insert at the evicting end of the target list.
func (lv *Lruvec) InsertTail(page *Page) bool {
	return lv.scheme.Insert(lv, page, false)
}

// Remove takes the page off its generational list and re-derives the
// legacy active flag from generation recency. Returns false when the
// page carries no generation tag. Must run before the page changes
// container, is freed, or has its class or zone recomputed.
func (lv *Lruvec) Remove(page *Page) bool {
	return lv.scheme.Remove(lv, page)
}

// ActivateOnFault promotes a page that was just faulted back in, unless
// the mapping opts out.
func (lv *Lruvec) ActivateOnFault(page *Page, vma *VMA) {
	lv.scheme.ActivateOnFault(lv, page, vma)
}

// IncUsage records an access through a file descriptor. Under the
// classic scheme it degrades to reporting the legacy active flag.
func (lv *Lruvec) IncUsage(page *Page) bool {
	return lv.scheme.IncUsage(lv, page)
}

// IsActive reports whether the page counts as active, regardless of
// which scheme governs it.
func (lv *Lruvec) IsActive(page *Page) bool {
	return lv.scheme.IsActive(lv, page)
}

// SetActivateFunc installs the shared activation routine. The default
// one removes the page and reinserts it with the active flag set, which
// lands it in the youngest generation.
func (lv *Lruvec) SetActivateFunc(f func(*Page)) {
	lv.activate = f
}

func (lv *Lruvec) defaultActivate(page *Page) {
	if !lv.scheme.Remove(lv, page) {
		return
	}
	page.SetActive(true)
	ok := lv.scheme.Insert(lv, page, true)
	assert(ok, "reinserting an isolated page failed")
	stats.Store(StatsActivated{})
}

// AddToLRUList adds the page at the front of the list it belongs on,
// preferring the generational path and falling back to the classic one.
func (lv *Lruvec) AddToLRUList(page *Page) {
	lv.addToLRUList(page, true)
}

// AddToLRUListTail adds the page at the tail, where reclaim finds it
// first.
func (lv *Lruvec) AddToLRUListTail(page *Page) {
	lv.addToLRUList(page, false)
}

func (lv *Lruvec) addToLRUList(page *Page, front bool) {
	lru := page.LRU()
	page.setFlag(flagLRU, true)

	if lv.scheme.Insert(lv, page, front) {
		return
	}

	lv.lock()
	defer lv.unlock()
	lv.updateLRUSize(lru, page.Zone(), page.NrPages())
	if front {
		page.element = lv.classicLists[lru].PushFront(page)
	} else {
		page.element = lv.classicLists[lru].PushBack(page)
	}
	page.owner = lv
}

// DelFromLRUList removes the page from whichever list holds it. The LRU
// flag stays set until the page is released, see ClearLRUFlags.
func (lv *Lruvec) DelFromLRUList(page *Page) {
	if lv.scheme.Remove(lv, page) {
		return
	}

	lv.lock()
	defer lv.unlock()
	lru := page.LRU()
	lv.classicLists[lru].Remove(page.element)
	page.element = nil
	page.owner = nil
	lv.updateLRUSize(lru, page.Zone(), -page.NrPages())
}

// AdvanceMaxSeq opens a new youngest generation. It fails when any
// enabled class still holds the full window; the aging loop must retire
// the oldest generation of that class first. The generation dropping out
// of the active pair moves from the active to the inactive aggregates.
func (lv *Lruvec) AdvanceMaxSeq() bool {
	lv.lock()
	defer lv.unlock()

	maxSeq := lv.maxSeq
	for class := Class(0); class < NrClasses; class++ {
		if !lv.enabled[class] {
			continue
		}
		if maxSeq+1-lv.minSeq[class] >= MaxNrGens {
			hotLog.Debugf("lruvec %q: max_seq stuck at %d, class %s window full",
				lv.name, maxSeq, class)
			return false
		}
	}

	// The slot being opened lies outside every enabled class's window,
	// so it must have been drained already.
	newGen := genFromSeq(maxSeq + 1)
	for class := Class(0); class < NrClasses; class++ {
		for zone := 0; zone < MaxNrZones; zone++ {
			assert(lv.sizes[newGen][class][zone] == 0,
				"reopened generation slot %d not empty for class %s zone %d",
				newGen, class, zone)
		}
	}

	// The second youngest generation stays active; the one behind it
	// leaves the active pair.
	demoted := genFromSeq(maxSeq - 1)
	for class := Class(0); class < NrClasses; class++ {
		lru := lruBase(class)
		for zone := 0; zone < MaxNrZones; zone++ {
			delta := lv.sizes[demoted][class][zone]
			if delta == 0 {
				continue
			}
			lv.updateLRUSize(lru+1, zone, -delta)
			lv.updateLRUSize(lru, zone, delta)
		}
	}

	atomic.StoreUint64(&lv.maxSeq, maxSeq+1)
	return true
}

// AdvanceMinSeq retires the oldest generation of a class. It fails while
// that generation still holds pages, or when retiring it would shrink
// the window below the active pair.
func (lv *Lruvec) AdvanceMinSeq(class Class) bool {
	lv.lock()
	defer lv.unlock()

	minSeq := lv.minSeq[class]
	if minSeq+MinNrGens >= lv.maxSeq+1 {
		return false
	}
	gen := genFromSeq(minSeq)
	for zone := 0; zone < MaxNrZones; zone++ {
		if lv.sizes[gen][class][zone] != 0 {
			return false
		}
		assert(lv.lists[gen][class][zone].Len() == 0,
			"zero-sized generation %d class %s zone %d has list members",
			gen, class, zone)
	}

	atomic.StoreUint64(&lv.minSeq[class], minSeq+1)
	return true
}

// Snapshot is a consistent copy of the container's bookkeeping.
type Snapshot struct {
	Name     string
	MaxSeq   uint64
	MinSeq   [NrClasses]uint64
	Enabled  [NrClasses]bool
	Sizes    [MaxNrGens][NrClasses][MaxNrZones]int64
	ListLens [MaxNrGens][NrClasses][MaxNrZones]int
	LRUSizes [NrLRULists][MaxNrZones]int64
}

// Snapshot copies sizes, list lengths and window bounds under the lock.
func (lv *Lruvec) Snapshot() Snapshot {
	lv.lock()
	defer lv.unlock()

	s := Snapshot{
		Name:    lv.name,
		MaxSeq:  lv.maxSeq,
		MinSeq:  lv.minSeq,
		Enabled: lv.enabled,
		Sizes:   lv.sizes,
	}
	for gen := 0; gen < MaxNrGens; gen++ {
		for class := Class(0); class < NrClasses; class++ {
			for zone := 0; zone < MaxNrZones; zone++ {
				s.ListLens[gen][class][zone] = lv.lists[gen][class][zone].Len()
			}
		}
	}
	s.LRUSizes = lv.lruSizes
	return s
}

// Dump returns a human-readable summary for the inspection prompt.
func (lv *Lruvec) Dump() string {
	s := lv.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "lruvec %q max_seq=%d\n", s.Name, s.MaxSeq)
	for class := Class(0); class < NrClasses; class++ {
		fmt.Fprintf(&b, "  %s: enabled=%v min_seq=%d\n", class, s.Enabled[class], s.MinSeq[class])
		for gen := 0; gen < MaxNrGens; gen++ {
			total := int64(0)
			for zone := 0; zone < MaxNrZones; zone++ {
				total += s.Sizes[gen][class][zone]
			}
			if total != 0 {
				fmt.Fprintf(&b, "    gen %d: %d pages\n", gen, total)
			}
		}
	}
	for lru := LRUList(0); lru < NrLRULists; lru++ {
		total := int64(0)
		for zone := 0; zone < MaxNrZones; zone++ {
			total += s.LRUSizes[lru][zone]
		}
		if total != 0 {
			fmt.Fprintf(&b, "  %s: %d pages\n", lru, total)
		}
	}
	return b.String()
}
