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
	"sync/atomic"
)

// NodeStats aggregates classic LRU page counts over all containers of
// one node. Counters are atomic so that they can be read without taking
// any container lock.
type NodeStats struct {
	counters [NrLRULists][MaxNrZones]int64
}

func NewNodeStats() *NodeStats {
	return &NodeStats{}
}

// AddZoneCounter adds delta pages to the zone counter of the given list.
func (n *NodeStats) AddZoneCounter(zone int, lru LRUList, delta int64) {
	assert(zone >= 0 && zone < MaxNrZones, "zone %d out of range", zone)
	atomic.AddInt64(&n.counters[lru][zone], delta)
}

// ZoneCounter returns the current page count of the given list and zone.
func (n *NodeStats) ZoneCounter(zone int, lru LRUList) int64 {
	return atomic.LoadInt64(&n.counters[lru][zone])
}

// MemcgAccounting mirrors classic LRU size changes into the memory
// cgroup owning a container. A container without cgroup accounting
// leaves it nil.
type MemcgAccounting interface {
	UpdateLRUSize(lru LRUList, zone int, delta int64)
}

// updateLRUSize applies one classic-list delta to the container's own
// aggregates and mirrors it to the node and, when attached, the memcg.
func (lv *Lruvec) updateLRUSize(lru LRUList, zone int, delta int64) {
	lv.lruSizes[lru][zone] += delta
	lv.node.AddZoneCounter(zone, lru, delta)
	if lv.memcg != nil {
		lv.memcg.UpdateLRUSize(lru, zone, delta)
	}
}

// updateSize moves the page's size between the given generation buckets
// and keeps the legacy active/inactive aggregates in step. A generation
// of -1 stands for "not on a generational list", so insertion passes
// (-1, gen) and removal (gen, -1). Called exactly once per membership
// change, with the container lock held.
func (lv *Lruvec) updateSize(page *Page, oldGen, newGen int) {
	class := page.Class()
	zone := page.Zone()
	delta := page.NrPages()
	lru := lruBase(class)

	lv.assertLocked()
	assert(oldGen < MaxNrGens, "old generation %d out of range", oldGen)
	assert(newGen < MaxNrGens, "new generation %d out of range", newGen)
	assert(oldGen >= 0 || newGen >= 0, "size update without a generation")

	if oldGen >= 0 {
		lv.sizes[oldGen][class][zone] -= delta
	}
	if newGen >= 0 {
		lv.sizes[newGen][class][zone] += delta
	}

	if oldGen < 0 {
		if lv.genIsActive(newGen) {
			lru++
		}
		lv.updateLRUSize(lru, zone, delta)
		return
	}

	if newGen < 0 {
		if lv.genIsActive(oldGen) {
			lru++
		}
		lv.updateLRUSize(lru, zone, -delta)
		return
	}

	// Per-page generation moves only promote toward younger generations;
	// pages fall out of the active pair through window advancement, never
	// through a per-page move. The only legal legacy transition here is
	// inactive to active.
	if !lv.genIsActive(oldGen) && lv.genIsActive(newGen) {
		lv.updateLRUSize(lru, zone, -delta)
		lv.updateLRUSize(lru+1, zone, delta)
	}
	assert(!(lv.genIsActive(oldGen) && !lv.genIsActive(newGen)),
		"page demoted from active generation %d to inactive %d", oldGen, newGen)
}
