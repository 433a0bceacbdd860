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
	"testing"

	"github.com/google/go-cmp/cmp"
)

type memcgRecorder struct {
	deltas map[LRUList]int64
}

func newMemcgRecorder() *memcgRecorder {
	return &memcgRecorder{deltas: make(map[LRUList]int64)}
}

func (m *memcgRecorder) UpdateLRUSize(lru LRUList, zone int, delta int64) {
	m.deltas[lru] += delta
}

func newTestLruvec(t *testing.T, scheme string) (*Lruvec, *NodeStats, *memcgRecorder) {
	t.Helper()
	node := NewNodeStats()
	memcg := newMemcgRecorder()
	config := &Config{
		Name:        "test",
		Scheme:      scheme,
		EnabledAnon: scheme == "generational",
		EnabledFile: scheme == "generational",
	}
	lv, err := NewLruvec(config, node, memcg)
	if err != nil {
		t.Fatalf("creating lruvec: %v", err)
	}
	return lv, node, memcg
}

// checkLedger verifies that for every generation in the window the size
// counters match the scaled page counts of the corresponding lists. All
// test pages here are order 0, so scaled size equals list length.
func checkLedger(t *testing.T, lv *Lruvec) {
	t.Helper()
	s := lv.Snapshot()
	for gen := 0; gen < MaxNrGens; gen++ {
		for class := Class(0); class < NrClasses; class++ {
			for zone := 0; zone < MaxNrZones; zone++ {
				size := s.Sizes[gen][class][zone]
				members := int64(s.ListLens[gen][class][zone])
				if size != members {
					t.Errorf("gen %d class %s zone %d: size %d, %d list members",
						gen, class, zone, size, members)
				}
			}
		}
	}
}

func TestInsertTargetGeneration(t *testing.T) {
	tcases := []struct {
		name           string
		page           func() *Page
		expectedGenSeq func(lv *Lruvec, class Class) uint64
		expectedActive bool
	}{
		{
			name: "active page goes to the youngest generation",
			page: func() *Page {
				p := NewPage(ClassFile, 1, 0)
				p.SetSwapCache(false)
				p.SetActive(true)
				return p
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.maxSeqLoad() },
			expectedActive: true,
		}, {
			name: "anon page outside swap cache is not immediately evictable",
			page: func() *Page {
				return NewPage(ClassAnon, 0, 0)
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.minSeqLoad(class) + 1 },
			expectedActive: false,
		}, {
			name: "anon page in swap cache is immediately evictable",
			page: func() *Page {
				p := NewPage(ClassAnon, 0, 0)
				p.SetSwapCache(true)
				return p
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.minSeqLoad(class) },
			expectedActive: false,
		}, {
			name: "dirty page rotated by reclaim waits one generation",
			page: func() *Page {
				p := NewPage(ClassFile, 2, 0)
				p.SetUnderReclaim(true)
				p.SetDirty(true)
				return p
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.minSeqLoad(class) + 1 },
			expectedActive: false,
		}, {
			name: "page under writeback waits one generation",
			page: func() *Page {
				p := NewPage(ClassFile, 0, 0)
				p.SetUnderReclaim(true)
				p.SetWriteback(true)
				return p
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.minSeqLoad(class) + 1 },
			expectedActive: false,
		}, {
			name: "unreferenced page with workingset history waits one generation",
			page: func() *Page {
				p := NewPage(ClassFile, 0, 0)
				p.SetWorkingset(true)
				return p
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.minSeqLoad(class) + 1 },
			expectedActive: false,
		}, {
			name: "plain file page is immediately evictable",
			page: func() *Page {
				return NewPage(ClassFile, 3, 0)
			},
			expectedGenSeq: func(lv *Lruvec, class Class) uint64 { return lv.minSeqLoad(class) },
			expectedActive: false,
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			lv, node, _ := newTestLruvec(t, "generational")
			p := tc.page()
			class, zone := p.Class(), p.Zone()

			if !lv.Insert(p) {
				t.Fatalf("insert declined")
			}

			expectedGen := genFromSeq(tc.expectedGenSeq(lv, class))
			if gen := p.Gen(); gen != expectedGen {
				t.Errorf("page landed in generation %d, expected %d", gen, expectedGen)
			}
			if active := lv.IsActive(p); active != tc.expectedActive {
				t.Errorf("IsActive() = %v, expected %v", active, tc.expectedActive)
			}
			s := lv.Snapshot()
			if size := s.Sizes[expectedGen][class][zone]; size != p.NrPages() {
				t.Errorf("generation size %d, expected %d", size, p.NrPages())
			}
			lru := lruBase(class)
			if tc.expectedActive {
				lru++
			}
			if count := node.ZoneCounter(zone, lru); count != p.NrPages() {
				t.Errorf("node counter for %s zone %d is %d, expected %d",
					lru, zone, count, p.NrPages())
			}
			checkLedger(t, lv)
		})
	}
}

func TestInsertDeclines(t *testing.T) {
	tcases := []struct {
		name string
		page func() *Page
	}{
		{
			name: "unevictable page",
			page: func() *Page {
				p := NewPage(ClassFile, 0, 0)
				p.SetUnevictable(true)
				return p
			},
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			lv, _, _ := newTestLruvec(t, "generational")
			before := lv.Snapshot()
			if lv.Insert(tc.page()) {
				t.Fatalf("insert accepted, expected decline")
			}
			if diff := cmp.Diff(before, lv.Snapshot()); diff != "" {
				t.Errorf("declined insert changed counters:\n%s", diff)
			}
		})
	}
}

func TestInsertDisabledClass(t *testing.T) {
	node := NewNodeStats()
	config := &Config{Name: "test", Scheme: "generational", EnabledAnon: true, EnabledFile: false}
	lv, err := NewLruvec(config, node, nil)
	if err != nil {
		t.Fatalf("creating lruvec: %v", err)
	}
	before := lv.Snapshot()
	p := NewPage(ClassFile, 0, 0)
	if lv.Insert(p) {
		t.Fatalf("insert accepted for a disabled class")
	}
	if p.Gen() != -1 {
		t.Errorf("declined insert tagged the page with generation %d", p.Gen())
	}
	if diff := cmp.Diff(before, lv.Snapshot()); diff != "" {
		t.Errorf("declined insert changed counters:\n%s", diff)
	}
	if !lv.GenEnabled(ClassAnon) || lv.GenEnabled(ClassFile) {
		t.Errorf("enablement: anon=%v file=%v, expected anon only",
			lv.GenEnabled(ClassAnon), lv.GenEnabled(ClassFile))
	}
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	tcases := []struct {
		name string
		page func() *Page
	}{
		{
			name: "inactive file page",
			page: func() *Page { return NewPage(ClassFile, 1, 0) },
		}, {
			name: "active file page",
			page: func() *Page {
				p := NewPage(ClassFile, 1, 0)
				p.SetActive(true)
				return p
			},
		}, {
			name: "compound anon page",
			page: func() *Page { return NewPage(ClassAnon, 0, 2) },
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			lv, node, memcg := newTestLruvec(t, "generational")
			before := lv.Snapshot()
			var nodeBefore [NrLRULists][MaxNrZones]int64
			for lru := LRUList(0); lru < NrLRULists; lru++ {
				for zone := 0; zone < MaxNrZones; zone++ {
					nodeBefore[lru][zone] = node.ZoneCounter(zone, lru)
				}
			}

			p := tc.page()
			if !lv.Insert(p) {
				t.Fatalf("insert declined")
			}
			if !lv.Remove(p) {
				t.Fatalf("remove declined")
			}

			if gen := p.Gen(); gen != -1 {
				t.Errorf("page still tagged with generation %d after removal", gen)
			}
			if diff := cmp.Diff(before, lv.Snapshot()); diff != "" {
				t.Errorf("round trip did not restore counters:\n%s", diff)
			}
			for lru := LRUList(0); lru < NrLRULists; lru++ {
				for zone := 0; zone < MaxNrZones; zone++ {
					if count := node.ZoneCounter(zone, lru); count != nodeBefore[lru][zone] {
						t.Errorf("node counter %s zone %d: %d, expected %d",
							lru, zone, count, nodeBefore[lru][zone])
					}
				}
			}
			for lru, delta := range memcg.deltas {
				if delta != 0 {
					t.Errorf("memcg accounting for %s off by %d after round trip", lru, delta)
				}
			}
		})
	}
}

func TestRemoveRestoresActiveFlag(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")

	active := NewPage(ClassFile, 0, 0)
	active.SetActive(true)
	if !lv.Insert(active) {
		t.Fatalf("insert declined")
	}
	if active.Active() {
		t.Errorf("legacy active flag set while on a generational list")
	}
	if !lv.Remove(active) {
		t.Fatalf("remove declined")
	}
	if !active.Active() {
		t.Errorf("active flag not restored for a page from the active pair")
	}

	inactive := NewPage(ClassFile, 0, 0)
	inactive.SetSwapCache(true)
	if !lv.Insert(inactive) {
		t.Fatalf("insert declined")
	}
	if !lv.Remove(inactive) {
		t.Fatalf("remove declined")
	}
	if inactive.Active() {
		t.Errorf("active flag restored for a page from the oldest generation")
	}
}

func TestRemoveWithoutGeneration(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")
	if lv.Remove(NewPage(ClassFile, 0, 0)) {
		t.Errorf("remove accepted a page without a generation tag")
	}
}

func TestCompoundPageScaling(t *testing.T) {
	lv, node, _ := newTestLruvec(t, "generational")
	p := NewPage(ClassFile, 2, 3) // 8 base pages
	if !lv.Insert(p) {
		t.Fatalf("insert declined")
	}
	s := lv.Snapshot()
	gen := p.Gen()
	if size := s.Sizes[gen][ClassFile][2]; size != 8 {
		t.Errorf("generation size %d, expected 8", size)
	}
	if members := s.ListLens[gen][ClassFile][2]; members != 1 {
		t.Errorf("list has %d members, expected 1", members)
	}
	if count := node.ZoneCounter(2, LRUInactiveFile); count != 8 {
		t.Errorf("node counter %d, expected 8", count)
	}
}

func TestInsertTailOrder(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")
	first := NewPage(ClassFile, 0, 0)
	second := NewPage(ClassFile, 0, 0)
	if !lv.Insert(first) || !lv.InsertTail(second) {
		t.Fatalf("insert declined")
	}
	gen := first.Gen()
	l := lv.lists[gen][ClassFile][0]
	if l.Back().Value.(*Page) != second {
		t.Errorf("tail insertion did not land at the evicting end")
	}
	if l.Front().Value.(*Page) != first {
		t.Errorf("front insertion did not land at the protected end")
	}
}

func TestAdvanceWindow(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")

	// The window starts full: the oldest generation must retire first.
	if lv.AdvanceMaxSeq() {
		t.Fatalf("max_seq advanced past a full window")
	}
	if !lv.AdvanceMinSeq(ClassAnon) || !lv.AdvanceMinSeq(ClassFile) {
		t.Fatalf("empty oldest generation did not retire")
	}
	if !lv.AdvanceMaxSeq() {
		t.Fatalf("max_seq stuck with room in the window")
	}
	if maxSeq := lv.maxSeqLoad(); maxSeq != MinNrGens+2 {
		t.Errorf("max_seq is %d, expected %d", maxSeq, MinNrGens+2)
	}
}

func TestAdvanceMinSeqBlockers(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")

	// A populated oldest generation blocks retirement.
	p := NewPage(ClassFile, 0, 0)
	p.SetSwapCache(false)
	if !lv.Insert(p) {
		t.Fatalf("insert declined")
	}
	if gen := p.Gen(); gen != genFromSeq(lv.minSeqLoad(ClassFile)) {
		t.Fatalf("page landed in generation %d, expected the oldest", gen)
	}
	if lv.AdvanceMinSeq(ClassFile) {
		t.Errorf("min_seq advanced past a populated generation")
	}
	if !lv.AdvanceMinSeq(ClassAnon) {
		t.Errorf("empty anon generation did not retire")
	}

	// The window never shrinks below the active pair.
	if !lv.AdvanceMinSeq(ClassAnon) {
		t.Fatalf("anon min_seq stuck at %d", lv.minSeqLoad(ClassAnon))
	}
	if lv.AdvanceMinSeq(ClassAnon) {
		t.Errorf("min_seq advanced into the active pair")
	}
}

func TestAdvanceMaxSeqDemotesAggregates(t *testing.T) {
	lv, node, _ := newTestLruvec(t, "generational")
	p := NewPage(ClassFile, 0, 0)
	p.SetActive(true)
	if !lv.Insert(p) {
		t.Fatalf("insert declined")
	}
	if !lv.IsActive(p) {
		t.Fatalf("page in the youngest generation not reported active")
	}
	if count := node.ZoneCounter(0, LRUActiveFile); count != 1 {
		t.Fatalf("active file counter %d, expected 1", count)
	}

	// Advance the window twice so the page's generation leaves the
	// active pair.
	for i := 0; i < 2; i++ {
		if !lv.AdvanceMinSeq(ClassAnon) || !lv.AdvanceMinSeq(ClassFile) {
			t.Fatalf("round %d: min_seq stuck", i)
		}
		if !lv.AdvanceMaxSeq() {
			t.Fatalf("round %d: max_seq stuck", i)
		}
	}

	if lv.IsActive(p) {
		t.Errorf("page still reported active after leaving the active pair")
	}
	if count := node.ZoneCounter(0, LRUActiveFile); count != 0 {
		t.Errorf("active file counter %d after demotion, expected 0", count)
	}
	if count := node.ZoneCounter(0, LRUInactiveFile); count != 1 {
		t.Errorf("inactive file counter %d after demotion, expected 1", count)
	}
	checkLedger(t, lv)

	// Removal after demotion must not restore the active flag.
	if !lv.Remove(p) {
		t.Fatalf("remove declined")
	}
	if p.Active() {
		t.Errorf("active flag restored for a demoted page")
	}
}

func TestWrapperGenerationalPath(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")
	p := NewPage(ClassFile, 0, 0)
	lv.AddToLRUList(p)
	if !p.OnLRU() {
		t.Errorf("page not marked on LRU")
	}
	if p.Gen() == -1 {
		t.Errorf("wrapper did not route the page to a generational list")
	}
	for lru := LRUList(0); lru < NrLRULists; lru++ {
		if lv.classicLists[lru].Len() != 0 {
			t.Errorf("classic list %s populated under the generational scheme", lru)
		}
	}
	lv.DelFromLRUList(p)
	if p.Gen() != -1 {
		t.Errorf("wrapper did not remove the generation tag")
	}
	checkLedger(t, lv)
}

func TestIsActiveWithoutContainerArgument(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")
	p := NewPage(ClassFile, 0, 0)
	p.SetActive(true)
	if !lv.Insert(p) {
		t.Fatalf("insert declined")
	}
	scheme, err := NewScheme("generational")
	if err != nil {
		t.Fatalf("creating scheme: %v", err)
	}
	if !scheme.IsActive(nil, p) {
		t.Errorf("page did not resolve its owning container")
	}
}

func TestLockAssertion(t *testing.T) {
	lv, _, _ := newTestLruvec(t, "generational")

	lv.lock()
	lv.assertLocked()
	lv.unlock()

	defer func() {
		if recover() == nil {
			t.Errorf("lock assertion passed without the lock held")
		}
	}()
	lv.assertLocked()
}
