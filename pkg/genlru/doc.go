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

/*

	Package genlru implements the page-level operations of a
	multigenerational LRU: generation and usage-tier tagging inside a
	page's state word, per-generation size accounting, insertion and
	removal policy, and fault-time activation.

	Component types

	1. The state word codec (flags.go, page.go) packs a page's
	generation tag, usage counter and boolean flags into one word
	mutated only with compare-and-swap. All codec operations are
	lock-free and never block.

	2. The container (lruvec.go) holds the sliding window of
	generations of one memory domain and node: max_seq, per-class
	min_seq, and a list plus a size counter per (generation, class,
	zone). Its lock serializes structural changes; the size ledger
	(sizes.go) mirrors every change into the legacy active/inactive
	aggregates, the node counters and an optional memcg hook.

	3. Schemes (scheme.go, generational.go, classic.go) are the
	interchangeable implementations of insert, remove, activation and
	usage accounting. A container built with the classic scheme is
	indistinguishable from one where the generational feature does not
	exist: insert and remove decline every page and membership falls
	back to the two-list bookkeeping.

	Insertion policy

	Pages are classified by expected reuse distance. A legacy-active
	page goes to the youngest generation. A page that cannot be
	evicted right away (an anonymous page outside swap cache, a dirty
	page waiting on writeback, an unreferenced page with workingset
	history) goes to the second oldest. Everything else goes to the
	oldest, where reclaim finds it first.

	Aging

	The aging loop itself lives outside this package. AdvanceMaxSeq
	and AdvanceMinSeq are the only window mutation points it may call;
	both enforce that the window never wraps past unseen slots and
	never shrinks below the active pair.
*/

package genlru
