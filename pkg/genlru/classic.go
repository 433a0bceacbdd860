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

// The classic scheme: a container built with it behaves exactly as if
// the generational feature never existed. Insert and Remove decline
// every page, which routes all membership through the two-list
// bookkeeping of AddToLRUList and DelFromLRUList.

type classic struct{}

func init() {
	SchemeRegister("classic", NewClassicScheme)
}

func NewClassicScheme() Scheme {
	return &classic{}
}

func (c *classic) Enabled(lv *Lruvec, class Class) bool {
	return false
}

func (c *classic) Insert(lv *Lruvec, page *Page, front bool) bool {
	stats.Store(StatsFallback{Op: "insert"})
	return false
}

func (c *classic) Remove(lv *Lruvec, page *Page) bool {
	stats.Store(StatsFallback{Op: "remove"})
	return false
}

func (c *classic) ActivateOnFault(lv *Lruvec, page *Page, vma *VMA) {
}

func (c *classic) IncUsage(lv *Lruvec, page *Page) bool {
	return page.Active()
}

func (c *classic) IsActive(lv *Lruvec, page *Page) bool {
	return page.Active()
}
