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
	"fmt"
	"sort"
)

// Scheme is the set of page-level reclaim operations a container
// installs at construction time. The generational and the classic
// scheme satisfy the same contract, so callers never know which one is
// active: where the scheme declines an operation with false, the caller
// takes the documented classic fallback.
type Scheme interface {
	Insert(lv *Lruvec, page *Page, front bool) bool
	Remove(lv *Lruvec, page *Page) bool
	ActivateOnFault(lv *Lruvec, page *Page, vma *VMA)
	IncUsage(lv *Lruvec, page *Page) bool
	IsActive(lv *Lruvec, page *Page) bool
	Enabled(lv *Lruvec, class Class) bool
}

type SchemeCreator func() Scheme

// schemes is a map of scheme name -> scheme creator
var schemes map[string]SchemeCreator = make(map[string]SchemeCreator, 0)

func SchemeRegister(name string, creator SchemeCreator) {
	schemes[name] = creator
}

func Schemes() []string {
	keys := make([]string, 0, len(schemes))
	for key := range schemes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func NewScheme(name string) (Scheme, error) {
	if creator, ok := schemes[name]; ok {
		return creator(), nil
	}
	return nil, fmt.Errorf("invalid scheme name %q", name)
}
