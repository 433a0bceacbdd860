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
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports the bookkeeping of a set of containers as
// prometheus gauges. Collection works on snapshots, so a scrape never
// interleaves with a partially applied membership change.
type Collector struct {
	lruvecs []*Lruvec

	genPages *prometheus.Desc
	lruPages *prometheus.Desc
	seq      *prometheus.Desc
}

func NewCollector(lruvecs ...*Lruvec) *Collector {
	return &Collector{
		lruvecs: lruvecs,
		genPages: prometheus.NewDesc(
			"genlru_generation_pages",
			"Pages per generation, class and zone.",
			[]string{"lruvec", "gen", "class", "zone"}, nil),
		lruPages: prometheus.NewDesc(
			"genlru_lru_pages",
			"Pages per classic LRU list and zone.",
			[]string{"lruvec", "lru", "zone"}, nil),
		seq: prometheus.NewDesc(
			"genlru_seq",
			"Generation window bounds per class.",
			[]string{"lruvec", "class", "bound"}, nil),
	}
}

// RegisterCollector registers the collector for metrics collection.
func RegisterCollector(reg prometheus.Registerer, c *Collector) error {
	if err := reg.Register(c); err != nil {
		return metricsError("registering generation collector: %v", err)
	}
	log.Infof("registered generation size collector for %d lruvecs", len(c.lruvecs))
	return nil
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.genPages
	ch <- c.lruPages
	ch <- c.seq
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, lv := range c.lruvecs {
		s := lv.Snapshot()
		for class := Class(0); class < NrClasses; class++ {
			ch <- prometheus.MustNewConstMetric(c.seq, prometheus.CounterValue,
				float64(s.MaxSeq), s.Name, class.String(), "max")
			ch <- prometheus.MustNewConstMetric(c.seq, prometheus.CounterValue,
				float64(s.MinSeq[class]), s.Name, class.String(), "min")
			for gen := 0; gen < MaxNrGens; gen++ {
				for zone := 0; zone < MaxNrZones; zone++ {
					if s.Sizes[gen][class][zone] == 0 {
						continue
					}
					ch <- prometheus.MustNewConstMetric(c.genPages, prometheus.GaugeValue,
						float64(s.Sizes[gen][class][zone]),
						s.Name, strconv.Itoa(gen), class.String(), strconv.Itoa(zone))
				}
			}
		}
		for lru := LRUList(0); lru < NrLRULists; lru++ {
			for zone := 0; zone < MaxNrZones; zone++ {
				if s.LRUSizes[lru][zone] == 0 {
					continue
				}
				ch <- prometheus.MustNewConstMetric(c.lruPages, prometheus.GaugeValue,
					float64(s.LRUSizes[lru][zone]),
					s.Name, lru.String(), strconv.Itoa(zone))
			}
		}
	}
}

func metricsError(format string, args ...interface{}) error {
	return fmt.Errorf("metrics: "+format, args...)
}
