package genlru

import (
	"fmt"
	"strings"
	"sync"
)

type GlobalStats struct {
	mutex         sync.Mutex
	inserted      [NrClasses]uint64
	insertedPages [NrClasses]uint64
	removed       [NrClasses]uint64
	removedPages  [NrClasses]uint64
	activated     uint64
	usageIncs     uint64
	fallbacks     map[string]uint64
}

type StatsInserted struct {
	Class Class
	Pages int64
}

type StatsRemoved struct {
	Class Class
	Pages int64
}

type StatsActivated struct{}

type StatsUsage struct{}

type StatsFallback struct {
	Op string
}

var stats *GlobalStats = newStats()

func newStats() *GlobalStats {
	return &GlobalStats{
		fallbacks: make(map[string]uint64),
	}
}

func Stats() *GlobalStats {
	return stats
}

func (s *GlobalStats) Store(entry interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	switch v := entry.(type) {
	case StatsInserted:
		s.inserted[v.Class] += 1
		s.insertedPages[v.Class] += uint64(v.Pages)
	case StatsRemoved:
		s.removed[v.Class] += 1
		s.removedPages[v.Class] += uint64(v.Pages)
	case StatsActivated:
		s.activated += 1
	case StatsUsage:
		s.usageIncs += 1
	case StatsFallback:
		s.fallbacks[v.Op] += 1
	}
}

// Fallbacks returns how many times an operation has been declined and
// routed to the two-list bookkeeping.
func (s *GlobalStats) Fallbacks(op string) uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.fallbacks[op]
}

func (s *GlobalStats) Dump() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	lines := []string{}
	for class := Class(0); class < NrClasses; class++ {
		lines = append(lines, fmt.Sprintf("%s: inserted %d (%d pages), removed %d (%d pages)",
			class, s.inserted[class], s.insertedPages[class],
			s.removed[class], s.removedPages[class]))
	}
	lines = append(lines, fmt.Sprintf("activated %d, usage increments %d",
		s.activated, s.usageIncs))
	for op, count := range s.fallbacks {
		lines = append(lines, fmt.Sprintf("classic fallbacks on %s: %d", op, count))
	}
	return strings.Join(lines, "\n")
}
