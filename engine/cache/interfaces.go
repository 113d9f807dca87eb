package cache

import (
	"github.com/flowlens/flowlens/engine/core"
)

// DefaultCapacity bounds the LRU cache when the caller does not pick one
const DefaultCapacity = 128

// Cache memoizes full analysis results keyed by profile and content.
// A hit returns the same result instance that was stored; entries live
// until evicted or cleared.
type Cache interface {
	Get(profileID, content string) (*core.AnalysisResult, bool)
	Put(profileID, content string, result *core.AnalysisResult)
	Clear()
	Len() int
	Stats() Stats
}

// Stats holds cache performance counters
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Entries  int   `json:"entries"`
	Capacity int   `json:"capacity"`
}

// HitRate returns the cache hit rate in [0.0, 1.0]
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total)
}
