package library

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
)

// Analysis contains aggregate statistics for the current catalog.
type Analysis struct {
	TotalEntries   int                           `json:"total_entries"`
	TotalSizeBytes int64                         `json:"total_size_bytes"`
	TotalDuration  float64                       `json:"total_duration_seconds"`
	DegradedCount  int                           `json:"degraded_count"`
	FavoriteCount  int                           `json:"favorite_count"`
	Extensions     map[string]int                `json:"extensions"`
	QualityBuckets map[catalog.QualityBucket]int `json:"quality_buckets"`

	MeanDuration   float64 `json:"mean_duration_seconds"`
	MedianDuration float64 `json:"median_duration_seconds"`
	P90Duration    float64 `json:"p90_duration_seconds"`
	MeanSizeBytes  float64 `json:"mean_size_bytes"`
	MedianSize     float64 `json:"median_size_bytes"`

	Duration time.Duration `json:"duration"`
}

// Analyze computes aggregate statistics over a catalog snapshot. Degraded
// entries are counted but excluded from the duration statistics so failed
// extractions don't drag the averages to zero.
func Analyze(entries []*catalog.Entry) *Analysis {
	start := time.Now()

	analysis := &Analysis{
		TotalEntries:   len(entries),
		Extensions:     make(map[string]int),
		QualityBuckets: make(map[catalog.QualityBucket]int),
	}

	durations := make([]float64, 0, len(entries))
	sizes := make([]float64, 0, len(entries))
	for _, e := range entries {
		analysis.TotalSizeBytes += e.Meta.SizeBytes
		analysis.TotalDuration += e.Meta.DurationSeconds
		analysis.Extensions[e.Extension]++
		analysis.QualityBuckets[e.Quality()]++
		if e.IsFavorite {
			analysis.FavoriteCount++
		}
		if e.Degraded() {
			analysis.DegradedCount++
			continue
		}
		durations = append(durations, e.Meta.DurationSeconds)
		sizes = append(sizes, float64(e.Meta.SizeBytes))
	}

	if len(durations) > 0 {
		sort.Float64s(durations)
		analysis.MeanDuration = stat.Mean(durations, nil)
		analysis.MedianDuration = stat.Quantile(0.5, stat.Empirical, durations, nil)
		analysis.P90Duration = stat.Quantile(0.9, stat.Empirical, durations, nil)
	}
	if len(sizes) > 0 {
		sort.Float64s(sizes)
		analysis.MeanSizeBytes = stat.Mean(sizes, nil)
		analysis.MedianSize = stat.Quantile(0.5, stat.Empirical, sizes, nil)
	}

	analysis.Duration = time.Since(start)
	return analysis
}

// Analyze computes aggregate statistics for the current catalog snapshot.
func (l *Library) Analyze() *Analysis {
	return Analyze(l.catalog.Entries())
}
