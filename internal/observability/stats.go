package observability

import (
	"sync"
	"time"
)

// StatsSnapshot is the JSON body of GET /stats.
type StatsSnapshot struct {
	PagesFetched        uint64             `json:"pages_fetched"`
	PagesByComponent    map[string]uint64  `json:"pages_by_component"`
	RecipesImported     uint64             `json:"recipes_imported"`
	RecipesBySource     map[string]uint64  `json:"recipes_by_source"`
	VideosExtracted     uint64             `json:"videos_extracted"`
	VideosByPlatform    map[string]uint64  `json:"videos_by_platform"`
	ErrorsTotal         uint64             `json:"errors_total"`
	ErrorsByType        map[string]uint64  `json:"errors_by_type"`
	ErrorsByComponent   map[string]uint64  `json:"errors_by_component"`
	ImportSecondsAvg    float64            `json:"import_seconds_avg"`
	ImportSecondsByKind map[string]float64 `json:"import_seconds_by_kind"`
}

// tally is a running total broken down by label.
type tally struct {
	total   uint64
	byLabel map[string]uint64
}

func (t *tally) add(label string) {
	if label == "" {
		label = "unknown"
	}
	if t.byLabel == nil {
		t.byLabel = map[string]uint64{}
	}
	t.total++
	t.byLabel[label]++
}

func (t *tally) labels() map[string]uint64 {
	out := make(map[string]uint64, len(t.byLabel))
	for k, v := range t.byLabel {
		out[k] = v
	}
	return out
}

type timing struct {
	n   uint64
	sum time.Duration
}

func (t timing) avgSeconds() float64 {
	if t.n == 0 {
		return 0
	}
	return t.sum.Seconds() / float64(t.n)
}

// Stats counts pipeline activity since process start. The zero value is
// ready to use; the package-level functions share one instance.
type Stats struct {
	mu             sync.Mutex
	pages          tally
	recipes        tally
	videos         tally
	errorKinds     tally
	errorSources   tally
	imports        timing
	importsPerKind map[string]timing
}

var process = &Stats{}

func (s *Stats) PageFetched(component string) {
	s.mu.Lock()
	s.pages.add(component)
	s.mu.Unlock()
}

// RecipeImported counts a persisted recipe under its site or platform.
func (s *Stats) RecipeImported(source string) {
	s.mu.Lock()
	s.recipes.add(source)
	s.mu.Unlock()
}

func (s *Stats) VideoExtracted(platform string) {
	s.mu.Lock()
	s.videos.add(platform)
	s.mu.Unlock()
}

// ImportTook records how long one import took; kind is "site" or "video".
// Non-positive durations are ignored.
func (s *Stats) ImportTook(kind string, d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.importsPerKind == nil {
		s.importsPerKind = map[string]timing{}
	}
	s.imports.n++
	s.imports.sum += d
	k := s.importsPerKind[kind]
	k.n++
	k.sum += d
	s.importsPerKind[kind] = k
}

func (s *Stats) Error(kind, component string) {
	s.mu.Lock()
	s.errorKinds.add(kind)
	s.errorSources.add(component)
	s.mu.Unlock()
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	perKind := make(map[string]float64, len(s.importsPerKind))
	for k, t := range s.importsPerKind {
		perKind[k] = t.avgSeconds()
	}
	return StatsSnapshot{
		PagesFetched:        s.pages.total,
		PagesByComponent:    s.pages.labels(),
		RecipesImported:     s.recipes.total,
		RecipesBySource:     s.recipes.labels(),
		VideosExtracted:     s.videos.total,
		VideosByPlatform:    s.videos.labels(),
		ErrorsTotal:         s.errorKinds.total,
		ErrorsByType:        s.errorKinds.labels(),
		ErrorsByComponent:   s.errorSources.labels(),
		ImportSecondsAvg:    s.imports.avgSeconds(),
		ImportSecondsByKind: perKind,
	}
}

func IncPagesFetched(component string) { process.PageFetched(component) }

func IncRecipeImported(source string) { process.RecipeImported(source) }

func IncVideoExtracted(platform string) { process.VideoExtracted(platform) }

func ObserveImport(kind string, d time.Duration) { process.ImportTook(kind, d) }

func IncError(errType, component string) { process.Error(errType, component) }

// Snapshot copies the process-wide counters.
func Snapshot() StatsSnapshot { return process.Snapshot() }
