// Package metricsexport exposes CacheGrid's runtime statistics as
// Prometheus metrics via a pull-based Collector.
package metricsexport

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/watt-toolkit/cachegrid/internal/cache"
)

const namespace = "cachegrid"

// StatsSource is anything that can report a cache.Stats snapshot or an
// error; *engine.Engine satisfies it through its Stats() passthrough.
// *cache.Store and *cache.ShardedStore do not, since cache.Core's Stats()
// returns no error.
type StatsSource interface {
	Stats() (cache.Stats, error)
}

// Collector implements prometheus.Collector, pulling a fresh cache.Stats
// snapshot on every scrape rather than maintaining its own counters —
// the storage core is already the source of truth for these numbers.
type Collector struct {
	source StatsSource

	accesses  *prometheus.Desc
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	evictions *prometheus.Desc
	expired   *prometheus.Desc
	sets      *prometheus.Desc
	deletes   *prometheus.Desc
	entries   *prometheus.Desc
	bytes     *prometheus.Desc
	hitRatio  *prometheus.Desc
}

// NewCollector builds a Collector reading from source.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source:    source,
		accesses:  prometheus.NewDesc(namespace+"_accesses_total", "Total cache accesses", nil, nil),
		hits:      prometheus.NewDesc(namespace+"_hits_total", "Total cache hits", nil, nil),
		misses:    prometheus.NewDesc(namespace+"_misses_total", "Total cache misses", nil, nil),
		evictions: prometheus.NewDesc(namespace+"_evictions_total", "Total entries evicted by policy", nil, nil),
		expired:   prometheus.NewDesc(namespace+"_expired_total", "Total entries removed by TTL expiry", nil, nil),
		sets:      prometheus.NewDesc(namespace+"_sets_total", "Total successful Set calls", nil, nil),
		deletes:   prometheus.NewDesc(namespace+"_deletes_total", "Total successful Delete calls", nil, nil),
		entries:   prometheus.NewDesc(namespace+"_entries", "Current number of entries stored", nil, nil),
		bytes:     prometheus.NewDesc(namespace+"_bytes", "Current estimated bytes stored", nil, nil),
		hitRatio:  prometheus.NewDesc(namespace+"_hit_ratio", "Current hit ratio (hits / accesses)", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.accesses
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expired
	ch <- c.sets
	ch <- c.deletes
	ch <- c.entries
	ch <- c.bytes
	ch <- c.hitRatio
}

// Collect implements prometheus.Collector. A failed Stats() call (e.g.
// the engine is stopped) is reported as zero values rather than a
// scrape error, since /metrics should stay scrapeable regardless of
// engine lifecycle state.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.source.Stats()
	if err != nil {
		stats = cache.Stats{}
	}

	ch <- prometheus.MustNewConstMetric(c.accesses, prometheus.CounterValue, float64(stats.Accesses))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expired, prometheus.CounterValue, float64(stats.Expired))
	ch <- prometheus.MustNewConstMetric(c.sets, prometheus.CounterValue, float64(stats.Sets))
	ch <- prometheus.MustNewConstMetric(c.deletes, prometheus.CounterValue, float64(stats.Deletes))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.EntryCount))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(stats.TotalBytes))
	ch <- prometheus.MustNewConstMetric(c.hitRatio, prometheus.GaugeValue, stats.HitRatio)
}

// Register creates a fresh prometheus.Registry containing this
// Collector plus the standard process/Go runtime collectors, and
// returns it for mounting behind promhttp.HandlerFor.
func Register(source StatsSource) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(source))
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGoCollector())
	return reg
}
