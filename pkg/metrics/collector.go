// Package metrics exports arena statistics to Prometheus.
//
// The collector calls Info on every scrape, so the numbers are always current
// and no background goroutine is needed:
//
//	a := arena.NewSync(region, nil)
//	prometheus.MustRegister(metrics.NewCollector("frames", a))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/arenakit/arena"
)

const namespace = "arenakit"

// StatsSource is anything that can report arena statistics. Both *arena.Arena
// and *arena.SyncArena satisfy it; only the latter may be scraped while other
// goroutines use the arena.
type StatsSource interface {
	Info() (arena.Stats, error)
}

// Collector is a prometheus.Collector over one arena.
type Collector struct {
	src StatsSource

	total         *prometheus.Desc
	used          *prometheus.Desc
	allocated     *prometheus.Desc
	fragmentation *prometheus.Desc
	blocks        *prometheus.Desc
	healthy       *prometheus.Desc
}

// NewCollector returns a collector for src. name becomes the value of the
// "arena" label, so several arenas can share one registry.
func NewCollector(name string, src StatsSource) *Collector {
	labels := prometheus.Labels{"arena": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "arena", metric), help, nil, labels)
	}
	return &Collector{
		src:           src,
		total:         desc("total_bytes", "Bytes under management"),
		used:          desc("used_bytes", "Offset of the end of the last live block"),
		allocated:     desc("allocated_bytes", "Header and payload bytes of live blocks"),
		fragmentation: desc("fragmentation_bytes", "Free bytes between live blocks"),
		blocks:        desc("allocated_blocks", "Number of live blocks"),
		healthy:       desc("healthy", "1 if the block list verified on the last scrape, 0 if corruption was detected"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.used
	ch <- c.allocated
	ch <- c.fragmentation
	ch <- c.blocks
	ch <- c.healthy
}

// Collect implements prometheus.Collector. A corrupt arena still reports its
// total size, with every other gauge at zero and healthy set to 0.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st, err := c.src.Info()
	healthy := 1.0
	if err != nil {
		healthy = 0
	}
	gauge := func(d *prometheus.Desc, v int) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	gauge(c.total, st.TotalSize)
	gauge(c.used, st.UsedSize)
	gauge(c.allocated, st.AllocatedSize)
	gauge(c.fragmentation, st.FragmentationBytes)
	gauge(c.blocks, st.AllocatedBlocks)
	ch <- prometheus.MustNewConstMetric(c.healthy, prometheus.GaugeValue, healthy)
}
