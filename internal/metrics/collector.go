package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// DBCollector exports sql.DBStats for one of the MySQL pools.
type DBCollector struct {
	database string
	db       *sql.DB

	openDesc    *prometheus.Desc
	idleDesc    *prometheus.Desc
	inUseDesc   *prometheus.Desc
	waitDesc    *prometheus.Desc
	maxOpenDesc *prometheus.Desc
}

func NewDBCollector(database string, db *sql.DB) *DBCollector {
	return &DBCollector{
		database: database,
		db:       db,

		openDesc: prometheus.NewDesc(
			"sapi_mysql_connections_open",
			"Open MySQL connections by database",
			[]string{"database"},
			nil,
		),
		idleDesc: prometheus.NewDesc(
			"sapi_mysql_connections_idle",
			"Idle MySQL connections by database",
			[]string{"database"},
			nil,
		),
		inUseDesc: prometheus.NewDesc(
			"sapi_mysql_connections_in_use",
			"MySQL connections currently in use by database",
			[]string{"database"},
			nil,
		),
		waitDesc: prometheus.NewDesc(
			"sapi_mysql_connection_waits_total",
			"Total number of connections waited for by database",
			[]string{"database"},
			nil,
		),
		maxOpenDesc: prometheus.NewDesc(
			"sapi_mysql_connections_max_open",
			"Configured max open MySQL connections by database",
			[]string{"database"},
			nil,
		),
	}
}

func (c *DBCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.openDesc
	ch <- c.idleDesc
	ch <- c.inUseDesc
	ch <- c.waitDesc
	ch <- c.maxOpenDesc
}

func (c *DBCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.db.Stats()

	ch <- prometheus.MustNewConstMetric(c.openDesc, prometheus.GaugeValue,
		float64(stats.OpenConnections), c.database)
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue,
		float64(stats.Idle), c.database)
	ch <- prometheus.MustNewConstMetric(c.inUseDesc, prometheus.GaugeValue,
		float64(stats.InUse), c.database)
	ch <- prometheus.MustNewConstMetric(c.waitDesc, prometheus.CounterValue,
		float64(stats.WaitCount), c.database)
	ch <- prometheus.MustNewConstMetric(c.maxOpenDesc, prometheus.GaugeValue,
		float64(stats.MaxOpenConnections), c.database)
}

// RingCollector exports go-redis pool statistics aggregated over the
// ring members.
type RingCollector struct {
	ring *redis.Ring

	hitsDesc     *prometheus.Desc
	missesDesc   *prometheus.Desc
	timeoutsDesc *prometheus.Desc
	totalDesc    *prometheus.Desc
	idleDesc     *prometheus.Desc
	staleDesc    *prometheus.Desc
}

func NewRingCollector(ring *redis.Ring) *RingCollector {
	return &RingCollector{
		ring: ring,

		hitsDesc: prometheus.NewDesc(
			"sapi_redis_pool_hits_total",
			"Number of times a free connection was found in the pool",
			nil, nil,
		),
		missesDesc: prometheus.NewDesc(
			"sapi_redis_pool_misses_total",
			"Number of times a free connection was not found in the pool",
			nil, nil,
		),
		timeoutsDesc: prometheus.NewDesc(
			"sapi_redis_pool_timeouts_total",
			"Number of times a wait for a connection timed out",
			nil, nil,
		),
		totalDesc: prometheus.NewDesc(
			"sapi_redis_pool_connections_total",
			"Current number of connections in the pool",
			nil, nil,
		),
		idleDesc: prometheus.NewDesc(
			"sapi_redis_pool_connections_idle",
			"Current number of idle connections in the pool",
			nil, nil,
		),
		staleDesc: prometheus.NewDesc(
			"sapi_redis_pool_connections_stale_total",
			"Number of stale connections removed from the pool",
			nil, nil,
		),
	}
}

func (c *RingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitsDesc
	ch <- c.missesDesc
	ch <- c.timeoutsDesc
	ch <- c.totalDesc
	ch <- c.idleDesc
	ch <- c.staleDesc
}

func (c *RingCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.ring.PoolStats()

	ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.timeoutsDesc, prometheus.CounterValue, float64(stats.Timeouts))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stats.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.staleDesc, prometheus.CounterValue, float64(stats.StaleConns))
}
