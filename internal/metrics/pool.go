package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// PoolCollector implements prometheus.Collector for the Postgres and Redis
// connection pools. Stats are read during each scrape.
type PoolCollector struct {
	postgres *pgxpool.Pool
	redis    *redis.Client

	pgAcquireCount    *prometheus.Desc
	pgAcquireDuration *prometheus.Desc
	pgAcquiredConns   *prometheus.Desc
	pgEmptyAcquire    *prometheus.Desc
	pgIdleConns       *prometheus.Desc
	pgMaxConns        *prometheus.Desc
	pgTotalConns      *prometheus.Desc

	redisHits       *prometheus.Desc
	redisMisses     *prometheus.Desc
	redisTimeouts   *prometheus.Desc
	redisTotalConns *prometheus.Desc
	redisIdleConns  *prometheus.Desc
	redisStaleConns *prometheus.Desc
}

// NewPoolCollector creates a collector for the given pools. Either may be nil.
func NewPoolCollector(pg *pgxpool.Pool, rdb *redis.Client) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("puzzlebox_"+name, help, nil, nil)
	}
	return &PoolCollector{
		postgres: pg,
		redis:    rdb,

		pgAcquireCount:    desc("pgxpool_acquire_count", "Cumulative count of successful connection acquires."),
		pgAcquireDuration: desc("pgxpool_acquire_duration_seconds", "Cumulative time spent acquiring connections."),
		pgAcquiredConns:   desc("pgxpool_acquired_conns", "Number of currently acquired connections."),
		pgEmptyAcquire:    desc("pgxpool_empty_acquire_count", "Cumulative count of acquires from an empty pool."),
		pgIdleConns:       desc("pgxpool_idle_conns", "Number of idle connections in the pool."),
		pgMaxConns:        desc("pgxpool_max_conns", "Maximum number of connections allowed."),
		pgTotalConns:      desc("pgxpool_total_conns", "Total number of connections in the pool."),

		redisHits:       desc("redis_pool_hits", "Cumulative count of free connections found in the pool."),
		redisMisses:     desc("redis_pool_misses", "Cumulative count of free connections not found in the pool."),
		redisTimeouts:   desc("redis_pool_timeouts", "Cumulative count of pool wait timeouts."),
		redisTotalConns: desc("redis_pool_total_conns", "Total number of connections in the pool."),
		redisIdleConns:  desc("redis_pool_idle_conns", "Number of idle connections in the pool."),
		redisStaleConns: desc("redis_pool_stale_conns", "Cumulative count of stale connections removed from the pool."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pgAcquireCount
	ch <- c.pgAcquireDuration
	ch <- c.pgAcquiredConns
	ch <- c.pgEmptyAcquire
	ch <- c.pgIdleConns
	ch <- c.pgMaxConns
	ch <- c.pgTotalConns
	ch <- c.redisHits
	ch <- c.redisMisses
	ch <- c.redisTimeouts
	ch <- c.redisTotalConns
	ch <- c.redisIdleConns
	ch <- c.redisStaleConns
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}

	if c.postgres != nil {
		stat := c.postgres.Stat()
		counter(c.pgAcquireCount, float64(stat.AcquireCount()))
		counter(c.pgAcquireDuration, stat.AcquireDuration().Seconds())
		gauge(c.pgAcquiredConns, float64(stat.AcquiredConns()))
		counter(c.pgEmptyAcquire, float64(stat.EmptyAcquireCount()))
		gauge(c.pgIdleConns, float64(stat.IdleConns()))
		gauge(c.pgMaxConns, float64(stat.MaxConns()))
		gauge(c.pgTotalConns, float64(stat.TotalConns()))
	}

	if c.redis != nil {
		stat := c.redis.PoolStats()
		counter(c.redisHits, float64(stat.Hits))
		counter(c.redisMisses, float64(stat.Misses))
		counter(c.redisTimeouts, float64(stat.Timeouts))
		gauge(c.redisTotalConns, float64(stat.TotalConns))
		gauge(c.redisIdleConns, float64(stat.IdleConns))
		counter(c.redisStaleConns, float64(stat.StaleConns))
	}
}
