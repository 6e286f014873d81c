package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/streamdate/sapi/internal/database"
)

// Manager owns the private prometheus registry served on
// server.metrics_port.
type Manager struct {
	registry *prometheus.Registry
}

// NewManager builds the registry with the standard process/Go collectors
// and a build info gauge.
func NewManager(version string) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sapi_build_info",
		Help: "Build information of the running sapi binary",
	}, []string{"version"})
	buildInfo.WithLabelValues(version).Set(1)
	registry.MustRegister(buildInfo)

	log.Info().Msg("Metrics manager initialized")

	return &Manager{registry: registry}
}

// RegisterDatabase exports pool statistics for both MySQL databases.
func (m *Manager) RegisterDatabase(pools *database.Pools) {
	m.registry.MustRegister(NewDBCollector("dating", pools.Dating))
	m.registry.MustRegister(NewDBCollector("social", pools.Social))
}

// RegisterRing exports connection pool statistics of the redis ring.
func (m *Manager) RegisterRing(ring *redis.Ring) {
	m.registry.MustRegister(NewRingCollector(ring))
}

// GetRegistry exposes the registry for tests.
func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// Handler returns the scrape endpoint handler.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
