// Package metrics exposes Prometheus collectors for the redirector.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"redirector/internal/models"
)

// Resolution outcomes.
const (
	OutcomePreview  = "preview"
	OutcomeRedirect = "redirect"
	OutcomeFallback = "fallback"
)

// Hit increment results.
const (
	HitOK      = "ok"
	HitError   = "error"
	HitDropped = "dropped"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redirector_resolutions_total",
			Help: "Total path resolutions, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	hitIncrementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redirector_hit_increments_total",
			Help: "Total background hit increments, labeled by result.",
		},
		[]string{"result"},
	)

	mappingHitsDesc = prometheus.NewDesc(
		"redirector_mapping_hits",
		"Stored hit count per mapping",
		[]string{"id", "path"},
		nil,
	)

	mappingsDesc = prometheus.NewDesc(
		"redirector_mappings",
		"Number of stored mappings",
		nil,
		nil,
	)

	once sync.Once
)

// Lister is the store capability the collector needs.
type Lister interface {
	ListMappings(ctx context.Context) ([]models.Mapping, error)
}

// MappingCollector is a custom Prometheus collector that reads mapping hit
// counts from the store on each scrape.
type MappingCollector struct {
	store   Lister
	timeout time.Duration
}

// NewMappingCollector creates a collector backed by store.
func NewMappingCollector(store Lister) *MappingCollector {
	return &MappingCollector{store: store, timeout: 5 * time.Second}
}

// Describe sends the metric descriptors to the channel.
func (c *MappingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- mappingHitsDesc
	ch <- mappingsDesc
}

// Collect lists all mappings and emits their hit counts.
func (c *MappingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	mappings, err := c.store.ListMappings(ctx)
	if err != nil {
		zap.L().Error("failed to collect mapping metrics", zap.Error(err))
		return
	}

	ch <- prometheus.MustNewConstMetric(mappingsDesc, prometheus.GaugeValue, float64(len(mappings)))
	for _, m := range mappings {
		ch <- prometheus.MustNewConstMetric(
			mappingHitsDesc,
			prometheus.CounterValue,
			float64(m.Hits),
			strconv.FormatInt(m.ID, 10),
			m.Path,
		)
	}
}

// Init registers the mapping collector with the default registry.
// It is safe to call this function multiple times.
func Init(store Lister) {
	once.Do(func() {
		prometheus.MustRegister(NewMappingCollector(store))
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveResolution counts a resolved request by outcome.
func ObserveResolution(outcome string) {
	resolutionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHit counts a background hit increment by result.
func ObserveHit(result string) {
	hitIncrementsTotal.WithLabelValues(result).Inc()
}
