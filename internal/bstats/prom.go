/*
Copyright (c) The wisun-br-linux Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bstats

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PrometheusExporter republishes a Counters registry as Prometheus
// gauges, grounded on sptp stats' PrometheusExporter (here the
// counters are read directly from the in-process registry instead of
// scraped back over HTTP, since bstats lives in the same process as
// every component it measures).
type PrometheusExporter struct {
	registry   *prometheus.Registry
	counters   *Counters
	listenPort int
	interval   time.Duration
}

// NewPrometheusExporter builds an exporter scraping counters every
// scrapeInterval and serving them on listenPort.
func NewPrometheusExporter(counters *Counters, listenPort int, scrapeInterval time.Duration) *PrometheusExporter {
	return &PrometheusExporter{
		registry:   prometheus.NewRegistry(),
		counters:   counters,
		listenPort: listenPort,
		interval:   scrapeInterval,
	}
}

// Start runs the periodic scrape loop and the HTTP /metrics endpoint.
// It blocks; run it in its own goroutine.
func (e *PrometheusExporter) Start() error {
	go func() {
		for {
			e.scrape()
			time.Sleep(e.interval)
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	return http.ListenAndServe(fmt.Sprintf(":%d", e.listenPort), mux)
}

func (e *PrometheusExporter) scrape() {
	for name, value := range e.counters.Snapshot() {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: flattenKey(name), Help: name})
		if err := e.registry.Register(gauge); err != nil {
			are := &prometheus.AlreadyRegisteredError{}
			if errors.As(err, are) {
				gauge = are.ExistingCollector.(prometheus.Gauge)
			} else {
				log.Errorf("bstats: failed to register metric %s: %v", name, err)
				continue
			}
		}
		gauge.Set(float64(value))
	}
}

func flattenKey(key string) string {
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ".", "_")
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, "=", "_")
	key = strings.ReplaceAll(key, "/", "_")
	return key
}
