package bstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporterScrapeRegistersGaugeFromCounter(t *testing.T) {
	counters := NewCounters()
	counters.Inc("gtk.rotations", 2)
	e := NewPrometheusExporter(counters, 0, 0)

	e.scrape()

	metrics, err := e.registry.Gather()
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, "gtk_rotations", metrics[0].GetName())
	assert.Equal(t, float64(2), metrics[0].Metric[0].GetGauge().GetValue())
}

func TestPrometheusExporterScrapeUpdatesExistingGauge(t *testing.T) {
	counters := NewCounters()
	counters.Inc("dao_ingests", 1)
	e := NewPrometheusExporter(counters, 0, 0)

	e.scrape()
	counters.Inc("dao_ingests", 9)
	e.scrape()

	metrics, err := e.registry.Gather()
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, float64(10), metrics[0].Metric[0].GetGauge().GetValue())
}

func TestFlattenKeyReplacesSeparators(t *testing.T) {
	assert.Equal(t, "a_b_c_d_e", flattenKey("a b.c-d=e"))
}

func TestFlattenKeyHandlesSlash(t *testing.T) {
	assert.Equal(t, "eapol_relay_drops", flattenKey("eapol/relay drops"))
}
