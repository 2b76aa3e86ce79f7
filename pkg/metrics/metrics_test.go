package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsOperations(t *testing.T) {
	m := New()

	m.ObserveOperation("item.update", "ok", time.Now())
	m.ObserveOperation("item.update", "not_found", time.Now())
	m.ObserveOperation("item.update", "not_found", time.Now())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("item.update", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("item.update", "not_found")))
}

func TestMetrics_ImageAndCache(t *testing.T) {
	m := New()

	m.ObserveImage("upload", nil)
	m.ObserveImage("upload", errors.New("s3 down"))
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageOps.WithLabelValues("upload", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequests.WithLabelValues("miss")))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveOperation("item.create", "ok", time.Now())
		m.ObserveImage("delete", nil)
		m.CacheError()
		m.ObserveHTTP("GET", "/api/v1/items", 200, time.Now())
		m.ObserveEvent("item.created", nil)
	})
	assert.NotNil(t, m.Handler())
}
