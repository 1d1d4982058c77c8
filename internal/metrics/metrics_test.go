package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("", reg)
	require.NoError(t, err)

	o.RecordMessage("welcome")
	o.RecordMessage("bedrock_ai")
	o.RecordMessage("bedrock_ai")
	o.RecordSkipped("decode")
	o.ObserveGeneration("bedrock_ai", 0.2, nil)
	o.ObserveGeneration("bedrock_ai", 1.5, errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(o.messages.WithLabelValues("bedrock_ai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.messages.WithLabelValues("welcome")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.skipped.WithLabelValues("decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.generationErrors.WithLabelValues("bedrock_ai")))
	assert.Equal(t, 1, testutil.CollectAndCount(o.generationDuration))
}

func TestPrometheusObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("glow", reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver("glow", reg)
	require.NoError(t, err)

	second.RecordMessage("openai")
	assert.Equal(t, 1.0, testutil.ToFloat64(first.messages.WithLabelValues("openai")))
}

func TestPrometheusObserver_NilSafe(t *testing.T) {
	var o *PrometheusObserver
	o.RecordMessage("x")
	o.RecordSkipped("x")
	o.ObserveGeneration("x", 1, nil)
}
