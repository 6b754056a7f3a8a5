package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveEnrichment(t *testing.T) {
	before := testutil.ToFloat64(EnrichmentFailures.WithLabelValues("test_action"))
	ObserveEnrichment("test_action", time.Now(), nil)
	ObserveEnrichment("test_action", time.Now(), errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(EnrichmentFailures.WithLabelValues("test_action")))
	assert.Equal(t, 1, testutil.CollectAndCount(EnrichmentDuration, "enrichment_call_duration_seconds"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("x")))
}
