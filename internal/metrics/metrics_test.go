package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofio/internal/metrics"
)

func TestHandler_ExposesTierMetrics(t *testing.T) {
	metrics.Init()
	metrics.Init()

	metrics.AddFields("cheap_rule", "scope", 3)
	metrics.PaidTierSkipped("scope")
	metrics.AddTokens("contract", 150)
	metrics.ObserveGenerator("claude", "claude-sonnet", "success", 250*time.Millisecond)
	metrics.ObserveParse("scope", "success", time.Second)
	metrics.BreakerOpened("claude")

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `roofio_fields_extracted_total{document_type="scope",tier="cheap_rule"} 3`)
	assert.Contains(t, out, `roofio_paid_tier_decisions_total{decision="skipped",document_type="scope"} 1`)
	assert.Contains(t, out, `roofio_paid_tier_tokens_total{document_type="contract"} 150`)
	assert.Contains(t, out, `roofio_generator_requests_total{model="claude-sonnet",provider="claude",result="success"} 1`)
	assert.Contains(t, out, `roofio_breaker_events_total{action="opened",provider="claude"} 1`)
}
