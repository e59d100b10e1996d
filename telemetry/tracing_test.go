package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
)

// TestTracersFanOut checks every tracer sees each decision, including the
// OpenTelemetry exporter on no-op providers.
func TestTracersFanOut(t *testing.T) {
	otelTracing, err := NewTracing()
	require.NoError(t, err)
	a := NewCollector(10, 1.0/60)
	b := NewCollector(10, 1.0/60)
	ts := Tracers{a, otelTracing, b}

	otelTracing.StartTick(context.Background(), 1, "live")
	ts.StateChanged(2, components.StateLooseBall, components.StateOffBallOffense)
	ts.ActionRequested(2, behavior.ActionRequest{Type: components.ActionPassBounce, TargetID: 1}, behavior.ActionResult{Message: "cooldown"})
	ts.PassEvaluated(2, 1, 0.25)
	otelTracing.EndTick()
	otelTracing.EndTick()

	for _, c := range []*Collector{a, b} {
		s := c.Flush(600, Score{})
		assert.Equal(t, 1, s.Transitions)
		assert.Equal(t, 1, s.Rejections)
		assert.Equal(t, 1, s.PassesEvaluated)
	}
}
