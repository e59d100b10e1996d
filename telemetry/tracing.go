package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pthm-cable/hoops/behavior"
	"github.com/pthm-cable/hoops/components"
)

const instrumentationName = "github.com/pthm-cable/hoops/telemetry"

// Tracing exports behavior decisions as OpenTelemetry spans and metrics.
// It uses the global providers, which are no-ops unless configured.
type Tracing struct {
	tracer trace.Tracer

	actions     metric.Int64Counter
	rejections  metric.Int64Counter
	transitions metric.Int64Counter
	passRisk    metric.Float64Histogram

	ctx  context.Context
	span trace.Span
}

var _ behavior.Tracer = (*Tracing)(nil)

// NewTracing creates the instruments.
func NewTracing() (*Tracing, error) {
	m := otel.Meter(instrumentationName)
	t := &Tracing{
		tracer: otel.Tracer(instrumentationName),
		ctx:    context.Background(),
	}

	var err error
	t.actions, err = m.Int64Counter(
		"hoops.actions",
		metric.WithDescription("Action requests by type and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating actions counter: %w", err)
	}

	t.rejections, err = m.Int64Counter(
		"hoops.actions.rejected",
		metric.WithDescription("Action requests refused by the controller"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejections counter: %w", err)
	}

	t.transitions, err = m.Int64Counter(
		"hoops.state.transitions",
		metric.WithDescription("Behavior state changes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transitions counter: %w", err)
	}

	t.passRisk, err = m.Float64Histogram(
		"hoops.pass.risk",
		metric.WithDescription("Interception risk of chosen passes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pass risk histogram: %w", err)
	}

	return t, nil
}

// StartTick opens the span that decisions of this tick attach to.
func (t *Tracing) StartTick(ctx context.Context, tick int32, phase string) {
	t.EndTick()
	t.ctx, t.span = t.tracer.Start(ctx, "match.tick",
		trace.WithAttributes(
			attribute.Int("tick", int(tick)),
			attribute.String("phase", phase),
		),
	)
}

// EndTick closes the current tick span, if any.
func (t *Tracing) EndTick() {
	if t.span != nil {
		t.span.End()
		t.span = nil
	}
}

func (t *Tracing) StateChanged(id components.CharacterID, from, to components.BehaviorState) {
	attrs := []attribute.KeyValue{
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	}
	t.transitions.Add(t.ctx, 1, metric.WithAttributes(attrs...))
	if t.span != nil {
		t.span.AddEvent("state_changed", trace.WithAttributes(append(attrs, attribute.Int("player", int(id)))...))
	}
}

func (t *Tracing) ActionRequested(id components.CharacterID, req behavior.ActionRequest, res behavior.ActionResult) {
	typeAttr := attribute.String("action", string(req.Type))
	t.actions.Add(t.ctx, 1, metric.WithAttributes(typeAttr, attribute.Bool("success", res.Success)))
	if !res.Success {
		t.rejections.Add(t.ctx, 1, metric.WithAttributes(typeAttr, attribute.String("reason", res.Message)))
	}
	if t.span != nil {
		t.span.AddEvent("action_requested", trace.WithAttributes(
			attribute.Int("player", int(id)),
			typeAttr,
			attribute.Int("target", int(req.TargetID)),
			attribute.Bool("success", res.Success),
		))
	}
}

func (t *Tracing) PassEvaluated(id, receiver components.CharacterID, risk float64) {
	t.passRisk.Record(t.ctx, risk)
	if t.span != nil {
		t.span.AddEvent("pass_evaluated", trace.WithAttributes(
			attribute.Int("player", int(id)),
			attribute.Int("receiver", int(receiver)),
			attribute.Float64("risk", risk),
		))
	}
}

// Tracers fans decisions out to several tracers in order.
type Tracers []behavior.Tracer

func (ts Tracers) StateChanged(id components.CharacterID, from, to components.BehaviorState) {
	for _, t := range ts {
		t.StateChanged(id, from, to)
	}
}

func (ts Tracers) ActionRequested(id components.CharacterID, req behavior.ActionRequest, res behavior.ActionResult) {
	for _, t := range ts {
		t.ActionRequested(id, req, res)
	}
}

func (ts Tracers) PassEvaluated(id, receiver components.CharacterID, risk float64) {
	for _, t := range ts {
		t.PassEvaluated(id, receiver, risk)
	}
}
