package billing

import (
	"context"
	"time"

	"github.com/vizboard/vizboard/pkg/observability"
)

// InstrumentedGateway wraps a Gateway with Prometheus metrics
type InstrumentedGateway struct {
	next    Gateway
	metrics *observability.Metrics
}

var _ Gateway = (*InstrumentedGateway)(nil)

// NewInstrumentedGateway decorates next with per-call metrics
func NewInstrumentedGateway(next Gateway, metrics *observability.Metrics) *InstrumentedGateway {
	return &InstrumentedGateway{next: next, metrics: metrics}
}

func (g *InstrumentedGateway) GetSubscriptionDetails(ctx context.Context, subscriptionID string) (*Subscription, error) {
	start := time.Now()
	sub, err := g.next.GetSubscriptionDetails(ctx, subscriptionID)
	g.metrics.ObserveBillingCall("get_subscription", outcome(err), time.Since(start))
	return sub, err
}

func (g *InstrumentedGateway) UpdateMembers(ctx context.Context, subscriptionID string, delta int64) error {
	start := time.Now()
	err := g.next.UpdateMembers(ctx, subscriptionID, delta)
	g.metrics.ObserveBillingCall("update_members", outcome(err), time.Since(start))
	if err == nil {
		direction := "increase"
		if delta < 0 {
			direction = "decrease"
		}
		g.metrics.SeatAdjustmentsTotal.WithLabelValues(direction).Inc()
	}
	return err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
