package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// PlatformMetrics holds the platform-level counters: data access outcomes,
// billing counter updates, onboarding completions, queue publish failures
// and errors. Every error path increments the error counter exactly once.
type PlatformMetrics struct {
	dataAccessSuccess    *Counter
	dataAccessFailure    *Counter
	billingUpdates       *Counter
	onboardingSuccess    *Counter
	queuePublishFailures *Counter
	malformedEvents      *Counter
	errors               *Counter
}

// NewPlatformMetrics creates all platform metric instruments. With a
// disabled MeterProvider the instruments are no-ops, which is what tests use.
func NewPlatformMetrics(mp *MeterProvider) (*PlatformMetrics, error) {
	meter := mp.Meter("tenantgrid")

	dataAccessSuccess, err := NewCounter(meter, "tenant_data_access_success_total", "Successful tenant data reads and writes", "{operation}")
	if err != nil {
		return nil, err
	}
	dataAccessFailure, err := NewCounter(meter, "tenant_data_access_failure_total", "Failed tenant data reads and writes", "{operation}")
	if err != nil {
		return nil, err
	}
	billingUpdates, err := NewCounter(meter, "billing_updates_total", "Usage counter updates applied by the meter", "{update}")
	if err != nil {
		return nil, err
	}
	onboardingSuccess, err := NewCounter(meter, "onboarding_success_total", "Tenants onboarded", "{tenant}")
	if err != nil {
		return nil, err
	}
	queuePublishFailures, err := NewCounter(meter, "queue_publish_failures_total", "Billing notices that could not be published", "{notice}")
	if err != nil {
		return nil, err
	}
	malformedEvents, err := NewCounter(meter, "malformed_events_total", "Stream records that could not be parsed", "{event}")
	if err != nil {
		return nil, err
	}
	errCounter, err := NewCounter(meter, "platform_errors_total", "Errors across all platform operations", "{error}")
	if err != nil {
		return nil, err
	}

	return &PlatformMetrics{
		dataAccessSuccess:    dataAccessSuccess,
		dataAccessFailure:    dataAccessFailure,
		billingUpdates:       billingUpdates,
		onboardingSuccess:    onboardingSuccess,
		queuePublishFailures: queuePublishFailures,
		malformedEvents:      malformedEvents,
		errors:               errCounter,
	}, nil
}

// RecordDataAccessSuccess records a successful data read or write.
func (m *PlatformMetrics) RecordDataAccessSuccess(ctx context.Context, operation string) {
	m.dataAccessSuccess.Inc(ctx, attribute.String("operation", operation))
}

// RecordDataAccessFailure records a failed data read or write.
func (m *PlatformMetrics) RecordDataAccessFailure(ctx context.Context, operation string) {
	m.dataAccessFailure.Inc(ctx, attribute.String("operation", operation))
}

// RecordBillingUpdate records a usage counter update.
func (m *PlatformMetrics) RecordBillingUpdate(ctx context.Context) {
	m.billingUpdates.Inc(ctx)
}

// RecordOnboardingSuccess records a completed tenant onboarding.
func (m *PlatformMetrics) RecordOnboardingSuccess(ctx context.Context) {
	m.onboardingSuccess.Inc(ctx)
}

// RecordQueuePublishFailure records a billing notice that could not be delivered.
func (m *PlatformMetrics) RecordQueuePublishFailure(ctx context.Context) {
	m.queuePublishFailures.Inc(ctx)
}

// RecordMalformedEvent records a stream record that could not be parsed.
func (m *PlatformMetrics) RecordMalformedEvent(ctx context.Context) {
	m.malformedEvents.Inc(ctx)
}

// RecordError records an error occurrence.
func (m *PlatformMetrics) RecordError(ctx context.Context, component string) {
	m.errors.Inc(ctx, attribute.String("component", component))
}
