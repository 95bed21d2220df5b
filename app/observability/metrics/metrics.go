package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the auth core's metric instruments.
type AppMetrics struct {
	LoginAttemptsTotal       metric.Int64Counter // attribute "outcome": success|invalid_credentials|inactive|rate_limited|error
	RateLimitedTotal         metric.Int64Counter
	CredentialFailuresTotal  metric.Int64Counter // attribute "reason": expired|invalid
	LifecycleOperationsTotal metric.Int64Counter // attribute "op": create|ban|unban|delete
	GateDecisionDuration     metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("spice-drama-admin")
		var err error
		m := &AppMetrics{}

		m.LoginAttemptsTotal, err = meter.Int64Counter(
			"login_attempts_total",
			metric.WithDescription("Total number of login attempts by outcome"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create login_attempts_total: %v", err)
		}

		m.RateLimitedTotal, err = meter.Int64Counter(
			"login_rate_limited_total",
			metric.WithDescription("Total number of login attempts rejected by the rate limiter"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create login_rate_limited_total: %v", err)
		}

		m.CredentialFailuresTotal, err = meter.Int64Counter(
			"credential_validation_failures_total",
			metric.WithDescription("Total number of credential validation failures by reason"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create credential_validation_failures_total: %v", err)
		}

		m.LifecycleOperationsTotal, err = meter.Int64Counter(
			"account_lifecycle_operations_total",
			metric.WithDescription("Total number of account lifecycle operations by op"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create account_lifecycle_operations_total: %v", err)
		}

		m.GateDecisionDuration, err = meter.Float64Histogram(
			"rbac_gate_decision_seconds",
			metric.WithDescription("Duration of RBAC gate decisions in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create rbac_gate_decision_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
