package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the business counters exported on /metrics
type Metrics struct {
	codesRequested  metric.Int64Counter
	codesVerified   metric.Int64Counter
	registrations   metric.Int64Counter
	logins          metric.Int64Counter
	passwordChanges metric.Int64Counter
}

// NewMetrics registers the counters on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.codesRequested, "verification_codes_requested_total", "Verification codes requested"},
		{&m.codesVerified, "verification_codes_verified_total", "Verification code submissions"},
		{&m.registrations, "accounts_registered_total", "Registration attempts"},
		{&m.logins, "logins_total", "Login attempts"},
		{&m.passwordChanges, "password_changes_total", "Password change attempts"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.target = counter
	}

	return m, nil
}

func (m *Metrics) record(ctx context.Context, counter metric.Int64Counter, err error) {
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", Outcome(err))))
}

// CodeRequested counts a RequestCode call
func (m *Metrics) CodeRequested(ctx context.Context, err error) {
	m.record(ctx, m.codesRequested, err)
}

// CodeVerified counts a VerifyCode call
func (m *Metrics) CodeVerified(ctx context.Context, err error) {
	m.record(ctx, m.codesVerified, err)
}

// Registered counts a Register call
func (m *Metrics) Registered(ctx context.Context, err error) {
	m.record(ctx, m.registrations, err)
}

// LoggedIn counts a Login call
func (m *Metrics) LoggedIn(ctx context.Context, err error) {
	m.record(ctx, m.logins, err)
}

// PasswordChanged counts a ChangePassword call
func (m *Metrics) PasswordChanged(ctx context.Context, err error) {
	m.record(ctx, m.passwordChanges, err)
}
