package health

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusConstructors(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		want    string
		healthy bool
	}{
		{"healthy", NewHealthy("store", "ok"), StatusHealthy, true},
		{"degraded", NewDegraded("worldbank", "slow"), StatusDegraded, false},
		{"unhealthy", NewUnhealthy("nats", "down"), StatusUnhealthy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Status)
			assert.Equal(t, tt.healthy, tt.status.Healthy)
			assert.Equal(t, tt.healthy, tt.status.IsHealthy())
			assert.False(t, tt.status.Timestamp.IsZero())
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want string
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StatusHealthy},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StatusDegraded},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("countrycompare", tt.subs)
			assert.Equal(t, tt.want, got.Status)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}
}

func TestWithDetailDoesNotShareMap(t *testing.T) {
	base := NewHealthy("store", "ok").WithDetail("backend", "memory")
	derived := base.WithDetail("bucket", "countries")

	assert.Len(t, base.Details, 1)
	assert.Len(t, derived.Details, 2)
}

func TestFromErrorSanitizes(t *testing.T) {
	assert.True(t, FromError("store", nil).IsHealthy())

	err := fmt.Errorf("Get \"https://api.worldbank.org/v2/country/CA\": dial tcp 10.0.0.12:443: connection refused")
	status := FromError("worldbank", err)

	assert.True(t, status.IsUnhealthy())
	assert.NotContains(t, status.Message, "api.worldbank.org")
	assert.NotContains(t, status.Message, "10.0.0.12")
	assert.Contains(t, status.Message, "[URL]")
	assert.Contains(t, status.Message, "connection refused")

	status = FromError("nats", fmt.Errorf("auth failed token=abc123"))
	assert.Contains(t, status.Message, "[REDACTED]")
	assert.NotContains(t, status.Message, "abc123")
}
