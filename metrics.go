package hastauth

import (
	internalmetrics "github.com/hast-app/hastauth/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess is an exported constant or variable used by the session client.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure is an exported constant or variable used by the session client.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricLoginRoleRejected is an exported constant or variable used by the session client.
	MetricLoginRoleRejected = MetricID(internalmetrics.MetricLoginRoleRejected)
	// MetricLoginMissingToken is an exported constant or variable used by the session client.
	MetricLoginMissingToken = MetricID(internalmetrics.MetricLoginMissingToken)
	// MetricAmbiguousResponse is an exported constant or variable used by the session client.
	MetricAmbiguousResponse = MetricID(internalmetrics.MetricAmbiguousResponse)
	// MetricHeuristicClassification is an exported constant or variable used by the session client.
	MetricHeuristicClassification = MetricID(internalmetrics.MetricHeuristicClassification)
	// MetricLogout is an exported constant or variable used by the session client.
	MetricLogout = MetricID(internalmetrics.MetricLogout)
	// MetricLogoutRemoteFailed is an exported constant or variable used by the session client.
	MetricLogoutRemoteFailed = MetricID(internalmetrics.MetricLogoutRemoteFailed)
	// MetricSessionCleared is an exported constant or variable used by the session client.
	MetricSessionCleared = MetricID(internalmetrics.MetricSessionCleared)
	// MetricNetworkError is an exported constant or variable used by the session client.
	MetricNetworkError = MetricID(internalmetrics.MetricNetworkError)
	// MetricHTTPStatusError is an exported constant or variable used by the session client.
	MetricHTTPStatusError = MetricID(internalmetrics.MetricHTTPStatusError)
	// MetricInputRejected is an exported constant or variable used by the session client.
	MetricInputRejected = MetricID(internalmetrics.MetricInputRejected)
	// MetricStoreFailure is an exported constant or variable used by the session client.
	MetricStoreFailure = MetricID(internalmetrics.MetricStoreFailure)
	// MetricPasswordReset is an exported constant or variable used by the session client.
	MetricPasswordReset = MetricID(internalmetrics.MetricPasswordReset)
	// MetricPasswordChanged is an exported constant or variable used by the session client.
	MetricPasswordChanged = MetricID(internalmetrics.MetricPasswordChanged)
	// MetricProfileUpdated is an exported constant or variable used by the session client.
	MetricProfileUpdated = MetricID(internalmetrics.MetricProfileUpdated)
	// MetricAvatarUpdated is an exported constant or variable used by the session client.
	MetricAvatarUpdated = MetricID(internalmetrics.MetricAvatarUpdated)
	// MetricAvatarRemoved is an exported constant or variable used by the session client.
	MetricAvatarRemoved = MetricID(internalmetrics.MetricAvatarRemoved)
	// MetricAttendanceAdded is an exported constant or variable used by the session client.
	MetricAttendanceAdded = MetricID(internalmetrics.MetricAttendanceAdded)
	// MetricAttendanceRemoved is an exported constant or variable used by the session client.
	MetricAttendanceRemoved = MetricID(internalmetrics.MetricAttendanceRemoved)
	// MetricProbeSuccess is an exported constant or variable used by the session client.
	MetricProbeSuccess = MetricID(internalmetrics.MetricProbeSuccess)
	// MetricProbeFailure is an exported constant or variable used by the session client.
	MetricProbeFailure = MetricID(internalmetrics.MetricProbeFailure)
	// MetricRequestLatency is an exported constant or variable used by the session client.
	MetricRequestLatency = MetricID(internalmetrics.MetricRequestLatency)
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
