package internaldefs

import (
	"github.com/hast-app/hastauth"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   hastauth.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   hastauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: hastauth.MetricLoginSuccess, Name: "hastauth_login_success_total", Help: "Successful logins."},
	{ID: hastauth.MetricLoginFailure, Name: "hastauth_login_failure_total", Help: "Failed logins, role rejections included."},
	{ID: hastauth.MetricLoginRoleRejected, Name: "hastauth_login_role_rejected_total", Help: "Logins discarded by the role gate."},
	{ID: hastauth.MetricLoginMissingToken, Name: "hastauth_login_missing_token_total", Help: "Successful logins whose body carried no token."},
	{ID: hastauth.MetricAmbiguousResponse, Name: "hastauth_ambiguous_response_total", Help: "Response bodies no rule could classify."},
	{ID: hastauth.MetricHeuristicClassification, Name: "hastauth_heuristic_classification_total", Help: "Outcomes decided from description text."},
	{ID: hastauth.MetricLogout, Name: "hastauth_logout_total", Help: "Completed logouts."},
	{ID: hastauth.MetricLogoutRemoteFailed, Name: "hastauth_logout_remote_failed_total", Help: "Logouts whose backend call failed."},
	{ID: hastauth.MetricSessionCleared, Name: "hastauth_session_cleared_total", Help: "Sessions cleared after a 401 response."},
	{ID: hastauth.MetricNetworkError, Name: "hastauth_network_error_total", Help: "Requests that got no response."},
	{ID: hastauth.MetricHTTPStatusError, Name: "hastauth_http_status_error_total", Help: "Responses with a non-2xx status."},
	{ID: hastauth.MetricInputRejected, Name: "hastauth_input_rejected_total", Help: "Operations rejected before any request."},
	{ID: hastauth.MetricStoreFailure, Name: "hastauth_store_failure_total", Help: "Credential store failures."},
	{ID: hastauth.MetricPasswordReset, Name: "hastauth_password_reset_total", Help: "Accepted password reset requests."},
	{ID: hastauth.MetricPasswordChanged, Name: "hastauth_password_changed_total", Help: "Successful password changes."},
	{ID: hastauth.MetricProfileUpdated, Name: "hastauth_profile_updated_total", Help: "Successful profile updates."},
	{ID: hastauth.MetricAvatarUpdated, Name: "hastauth_avatar_updated_total", Help: "Successful avatar uploads."},
	{ID: hastauth.MetricAvatarRemoved, Name: "hastauth_avatar_removed_total", Help: "Successful avatar removals."},
	{ID: hastauth.MetricAttendanceAdded, Name: "hastauth_attendance_added_total", Help: "Successful attendance check-ins."},
	{ID: hastauth.MetricAttendanceRemoved, Name: "hastauth_attendance_removed_total", Help: "Successful attendance removals."},
	{ID: hastauth.MetricProbeSuccess, Name: "hastauth_probe_success_total", Help: "Connectivity probes that succeeded."},
	{ID: hastauth.MetricProbeFailure, Name: "hastauth_probe_failure_total", Help: "Connectivity probes that failed."},
}

// HistogramDefs lists every histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: hastauth.MetricRequestLatency, Name: "hastauth_request_latency_seconds", Help: "Backend round-trip latency."},
}

// HistogramUpperBounds are the bucket upper bounds in seconds. The last
// bucket is unbounded.
var HistogramUpperBounds = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HistogramBounds are the le labels of every bucket, +Inf included.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix are instrument name suffixes for exporters without
// native histogram buckets.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling missing
// buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
