package flows

import (
	"context"
	"net/http"

	"github.com/hast-app/hastauth/internal/transport"
)

const opProbe = "test_connection"

// RunTestConnection checks that the backend answers. It goes through the
// probe sender, so no token is attached and a 401 clears nothing.
func RunTestConnection(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	resp, err := deps.Probe.Do(ctx, transport.Request{Method: http.MethodGet, Path: deps.Endpoints.TimeSlot})
	if err != nil {
		deps.MetricInc(deps.Metrics.ProbeFailure)
		return deps.transportFailure(opProbe, err)
	}

	res := deps.read(envelope{
		op:      opProbe,
		text:    deps.Messages.Probe,
		payload: wholeBody,
	}, resp.Body)
	if res.Success {
		deps.MetricInc(deps.Metrics.ProbeSuccess)
	} else {
		deps.MetricInc(deps.Metrics.ProbeFailure)
	}
	return res
}
