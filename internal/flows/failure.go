package flows

import (
	"errors"
	"fmt"

	"github.com/hast-app/hastauth/internal/normalize"
	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/validate"
)

// transportFailure maps a Sender error to a failure Result. The mapping is
// identical for every operation.
func (d Deps) transportFailure(op string, err error) Result {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		terr = &transport.Error{Kind: transport.KindRequest, Err: err}
	}

	switch terr.Kind {
	case transport.KindStatus:
		d.MetricInc(d.Metrics.HTTPStatusError)
		msg := ""
		if body, ok := normalize.Parse(terr.Body); ok {
			msg = body.FirstString("description", "message", "error")
		}
		if msg == "" {
			msg = d.Messages.Status(terr.Status)
		}
		sentinel := d.Errors.HTTPStatus
		if terr.Status == 401 {
			sentinel = d.Errors.Unauthorized
		}
		d.Logger.Info().Str("op", op).Int("status", terr.Status).Msg("api returned error status")
		return Result{
			Error:      msg,
			StatusCode: terr.Status,
			Debug:      string(terr.Body),
			Err:        fmt.Errorf("%w: %s: status %d", sentinel, op, terr.Status),
		}

	case transport.KindNetwork:
		d.MetricInc(d.Metrics.NetworkError)
		d.Logger.Warn().Str("op", op).Err(terr.Err).Msg("server unreachable")
		return Result{
			Error:        d.Messages.Network,
			NetworkError: true,
			Err:          fmt.Errorf("%w: %s: %v", d.Errors.Network, op, terr.Err),
		}

	default:
		original := ""
		if terr.Err != nil {
			original = terr.Err.Error()
		}
		d.Logger.Warn().Str("op", op).Err(terr.Err).Msg("request not sent")
		return Result{
			Error:         d.Messages.Request,
			OriginalError: original,
			Err:           fmt.Errorf("%w: %s: %v", d.Errors.Request, op, terr.Err),
		}
	}
}

// invalid rejects input before any network call.
func (d Deps) invalid(op string, err error) Result {
	d.MetricInc(d.Metrics.InputRejected)
	msg := err.Error()
	var verr *validate.Error
	if errors.As(err, &verr) {
		msg = verr.Message(d.Messages)
	}
	return Result{
		Error: msg,
		Err:   fmt.Errorf("%w: %s: %v", d.Errors.InvalidInput, op, err),
	}
}

// missing rejects a required argument that has no validate rule.
func (d Deps) missing(op, field, msg string) Result {
	d.MetricInc(d.Metrics.InputRejected)
	return Result{
		Error: msg,
		Err:   fmt.Errorf("%w: %s: %s is required", d.Errors.InvalidInput, op, field),
	}
}

// ambiguous reports a body no rule could classify. The raw body is kept
// byte for byte in Debug.
func (d Deps) ambiguous(op string, raw []byte) Result {
	d.MetricInc(d.Metrics.AmbiguousResponse)
	d.Logger.Warn().Str("op", op).Int("body_bytes", len(raw)).Msg("unrecognized response shape")
	return Result{
		Error: d.Messages.AmbiguousPrefix + string(raw),
		Debug: string(raw),
		Err:   fmt.Errorf("%w: %s", d.Errors.Ambiguous, op),
	}
}

func (d Deps) storeFailure(op string, err error) Result {
	d.MetricInc(d.Metrics.StoreFailure)
	d.Logger.Error().Str("op", op).Err(err).Msg("credential store failed")
	return Result{
		Error:         d.Messages.StoreFailure,
		OriginalError: err.Error(),
		Err:           fmt.Errorf("%w: %s: %v", d.Errors.Store, op, err),
	}
}

// noteHeuristic logs and counts every outcome decided by the description
// heuristic.
func (d Deps) noteHeuristic(op string, out normalize.Outcome) {
	if out.Rule != normalize.RuleDescription {
		return
	}
	d.MetricInc(d.Metrics.HeuristicClassification)
	d.Logger.Warn().
		Str("op", op).
		Str("rule", out.Rule.String()).
		Str("outcome", out.Kind.String()).
		Msg("outcome decided from description text")
}
