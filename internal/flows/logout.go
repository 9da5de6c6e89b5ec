package flows

import (
	"context"
	"net/http"

	"github.com/hast-app/hastauth/internal/transport"
)

const opLogout = "logout"

// RunLogout tells the backend the session ends, then clears the local
// session whatever the backend said. Only a failed local clear is reported
// as failure.
func RunLogout(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	username := deps.currentUser(ctx)

	if _, err := deps.API.Do(ctx, transport.Request{Method: http.MethodPost, Path: deps.Endpoints.SignOut}); err != nil {
		deps.MetricInc(deps.Metrics.LogoutRemoteFailed)
		deps.Logger.Warn().Str("op", opLogout).Err(err).Msg("remote sign-out failed, clearing local session anyway")
	}

	// The caller may have cancelled the remote call; the local clear must
	// still happen.
	if err := deps.Session.Clear(context.WithoutCancel(ctx)); err != nil {
		res := deps.storeFailure(opLogout, err)
		res.Error = deps.Messages.Logout.Failure
		deps.EmitAudit(ctx, deps.Events.Logout, false, username, res.Err, nil)
		return res
	}

	deps.MetricInc(deps.Metrics.Logout)
	deps.EmitAudit(ctx, deps.Events.Logout, true, username, nil, nil)
	return Result{Success: true, Message: deps.Messages.Logout.Success}
}

// currentUser returns the stored username for audit records, or "".
func (d Deps) currentUser(ctx context.Context) string {
	if d.Session == nil {
		return ""
	}
	info, err := d.Session.UserInfo(ctx)
	if err != nil {
		return ""
	}
	return info.Username()
}
