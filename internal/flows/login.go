package flows

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hast-app/hastauth/internal/normalize"
	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/validate"
)

const (
	opLogin         = "login"
	opResetPassword = "reset_password"
)

type signInBody struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// RunLogin signs in and, on success, persists the token and user record as
// a pair.
func RunLogin(ctx context.Context, username, password string, deps Deps) Result {
	deps = deps.withDefaults()

	username = strings.TrimSpace(username)
	if username == "" {
		return deps.loginFailed(ctx, username, deps.invalid(opLogin, &validate.Error{Field: "username", Code: validate.CodeUsernameRequired}))
	}
	if strings.TrimSpace(password) == "" {
		return deps.loginFailed(ctx, username, deps.invalid(opLogin, &validate.Error{Field: "password", Code: validate.CodePasswordRequired}))
	}

	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   deps.Endpoints.SignIn,
		JSON:   signInBody{UserName: username, Password: password},
	})
	if err != nil {
		return deps.loginFailed(ctx, username, deps.transportFailure(opLogin, err))
	}

	out := normalize.Classify(resp.Body, username)
	deps.noteHeuristic(opLogin, out)

	switch out.Kind {
	case normalize.KindAmbiguous:
		return deps.loginFailed(ctx, username, deps.ambiguous(opLogin, resp.Body))

	case normalize.KindFailure:
		return deps.loginFailed(ctx, username, Result{
			Error:      orDefault(out.Message, deps.Messages.Login.Failure),
			StatusCode: out.StatusCode,
			Err:        fmt.Errorf("%w: %s", deps.Errors.Rejected, opLogin),
		})
	}

	if out.Rule == normalize.RuleSuccessField && deps.Gate != nil && !deps.Gate.Allows(out.UserInfo) {
		deps.MetricInc(deps.Metrics.LoginRoleRejected)
		deps.Logger.Info().Str("op", opLogin).Str("role", roleOf(out.UserInfo)).Msg("login rejected by role gate")
		deps.EmitAudit(ctx, deps.Events.LoginRoleRejected, false, username, deps.Errors.RoleDenied, func() map[string]string {
			return map[string]string{"role": roleOf(out.UserInfo)}
		})
		return deps.loginFailed(ctx, username, Result{
			Error:      deps.Messages.RoleDenied,
			StatusCode: http.StatusForbidden,
			Err:        fmt.Errorf("%w: %s", deps.Errors.RoleDenied, opLogin),
		})
	}

	res := Result{
		Success:  true,
		Data:     resp.Body,
		Message:  orDefault(out.Message, deps.Messages.Login.Success),
		UserInfo: out.UserInfo,
	}

	// A success decided from description text alone carries no credentials.
	if out.Rule == normalize.RuleDescription {
		deps.MetricInc(deps.Metrics.LoginSuccess)
		return res
	}

	if out.MissingToken() {
		deps.MetricInc(deps.Metrics.LoginMissingToken)
		deps.Logger.Warn().Str("op", opLogin).Msg("login succeeded without a token")
	}
	if err := deps.Session.Establish(ctx, out.Token, out.UserInfo); err != nil {
		return deps.loginFailed(ctx, username, deps.storeFailure(opLogin, err))
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.Logger.Debug().Str("op", opLogin).Str("rule", out.Rule.String()).Str("token_path", out.TokenPath).Msg("session established")
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, username, nil, func() map[string]string {
		return map[string]string{"rule": out.Rule.String(), "token_path": out.TokenPath}
	})
	return res
}

func (d Deps) loginFailed(ctx context.Context, username string, res Result) Result {
	d.MetricInc(d.Metrics.LoginFailure)
	d.EmitAudit(ctx, d.Events.LoginFailure, false, username, res.Err, nil)
	return res
}

func roleOf(info map[string]any) string {
	s, _ := info["role_name"].(string)
	return s
}

// RunResetPassword asks the backend to reset the password of username. The
// response is classified like a login response, without the role gate and
// without touching the stored session.
func RunResetPassword(ctx context.Context, username string, deps Deps) Result {
	deps = deps.withDefaults()

	username = strings.TrimSpace(username)
	if username == "" {
		return deps.invalid(opResetPassword, &validate.Error{Field: "username", Code: validate.CodeUsernameRequired})
	}

	// The backend expects the bare username as a JSON string.
	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   deps.Endpoints.ResetPassword,
		JSON:   username,
	})
	if err != nil {
		return deps.transportFailure(opResetPassword, err)
	}

	out := normalize.Classify(resp.Body, username)
	deps.noteHeuristic(opResetPassword, out)

	var res Result
	switch out.Kind {
	case normalize.KindAmbiguous:
		return deps.ambiguous(opResetPassword, resp.Body)
	case normalize.KindFailure:
		res = Result{
			Error:      orDefault(out.Message, deps.Messages.ResetPassword.Failure),
			StatusCode: out.StatusCode,
			Err:        fmt.Errorf("%w: %s", deps.Errors.Rejected, opResetPassword),
		}
	default:
		res = Result{
			Success: true,
			Data:    resp.Body,
			Message: orDefault(out.Message, deps.Messages.ResetPassword.Success),
		}
		deps.MetricInc(deps.Metrics.PasswordReset)
	}

	deps.EmitAudit(ctx, deps.Events.PasswordReset, res.Success, username, res.Err, nil)
	return res
}
