package flows

import (
	"context"
	"time"

	"github.com/hast-app/hastauth/api"
	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/messages"
	"github.com/hast-app/hastauth/permission"
	"github.com/hast-app/hastauth/session"
	"github.com/rs/zerolog"
)

// Sender is the transport a flow talks through.
type Sender interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// SessionStore is the subset of session.Keeper the flows need.
type SessionStore interface {
	UserInfo(ctx context.Context) (session.UserInfo, error)
	Establish(ctx context.Context, token string, info session.UserInfo) error
	MergeUserInfo(ctx context.Context, patch map[string]any) (session.UserInfo, error)
	Clear(ctx context.Context) error
}

// Metrics carries metric IDs incremented by the flows.
type Metrics struct {
	LoginSuccess            int
	LoginFailure            int
	LoginRoleRejected       int
	LoginMissingToken       int
	AmbiguousResponse       int
	HeuristicClassification int
	Logout                  int
	LogoutRemoteFailed      int
	NetworkError            int
	HTTPStatusError         int
	InputRejected           int
	StoreFailure            int
	PasswordReset           int
	PasswordChanged         int
	ProfileUpdated          int
	AvatarUpdated           int
	AvatarRemoved           int
	AttendanceAdded         int
	AttendanceRemoved       int
	ProbeSuccess            int
	ProbeFailure            int
}

// Events carries audit event names emitted by the flows.
type Events struct {
	LoginSuccess      string
	LoginFailure      string
	LoginRoleRejected string
	Logout            string
	PasswordReset     string
	PasswordChanged   string
	ProfileUpdated    string
	AvatarUpdated     string
	AvatarRemoved     string
	AttendanceAdded   string
	AttendanceRemoved string
}

// Errors carries host-level sentinel errors placed in Result.Err.
type Errors struct {
	Network          error
	Request          error
	HTTPStatus       error
	Unauthorized     error
	Rejected         error
	RoleDenied       error
	Ambiguous        error
	InvalidInput     error
	NotAuthenticated error
	Store            error
}

// Deps is everything a flow needs. The root client builds it once.
type Deps struct {
	// API carries the bearer token and the 401 hook. Probe carries neither.
	API   Sender
	Probe Sender

	Session SessionStore
	// Gate is the login role check. nil disables it.
	Gate *permission.Gate

	Endpoints api.Endpoints
	Messages  messages.Catalog
	Logger    zerolog.Logger
	Now       func() time.Time

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, username string, err error, metadata func() map[string]string)

	Metrics Metrics
	Events  Events
	Errors  Errors
}

func (d Deps) withDefaults() Deps {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MetricInc == nil {
		d.MetricInc = func(int) {}
	}
	if d.EmitAudit == nil {
		d.EmitAudit = func(context.Context, string, bool, string, error, func() map[string]string) {}
	}
	if d.Probe == nil {
		d.Probe = d.API
	}
	return d
}
