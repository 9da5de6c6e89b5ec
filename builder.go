package hastauth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	internalaudit "github.com/hast-app/hastauth/internal/audit"
	"github.com/hast-app/hastauth/internal/flows"
	internalmetrics "github.com/hast-app/hastauth/internal/metrics"
	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/messages"
	"github.com/hast-app/hastauth/middleware"
	"github.com/hast-app/hastauth/permission"
	"github.com/hast-app/hastauth/session"
	"github.com/rs/zerolog"
)

// Builder defines a public type used by hastauth APIs.
//
// A Builder is single use: Build may be called once.
type Builder struct {
	config Config

	store         session.Store
	logger        *zerolog.Logger
	httpTransport http.RoundTripper
	auditSink     AuditSink
	now           func() time.Time

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The config is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential store. Without one, credentials live in
// memory and are lost with the Client.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithLogger sets the client logger. The default discards everything.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithHTTPTransport sets the innermost round tripper under the middleware
// chain. The default is [http.DefaultTransport].
func (b *Builder) WithHTTPTransport(rt http.RoundTripper) *Builder {
	b.httpTransport = rt
	return b
}

// WithAuditSink sets the audit sink and enables audit.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled toggles the in-process counters read by [Client.MetricsSnapshot].
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms records every API round trip into [MetricRequestLatency]. It requires metrics.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides the time source used for upload file names.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and assembles the Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	}
	logger = logger.With().Str("component", "hastauth").Logger()

	store := b.store
	if store == nil {
		store = session.NewMemoryStore()
	}

	c := &Client{
		config:  cfg,
		keeper:  session.NewKeeper(store),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger,
	}

	if cfg.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			sink = NoOpSink{}
		}
		c.audit = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, sink)
	}

	apiRT := middleware.Chain(b.httpTransport,
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Latency(c.observeLatency),
		middleware.BearerToken(c.keeper),
		middleware.ClearOnUnauthorized(c.keeper, c.onSessionCleared),
	)
	apiTransport, err := transport.New(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Headers:   cfg.API.Headers,
	}, apiRT)
	if err != nil {
		c.audit.Close()
		return nil, fmt.Errorf("api transport: %w", err)
	}

	// The probe never carries credentials and never clears them.
	probeRT := middleware.Chain(b.httpTransport,
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Latency(c.observeLatency),
	)
	probeTransport, err := transport.New(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.ProbeTimeout,
		UserAgent: cfg.API.UserAgent,
		Headers:   cfg.API.Headers,
	}, probeRT)
	if err != nil {
		c.audit.Close()
		return nil, fmt.Errorf("probe transport: %w", err)
	}

	var gate *permission.Gate
	if cfg.RoleGate.Enabled {
		gate = permission.NewGate(cfg.RoleGate.FlagKeys, cfg.RoleGate.RoleKeys, cfg.RoleGate.RoleTokens)
	}

	c.deps = flows.Deps{
		API:       apiTransport,
		Probe:     probeTransport,
		Session:   c.keeper,
		Gate:      gate,
		Endpoints: cfg.Endpoints,
		Messages:  cfg.Messages.Merge(messages.Vietnamese()),
		Logger:    logger,
		Now:       b.now,
		MetricInc: func(id int) { c.metrics.Inc(MetricID(id)) },
		EmitAudit: c.emitAudit,
		Metrics:   flowMetrics(),
		Events:    flowEvents(),
		Errors:    flowErrors(),
	}

	return c, nil
}

func flowMetrics() flows.Metrics {
	return flows.Metrics{
		LoginSuccess:            int(internalmetrics.MetricLoginSuccess),
		LoginFailure:            int(internalmetrics.MetricLoginFailure),
		LoginRoleRejected:       int(internalmetrics.MetricLoginRoleRejected),
		LoginMissingToken:       int(internalmetrics.MetricLoginMissingToken),
		AmbiguousResponse:       int(internalmetrics.MetricAmbiguousResponse),
		HeuristicClassification: int(internalmetrics.MetricHeuristicClassification),
		Logout:                  int(internalmetrics.MetricLogout),
		LogoutRemoteFailed:      int(internalmetrics.MetricLogoutRemoteFailed),
		NetworkError:            int(internalmetrics.MetricNetworkError),
		HTTPStatusError:         int(internalmetrics.MetricHTTPStatusError),
		InputRejected:           int(internalmetrics.MetricInputRejected),
		StoreFailure:            int(internalmetrics.MetricStoreFailure),
		PasswordReset:           int(internalmetrics.MetricPasswordReset),
		PasswordChanged:         int(internalmetrics.MetricPasswordChanged),
		ProfileUpdated:          int(internalmetrics.MetricProfileUpdated),
		AvatarUpdated:           int(internalmetrics.MetricAvatarUpdated),
		AvatarRemoved:           int(internalmetrics.MetricAvatarRemoved),
		AttendanceAdded:         int(internalmetrics.MetricAttendanceAdded),
		AttendanceRemoved:       int(internalmetrics.MetricAttendanceRemoved),
		ProbeSuccess:            int(internalmetrics.MetricProbeSuccess),
		ProbeFailure:            int(internalmetrics.MetricProbeFailure),
	}
}

func flowEvents() flows.Events {
	return flows.Events{
		LoginSuccess:      auditEventLoginSuccess,
		LoginFailure:      auditEventLoginFailure,
		LoginRoleRejected: auditEventLoginRoleRejected,
		Logout:            auditEventLogout,
		PasswordReset:     auditEventPasswordReset,
		PasswordChanged:   auditEventPasswordChanged,
		ProfileUpdated:    auditEventProfileUpdated,
		AvatarUpdated:     auditEventAvatarUpdated,
		AvatarRemoved:     auditEventAvatarRemoved,
		AttendanceAdded:   auditEventAttendanceAdded,
		AttendanceRemoved: auditEventAttendanceRemoved,
	}
}

func flowErrors() flows.Errors {
	return flows.Errors{
		Network:          ErrNetwork,
		Request:          ErrRequest,
		HTTPStatus:       ErrHTTPStatus,
		Unauthorized:     ErrUnauthorized,
		Rejected:         ErrRejected,
		RoleDenied:       ErrRoleDenied,
		Ambiguous:        ErrAmbiguousResponse,
		InvalidInput:     ErrInvalidInput,
		NotAuthenticated: ErrNotAuthenticated,
		Store:            ErrStore,
	}
}
