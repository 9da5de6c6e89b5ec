package hastauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	internalaudit "github.com/hast-app/hastauth/internal/audit"
	"github.com/hast-app/hastauth/internal/flows"
	"github.com/hast-app/hastauth/jwt"
	"github.com/hast-app/hastauth/session"
	"github.com/rs/zerolog"
)

// Client is the session client for one HAST backend and one logical
// session. It is safe for concurrent use once built.
type Client struct {
	config  Config
	keeper  *session.Keeper
	metrics *Metrics
	audit   *internalaudit.Dispatcher
	logger  zerolog.Logger
	deps    flows.Deps
}

// Close flushes pending audit events. The credential store stays open; it
// belongs to the caller.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}

// BaseURL returns the backend the client talks to.
func (c *Client) BaseURL() string {
	return c.config.API.BaseURL
}

// MetricsSnapshot returns a copy of the in-process counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return NewMetrics(MetricsConfig{}).Snapshot()
	}
	return c.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to backpressure.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// StoredToken returns the persisted bearer token, or "" when signed out.
func (c *Client) StoredToken(ctx context.Context) (string, error) {
	token, err := c.keeper.Token(ctxOrBackground(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	return token, nil
}

// StoredUserInfo returns the persisted user record, or nil when signed out.
func (c *Client) StoredUserInfo(ctx context.Context) (UserInfo, error) {
	info, err := c.keeper.UserInfo(ctxOrBackground(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return info, nil
}

// IsAuthenticated reports whether a token is stored. The token itself is not
// checked; an unreadable store reads as signed out.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	token, err := c.StoredToken(ctx)
	return err == nil && token != ""
}

// SessionInfo describes the stored session for diagnostics.
func (c *Client) SessionInfo(ctx context.Context) (SessionInfo, error) {
	s, err := c.keeper.Load(ctxOrBackground(ctx))
	if err != nil {
		return SessionInfo{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	info := SessionInfo{
		Authenticated: s.Authenticated(),
		UserInfo:      s.UserInfo,
		Username:      s.UserInfo.Username(),
		FullName:      s.UserInfo.FullName(),
		Role:          s.UserInfo.RoleName(),
	}
	if !s.Authenticated() {
		return info, nil
	}

	claims, err := jwt.Inspect(s.Token)
	if errors.Is(err, jwt.ErrNotJWT) {
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.TokenIsJWT = true
	info.Subject = claims.Subject
	info.Issuer = claims.Issuer
	info.IssuedAt = claims.IssuedAt
	info.ExpiresAt = claims.ExpiresAt
	info.Expired = claims.Expired(time.Now())
	return info, nil
}

func (c *Client) observeLatency(d time.Duration) {
	c.metrics.Observe(MetricRequestLatency, d)
}

// onSessionCleared runs after the 401 hook removed the stored session.
func (c *Client) onSessionCleared(r *http.Request, err error) {
	c.metrics.Inc(MetricSessionCleared)
	if err != nil {
		c.logger.Error().Err(err).Str("path", r.URL.Path).Msg("session clear after 401 failed")
	} else {
		c.logger.Warn().Str("path", r.URL.Path).Msg("session cleared after 401")
	}

	var auditErr error
	if err != nil {
		auditErr = fmt.Errorf("%w: %v", ErrStore, err)
	}
	c.emitAudit(r.Context(), auditEventSessionCleared, err == nil, "", auditErr, func() map[string]string {
		return map[string]string{"path": r.URL.Path}
	})
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
