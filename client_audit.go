package hastauth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventLoginRoleRejected = "login_role_rejected"
	auditEventLogout            = "logout"
	auditEventSessionCleared    = "session_cleared"
	auditEventPasswordReset     = "password_reset_request"
	auditEventPasswordChanged   = "password_change"
	auditEventProfileUpdated    = "profile_update"
	auditEventAvatarUpdated     = "avatar_update"
	auditEventAvatarRemoved     = "avatar_remove"
	auditEventAttendanceAdded   = "attendance_add"
	auditEventAttendanceRemoved = "attendance_remove"
)

// AuditErrorCode defines a public type used by hastauth APIs.
//
// AuditErrorCode values are the stable error field of an [AuditEvent].
type AuditErrorCode string

const (
	auditErrNetwork          AuditErrorCode = "network"
	auditErrRequest          AuditErrorCode = "request"
	auditErrUnauthorized     AuditErrorCode = "unauthorized"
	auditErrHTTPStatus       AuditErrorCode = "http_status"
	auditErrRejected         AuditErrorCode = "rejected"
	auditErrRoleDenied       AuditErrorCode = "role_denied"
	auditErrAmbiguous        AuditErrorCode = "ambiguous_response"
	auditErrInvalidInput     AuditErrorCode = "invalid_input"
	auditErrNotAuthenticated AuditErrorCode = "not_authenticated"
	auditErrStore            AuditErrorCode = "store_failure"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	username string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if device := deviceFromContext(ctx); device != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["device"] = device
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Username:  username,
		BaseURL:   c.config.API.BaseURL,
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return auditErrNetwork
	case errors.Is(err, ErrRequest):
		return auditErrRequest
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrHTTPStatus):
		return auditErrHTTPStatus
	case errors.Is(err, ErrRoleDenied):
		return auditErrRoleDenied
	case errors.Is(err, ErrRejected):
		return auditErrRejected
	case errors.Is(err, ErrAmbiguousResponse):
		return auditErrAmbiguous
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	case errors.Is(err, ErrStore):
		return auditErrStore
	default:
		return auditErrInternal
	}
}
