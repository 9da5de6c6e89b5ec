package hastauth

import (
	"io"
	"time"

	internalaudit "github.com/hast-app/hastauth/internal/audit"
	"github.com/hast-app/hastauth/session"
	"github.com/rs/zerolog"
)

// UserInfo is the user record kept with the session.
type UserInfo = session.UserInfo

// Store is the credential key/value store a Client persists into. See the
// session package for the Redis, SQLite and in-memory implementations.
type Store = session.Store

// SessionInfo is a read-only view of the stored session, returned by
// [Client.SessionInfo]. Claim fields are decoded without signature
// verification and are empty when the token is not a JWT.
type SessionInfo struct {
	Authenticated bool     `json:"authenticated"`
	Username      string   `json:"username,omitempty"`
	FullName      string   `json:"fullName,omitempty"`
	Role          string   `json:"role,omitempty"`
	UserInfo      UserInfo `json:"userInfo,omitempty"`

	TokenIsJWT bool      `json:"tokenIsJwt"`
	Subject    string    `json:"subject,omitempty"`
	Issuer     string    `json:"issuer,omitempty"`
	IssuedAt   time.Time `json:"issuedAt,omitzero"`
	ExpiresAt  time.Time `json:"expiresAt,omitzero"`
	// Expired is informational; the client never refuses a stored token.
	Expired bool `json:"expired"`
}

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// ZerologSink is an [AuditSink] that logs each event through zerolog.
type ZerologSink = internalaudit.ZerologSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZerologSink creates a [ZerologSink] that logs to logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return internalaudit.NewZerologSink(logger)
}
