package hastauth

import (
	"context"

	"github.com/hast-app/hastauth/internal/flows"
)

// Login signs in with username and password. On success the token and the
// user record are persisted together and Data holds the whole response
// body. When the role gate is enabled, an explicitly successful login of an
// account that is not a teacher fails with status 403 and nothing is
// stored.
func (c *Client) Login(ctx context.Context, username, password string) Result {
	return toResult(flows.RunLogin(ctxOrBackground(ctx), username, password, c.deps))
}

// Logout signs out remotely and always clears the stored session. It fails
// only when the local clear fails.
func (c *Client) Logout(ctx context.Context) Result {
	return toResult(flows.RunLogout(ctxOrBackground(ctx), c.deps))
}

// ResetPassword asks the backend to reset the password of username. The
// stored session is not touched.
func (c *Client) ResetPassword(ctx context.Context, username string) Result {
	return toResult(flows.RunResetPassword(ctxOrBackground(ctx), username, c.deps))
}

// TestConnection probes the backend without credentials.
func (c *Client) TestConnection(ctx context.Context) Result {
	return toResult(flows.RunTestConnection(ctxOrBackground(ctx), c.deps))
}
