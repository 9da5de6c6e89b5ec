package hastauth

import (
	"context"
	"fmt"

	"github.com/hast-app/hastauth/internal/flows"
)

// GetProfile fetches the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) Result {
	return toResult(flows.RunGetProfile(ctxOrBackground(ctx), c.deps))
}

// UpdateProfile sends the non-nil fields of update. The phone number, when
// set, must hold 10 or 11 digits once separators are removed. On success the
// sent fields are merged into the stored user record and the merged record
// is returned in UserInfo.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) Result {
	return toResult(flows.RunUpdateProfile(ctxOrBackground(ctx), update.fields(), c.deps))
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) Result {
	return toResult(flows.RunChangePassword(ctxOrBackground(ctx), oldPassword, newPassword, confirmPassword, c.deps))
}

// UpdateAvatar uploads img as the new avatar.
func (c *Client) UpdateAvatar(ctx context.Context, img Image) Result {
	r, closeImage, err := img.open()
	if err != nil {
		return c.imageFailure("update_avatar", err)
	}
	defer closeImage()
	return toResult(flows.RunUpdateAvatar(ctxOrBackground(ctx), r, c.deps))
}

// RemoveAvatar deletes the current avatar.
func (c *Client) RemoveAvatar(ctx context.Context) Result {
	return toResult(flows.RunRemoveAvatar(ctxOrBackground(ctx), c.deps))
}

func (c *Client) imageFailure(op string, err error) Result {
	c.metrics.Inc(MetricInputRejected)
	c.logger.Warn().Str("op", op).Err(err).Msg("image not readable")
	return Result{
		Error:         c.deps.Messages.Request,
		OriginalError: err.Error(),
		Err:           fmt.Errorf("%w: %s: %v", ErrRequest, op, err),
	}
}
