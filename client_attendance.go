package hastauth

import (
	"context"

	"github.com/hast-app/hastauth/internal/flows"
)

// AddAttendance checks in for scheduleID with a photo. alias is sent as
// fileAlias when non-empty.
func (c *Client) AddAttendance(ctx context.Context, img Image, scheduleID, alias string) Result {
	r, closeImage, err := img.open()
	if err != nil {
		return c.imageFailure("add_attendance", err)
	}
	defer closeImage()
	return toResult(flows.RunAddAttendance(ctxOrBackground(ctx), r, scheduleID, alias, c.deps))
}

// RemoveAttendance deletes the attendance record id.
func (c *Client) RemoveAttendance(ctx context.Context, id string) Result {
	return toResult(flows.RunRemoveAttendance(ctxOrBackground(ctx), id, c.deps))
}

// GetMyAttendance lists the signed-in user's attendance records. Data is
// always a JSON value, [] when the backend sends none; Pagination is copied
// from the response.
func (c *Client) GetMyAttendance(ctx context.Context) Result {
	return toResult(flows.RunGetMyAttendance(ctxOrBackground(ctx), c.deps))
}

// GetMyClasses lists the classes taught by the stored user.
func (c *Client) GetMyClasses(ctx context.Context) Result {
	return toResult(flows.RunGetMyClasses(ctxOrBackground(ctx), c.deps))
}

// GetClassSchedule fetches the schedule configuration of classCode.
func (c *Client) GetClassSchedule(ctx context.Context, classCode string) Result {
	return toResult(flows.RunGetClassSchedule(ctxOrBackground(ctx), classCode, c.deps))
}
