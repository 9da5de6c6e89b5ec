package flows

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hast-app/hastauth/internal/transport"
)

const (
	opAddAttendance    = "add_attendance"
	opRemoveAttendance = "remove_attendance"
	opMyAttendance     = "my_attendance"
)

// AttendanceFileName is the multipart filename of an attendance photo.
func AttendanceFileName(unixMillis int64) string {
	return fmt.Sprintf("attendance_%d.jpg", unixMillis)
}

// RunAddAttendance checks in for scheduleID with a photo. alias, when set,
// is passed through as fileAlias.
func RunAddAttendance(ctx context.Context, image io.Reader, scheduleID, alias string, deps Deps) Result {
	deps = deps.withDefaults()

	scheduleID = strings.TrimSpace(scheduleID)
	if scheduleID == "" {
		return deps.missing(opAddAttendance, "scheduleId", deps.Messages.Validation.ScheduleRequired)
	}
	if image == nil {
		return deps.missing(opAddAttendance, "image", deps.Messages.Validation.ImageRequired)
	}

	query := url.Values{"scheduleId": {scheduleID}}
	if alias != "" {
		query.Set("fileAlias", alias)
	}
	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   deps.Endpoints.AddAttendance,
		Query:  query,
		File: &transport.File{
			Field:       "file",
			Name:        AttendanceFileName(deps.Now().UnixMilli()),
			ContentType: ImageContentType,
			Content:     image,
		},
	})
	if err != nil {
		return deps.transportFailure(opAddAttendance, err)
	}

	res := deps.read(envelope{
		op:      opAddAttendance,
		text:    deps.Messages.AddAttendance,
		payload: dataPayload,
	}, resp.Body)
	if res.Success {
		deps.MetricInc(deps.Metrics.AttendanceAdded)
	}
	deps.EmitAudit(ctx, deps.Events.AttendanceAdded, res.Success, deps.currentUser(ctx), res.Err, func() map[string]string {
		return map[string]string{"schedule_id": scheduleID}
	})
	return res
}

// RunRemoveAttendance deletes one attendance record.
func RunRemoveAttendance(ctx context.Context, id string, deps Deps) Result {
	deps = deps.withDefaults()

	id = strings.TrimSpace(id)
	if id == "" {
		return deps.missing(opRemoveAttendance, "id", deps.Messages.Validation.IDRequired)
	}

	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   deps.Endpoints.RemoveAttendance + "/" + url.PathEscape(id),
	})
	if err != nil {
		return deps.transportFailure(opRemoveAttendance, err)
	}

	res := deps.read(envelope{
		op:      opRemoveAttendance,
		text:    deps.Messages.RemoveAttendance,
		payload: dataPayload,
	}, resp.Body)
	if res.Success {
		deps.MetricInc(deps.Metrics.AttendanceRemoved)
	}
	deps.EmitAudit(ctx, deps.Events.AttendanceRemoved, res.Success, deps.currentUser(ctx), res.Err, func() map[string]string {
		return map[string]string{"attendance_id": id}
	})
	return res
}

// RunGetMyAttendance lists the signed-in user's attendance records. A
// success without records yields an empty list.
func RunGetMyAttendance(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	resp, err := deps.API.Do(ctx, transport.Request{Method: http.MethodGet, Path: deps.Endpoints.MyAttendance})
	if err != nil {
		return deps.transportFailure(opMyAttendance, err)
	}
	return deps.read(envelope{
		op:         opMyAttendance,
		text:       deps.Messages.MyAttendance,
		payload:    listPayload,
		pagination: true,
	}, resp.Body)
}
