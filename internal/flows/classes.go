package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hast-app/hastauth/internal/transport"
)

const (
	opMyClasses     = "my_classes"
	opClassSchedule = "class_schedule"
)

var errNoUsername = errors.New("stored session has no username")

// RunGetMyClasses lists the classes taught by the stored user.
func RunGetMyClasses(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()

	teacher, err := deps.storedUsername(ctx)
	if err != nil {
		return deps.notAuthenticated(opMyClasses, err)
	}

	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   deps.Endpoints.Classes,
		Query:  url.Values{"filter[teacher_user_name]": {teacher}},
	})
	if err != nil {
		return deps.transportFailure(opMyClasses, err)
	}
	return deps.read(envelope{
		op:         opMyClasses,
		text:       deps.Messages.MyClasses,
		payload:    listPayload,
		pagination: true,
	}, resp.Body)
}

// RunGetClassSchedule fetches the schedule configuration of one class.
func RunGetClassSchedule(ctx context.Context, classCode string, deps Deps) Result {
	deps = deps.withDefaults()

	classCode = strings.TrimSpace(classCode)
	if classCode == "" {
		return deps.missing(opClassSchedule, "class code", deps.Messages.Validation.ClassCodeRequired)
	}

	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   deps.Endpoints.ClassSchedule + "/" + url.PathEscape(classCode),
	})
	if err != nil {
		return deps.transportFailure(opClassSchedule, err)
	}
	return deps.read(envelope{
		op:      opClassSchedule,
		text:    deps.Messages.ClassSchedule,
		payload: dataPayload,
	}, resp.Body)
}

// storedUsername prefers user_name, the key the class filter is keyed on.
func (d Deps) storedUsername(ctx context.Context) (string, error) {
	info, err := d.Session.UserInfo(ctx)
	if err != nil {
		return "", err
	}
	if name := info.String("user_name"); name != "" {
		return name, nil
	}
	if name := info.Username(); name != "" {
		return name, nil
	}
	return "", errNoUsername
}

func (d Deps) notAuthenticated(op string, cause error) Result {
	return Result{
		Error: d.Messages.NotAuthenticated,
		Err:   fmt.Errorf("%w: %s: %v", d.Errors.NotAuthenticated, op, cause),
	}
}
