package flows

import (
	"context"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/validate"
)

const (
	opGetProfile     = "get_profile"
	opUpdateProfile  = "update_profile"
	opChangePassword = "change_password"
	opUpdateAvatar   = "update_avatar"
	opRemoveAvatar   = "remove_avatar"
)

// AvatarFileName is the multipart filename of an avatar upload.
const AvatarFileName = "avatar.jpg"

// ImageContentType is the content type sent for every image upload.
const ImageContentType = "image/jpeg"

// RunGetProfile fetches the signed-in user's profile.
func RunGetProfile(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	resp, err := deps.API.Do(ctx, transport.Request{Method: http.MethodGet, Path: deps.Endpoints.Profile})
	if err != nil {
		return deps.transportFailure(opGetProfile, err)
	}
	return deps.read(envelope{
		op:      opGetProfile,
		text:    deps.Messages.GetProfile,
		lenient: true,
		payload: dataOrSetPayload,
	}, resp.Body)
}

// RunUpdateProfile sends a partial profile. Recognized fields are checked
// and normalized first: full_name must not be blank, phone must hold 10 or
// 11 digits, gender becomes "1" or "2", dob must be YYYY-MM-DD. On success
// the sent fields are merged into the stored user record.
func RunUpdateProfile(ctx context.Context, fields map[string]any, deps Deps) Result {
	deps = deps.withDefaults()

	patch, err := normalizeProfile(fields)
	if err != nil {
		return deps.invalid(opUpdateProfile, err)
	}
	if len(patch) == 0 {
		return deps.missing(opUpdateProfile, "profile fields", deps.Messages.Validation.EmptyUpdate)
	}

	resp, err := deps.API.Do(ctx, transport.Request{Method: http.MethodPut, Path: deps.Endpoints.UpdateProfile, JSON: patch})
	if err != nil {
		return deps.transportFailure(opUpdateProfile, err)
	}

	res := deps.read(envelope{
		op:      opUpdateProfile,
		text:    deps.Messages.UpdateProfile,
		lenient: true,
		payload: dataOrSetPayload,
	}, resp.Body)
	if !res.Success {
		return res
	}

	// The backend already applied the change; a local merge failure is
	// logged, not reported.
	merged, err := deps.Session.MergeUserInfo(ctx, patch)
	if err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		deps.Logger.Warn().Str("op", opUpdateProfile).Err(err).Msg("stored user record not updated")
	} else {
		res.UserInfo = merged
	}

	deps.MetricInc(deps.Metrics.ProfileUpdated)
	deps.EmitAudit(ctx, deps.Events.ProfileUpdated, true, merged.Username(), nil, func() map[string]string {
		return map[string]string{"fields": strings.Join(slices.Sorted(maps.Keys(patch)), ",")}
	})
	return res
}

func normalizeProfile(fields map[string]any) (map[string]any, error) {
	patch := make(map[string]any, len(fields))
	for k, v := range fields {
		if v == nil {
			continue
		}
		s, isString := v.(string)
		switch k {
		case "full_name":
			if !isString {
				return nil, &validate.Error{Field: k, Code: validate.CodeFullNameRequired}
			}
			if err := validate.FullName(s); err != nil {
				return nil, err
			}
			patch[k] = strings.TrimSpace(s)
		case "phone":
			if !isString {
				return nil, &validate.Error{Field: k, Code: validate.CodePhoneInvalid}
			}
			s = strings.TrimSpace(s)
			if s != "" && !validate.Phone(s) {
				return nil, &validate.Error{Field: k, Code: validate.CodePhoneInvalid}
			}
			patch[k] = s
		case "gender":
			if !isString {
				return nil, &validate.Error{Field: k, Code: validate.CodeGenderInvalid}
			}
			g, err := validate.Gender(s)
			if err != nil {
				return nil, err
			}
			patch[k] = g
		case "dob":
			if !isString {
				return nil, &validate.Error{Field: k, Code: validate.CodeDateInvalid}
			}
			s = strings.TrimSpace(s)
			if s != "" {
				if err := validate.Date(s); err != nil {
					return nil, err
				}
			}
			patch[k] = s
		default:
			if isString {
				patch[k] = strings.TrimSpace(s)
			} else {
				patch[k] = v
			}
		}
	}
	return patch, nil
}

// RunChangePassword changes the signed-in user's password. All three
// values are required; whether new and confirm match is left to the
// backend.
func RunChangePassword(ctx context.Context, oldPassword, newPassword, confirm string, deps Deps) Result {
	deps = deps.withDefaults()

	switch {
	case oldPassword == "":
		return deps.invalid(opChangePassword, &validate.Error{Field: "old_password", Code: validate.CodeOldPasswordRequired})
	case newPassword == "":
		return deps.invalid(opChangePassword, &validate.Error{Field: "new_password", Code: validate.CodePasswordRequired})
	case confirm == "":
		return deps.invalid(opChangePassword, &validate.Error{Field: "confirm_new_password", Code: validate.CodePasswordRequired})
	}

	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   deps.Endpoints.UpdatePassword,
		JSON: map[string]string{
			"old_password":         oldPassword,
			"new_password":         newPassword,
			"confirm_new_password": confirm,
		},
	})
	if err != nil {
		return deps.transportFailure(opChangePassword, err)
	}

	res := deps.read(envelope{
		op:      opChangePassword,
		text:    deps.Messages.ChangePassword,
		lenient: true,
	}, resp.Body)
	// The lenient path would echo the body; a password change has no payload.
	res.Data = nil

	if res.Success {
		deps.MetricInc(deps.Metrics.PasswordChanged)
	}
	deps.EmitAudit(ctx, deps.Events.PasswordChanged, res.Success, deps.currentUser(ctx), res.Err, nil)
	return res
}

// RunUpdateAvatar uploads a new avatar image.
func RunUpdateAvatar(ctx context.Context, image io.Reader, deps Deps) Result {
	deps = deps.withDefaults()
	if image == nil {
		return deps.missing(opUpdateAvatar, "image", deps.Messages.Validation.ImageRequired)
	}

	resp, err := deps.API.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   deps.Endpoints.UpdateAvatar,
		File:   &transport.File{Field: "file", Name: AvatarFileName, ContentType: ImageContentType, Content: image},
	})
	if err != nil {
		return deps.transportFailure(opUpdateAvatar, err)
	}

	res := deps.read(envelope{
		op:      opUpdateAvatar,
		text:    deps.Messages.UpdateAvatar,
		lenient: true,
		payload: dataOrSetPayload,
	}, resp.Body)
	if res.Success {
		deps.MetricInc(deps.Metrics.AvatarUpdated)
	}
	deps.EmitAudit(ctx, deps.Events.AvatarUpdated, res.Success, deps.currentUser(ctx), res.Err, nil)
	return res
}

// RunRemoveAvatar deletes the current avatar.
func RunRemoveAvatar(ctx context.Context, deps Deps) Result {
	deps = deps.withDefaults()
	resp, err := deps.API.Do(ctx, transport.Request{Method: http.MethodDelete, Path: deps.Endpoints.RemoveAvatar})
	if err != nil {
		return deps.transportFailure(opRemoveAvatar, err)
	}

	res := deps.read(envelope{
		op:      opRemoveAvatar,
		text:    deps.Messages.RemoveAvatar,
		payload: dataPayload,
	}, resp.Body)
	if res.Success {
		deps.MetricInc(deps.Metrics.AvatarRemoved)
	}
	deps.EmitAudit(ctx, deps.Events.AvatarRemoved, res.Success, deps.currentUser(ctx), res.Err, nil)
	return res
}
