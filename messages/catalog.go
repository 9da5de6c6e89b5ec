package messages

import "fmt"

// Text is the default success and failure message of one operation. The
// backend's own description always takes precedence over either.
type Text struct {
	Success string
	Failure string
}

// Validation holds the messages for input rejected before any network call.
type Validation struct {
	UsernameRequired    string
	UsernameInvalid     string
	EmailInvalid        string
	PasswordRequired    string
	PasswordTooShort    string
	PasswordMismatch    string
	OldPasswordRequired string
	FullNameRequired    string
	PhoneInvalid        string
	GenderInvalid       string
	DateInvalid         string
	EmptyUpdate         string
	ImageRequired       string
	ScheduleRequired    string
	IDRequired          string
	ClassCodeRequired   string
}

// Catalog is the full set of user-facing texts.
type Catalog struct {
	Login            Text
	Logout           Text
	ResetPassword    Text
	Probe            Text
	GetProfile       Text
	UpdateProfile    Text
	ChangePassword   Text
	UpdateAvatar     Text
	RemoveAvatar     Text
	MyAttendance     Text
	AddAttendance    Text
	RemoveAttendance Text
	MyClasses        Text
	ClassSchedule    Text

	RoleDenied       string
	NotAuthenticated string
	// AmbiguousPrefix is followed by the raw response body.
	AmbiguousPrefix string
	StoreFailure    string

	Unauthorized string
	Forbidden    string
	NotFound     string
	ServerError  string
	// HTTPStatus is a format string taking the status code.
	HTTPStatus string
	Network    string
	Request    string

	Validation Validation
}

// Vietnamese is the default catalog, matching the backend's language.
func Vietnamese() Catalog {
	return Catalog{
		Login:            Text{Success: "Đăng nhập thành công", Failure: "Đăng nhập thất bại"},
		Logout:           Text{Success: "Đăng xuất thành công", Failure: "Không thể xóa phiên đăng nhập"},
		ResetPassword:    Text{Success: "Yêu cầu reset mật khẩu thành công", Failure: "Có lỗi xảy ra khi reset mật khẩu"},
		Probe:            Text{Success: "Kết nối thành công", Failure: "API trả về lỗi"},
		GetProfile:       Text{Success: "Lấy thông tin profile thành công", Failure: "Không thể lấy thông tin profile"},
		UpdateProfile:    Text{Success: "Cập nhật thông tin thành công", Failure: "Không thể cập nhật thông tin"},
		ChangePassword:   Text{Success: "Đổi mật khẩu thành công", Failure: "Không thể đổi mật khẩu"},
		UpdateAvatar:     Text{Success: "Cập nhật avatar thành công", Failure: "Không thể cập nhật avatar"},
		RemoveAvatar:     Text{Success: "Xóa avatar thành công", Failure: "Không thể xóa avatar"},
		MyAttendance:     Text{Success: "Lấy danh sách điểm danh thành công", Failure: "Không thể lấy danh sách điểm danh"},
		AddAttendance:    Text{Success: "Điểm danh thành công", Failure: "Không thể điểm danh"},
		RemoveAttendance: Text{Success: "Xóa điểm danh thành công", Failure: "Không thể xóa điểm danh"},
		MyClasses:        Text{Success: "Lấy danh sách lớp thành công", Failure: "Không thể lấy danh sách lớp"},
		ClassSchedule:    Text{Success: "Lấy lịch học thành công", Failure: "Không thể lấy lịch học"},

		RoleDenied:       "Chỉ giáo viên mới được phép đăng nhập ứng dụng mobile này.",
		NotAuthenticated: "Bạn chưa đăng nhập",
		AmbiguousPrefix:  "Response không rõ ràng. Data: ",
		StoreFailure:     "Không thể lưu thông tin đăng nhập",

		Unauthorized: "Tên đăng nhập hoặc mật khẩu không đúng",
		Forbidden:    "Tài khoản bị khóa hoặc không có quyền truy cập",
		NotFound:     "API endpoint không tồn tại",
		ServerError:  "Lỗi server nội bộ",
		HTTPStatus:   "HTTP %d",
		Network:      "Không thể kết nối đến server. Vui lòng kiểm tra kết nối mạng.",
		Request:      "Có lỗi xảy ra. Vui lòng thử lại.",

		Validation: Validation{
			UsernameRequired:    "Vui lòng nhập tên đăng nhập hoặc email",
			UsernameInvalid:     "Tên đăng nhập phải có ít nhất 3 ký tự và chỉ chứa chữ, số, dấu gạch dưới",
			EmailInvalid:        "Email không hợp lệ",
			PasswordRequired:    "Vui lòng nhập mật khẩu",
			PasswordTooShort:    "Mật khẩu phải có ít nhất 6 ký tự",
			PasswordMismatch:    "Mật khẩu xác nhận không khớp",
			OldPasswordRequired: "Vui lòng nhập mật khẩu hiện tại",
			FullNameRequired:    "Vui lòng nhập họ và tên",
			PhoneInvalid:        "Số điện thoại không hợp lệ",
			GenderInvalid:       "Giới tính không hợp lệ",
			DateInvalid:         "Ngày sinh phải có dạng YYYY-MM-DD",
			EmptyUpdate:         "Không có thông tin nào để cập nhật",
			ImageRequired:       "Vui lòng chọn ảnh",
			ScheduleRequired:    "Vui lòng chọn lịch học",
			IDRequired:          "Thiếu mã điểm danh",
			ClassCodeRequired:   "Thiếu mã lớp",
		},
	}
}

// English is an alternative catalog for operator tooling.
func English() Catalog {
	return Catalog{
		Login:            Text{Success: "Signed in", Failure: "Sign-in failed"},
		Logout:           Text{Success: "Signed out", Failure: "Could not clear the local session"},
		ResetPassword:    Text{Success: "Password reset requested", Failure: "Password reset failed"},
		Probe:            Text{Success: "Connected", Failure: "API returned an error"},
		GetProfile:       Text{Success: "Profile loaded", Failure: "Could not load profile"},
		UpdateProfile:    Text{Success: "Profile updated", Failure: "Could not update profile"},
		ChangePassword:   Text{Success: "Password changed", Failure: "Could not change password"},
		UpdateAvatar:     Text{Success: "Avatar updated", Failure: "Could not update avatar"},
		RemoveAvatar:     Text{Success: "Avatar removed", Failure: "Could not remove avatar"},
		MyAttendance:     Text{Success: "Attendance loaded", Failure: "Could not load attendance"},
		AddAttendance:    Text{Success: "Attendance recorded", Failure: "Could not record attendance"},
		RemoveAttendance: Text{Success: "Attendance removed", Failure: "Could not remove attendance"},
		MyClasses:        Text{Success: "Classes loaded", Failure: "Could not load classes"},
		ClassSchedule:    Text{Success: "Schedule loaded", Failure: "Could not load schedule"},

		RoleDenied:       "Only teachers may sign in to this application.",
		NotAuthenticated: "Not signed in",
		AmbiguousPrefix:  "Unrecognized response. Data: ",
		StoreFailure:     "Could not persist credentials",

		Unauthorized: "Invalid username or password",
		Forbidden:    "Account locked or access denied",
		NotFound:     "API endpoint does not exist",
		ServerError:  "Internal server error",
		HTTPStatus:   "HTTP %d",
		Network:      "Cannot reach the server. Check the network connection.",
		Request:      "Something went wrong. Please try again.",

		Validation: Validation{
			UsernameRequired:    "Enter a username or email",
			UsernameInvalid:     "Username needs at least 3 letters, digits or underscores",
			EmailInvalid:        "Invalid email",
			PasswordRequired:    "Enter a password",
			PasswordTooShort:    "Password needs at least 6 characters",
			PasswordMismatch:    "Passwords do not match",
			OldPasswordRequired: "Enter the current password",
			FullNameRequired:    "Enter a full name",
			PhoneInvalid:        "Invalid phone number",
			GenderInvalid:       "Invalid gender",
			DateInvalid:         "Date of birth must be YYYY-MM-DD",
			EmptyUpdate:         "Nothing to update",
			ImageRequired:       "Choose an image",
			ScheduleRequired:    "Choose a schedule",
			IDRequired:          "Missing attendance id",
			ClassCodeRequired:   "Missing class code",
		},
	}
}

// Status returns the fallback text for an HTTP status without a body message.
func (c Catalog) Status(code int) string {
	switch {
	case code == 401:
		return c.Unauthorized
	case code == 403:
		return c.Forbidden
	case code == 404:
		return c.NotFound
	case code >= 500:
		return c.ServerError
	default:
		return fmt.Sprintf(c.HTTPStatus, code)
	}
}

// Merge fills every empty field of c from base.
func (c Catalog) Merge(base Catalog) Catalog {
	fillText := func(dst *Text, src Text) {
		fill(&dst.Success, src.Success)
		fill(&dst.Failure, src.Failure)
	}
	fillText(&c.Login, base.Login)
	fillText(&c.Logout, base.Logout)
	fillText(&c.ResetPassword, base.ResetPassword)
	fillText(&c.Probe, base.Probe)
	fillText(&c.GetProfile, base.GetProfile)
	fillText(&c.UpdateProfile, base.UpdateProfile)
	fillText(&c.ChangePassword, base.ChangePassword)
	fillText(&c.UpdateAvatar, base.UpdateAvatar)
	fillText(&c.RemoveAvatar, base.RemoveAvatar)
	fillText(&c.MyAttendance, base.MyAttendance)
	fillText(&c.AddAttendance, base.AddAttendance)
	fillText(&c.RemoveAttendance, base.RemoveAttendance)
	fillText(&c.MyClasses, base.MyClasses)
	fillText(&c.ClassSchedule, base.ClassSchedule)

	for _, p := range [][2]*string{
		{&c.RoleDenied, &base.RoleDenied},
		{&c.NotAuthenticated, &base.NotAuthenticated},
		{&c.AmbiguousPrefix, &base.AmbiguousPrefix},
		{&c.StoreFailure, &base.StoreFailure},
		{&c.Unauthorized, &base.Unauthorized},
		{&c.Forbidden, &base.Forbidden},
		{&c.NotFound, &base.NotFound},
		{&c.ServerError, &base.ServerError},
		{&c.HTTPStatus, &base.HTTPStatus},
		{&c.Network, &base.Network},
		{&c.Request, &base.Request},
		{&c.Validation.UsernameRequired, &base.Validation.UsernameRequired},
		{&c.Validation.UsernameInvalid, &base.Validation.UsernameInvalid},
		{&c.Validation.EmailInvalid, &base.Validation.EmailInvalid},
		{&c.Validation.PasswordRequired, &base.Validation.PasswordRequired},
		{&c.Validation.PasswordTooShort, &base.Validation.PasswordTooShort},
		{&c.Validation.PasswordMismatch, &base.Validation.PasswordMismatch},
		{&c.Validation.OldPasswordRequired, &base.Validation.OldPasswordRequired},
		{&c.Validation.FullNameRequired, &base.Validation.FullNameRequired},
		{&c.Validation.PhoneInvalid, &base.Validation.PhoneInvalid},
		{&c.Validation.GenderInvalid, &base.Validation.GenderInvalid},
		{&c.Validation.DateInvalid, &base.Validation.DateInvalid},
		{&c.Validation.EmptyUpdate, &base.Validation.EmptyUpdate},
		{&c.Validation.ImageRequired, &base.Validation.ImageRequired},
		{&c.Validation.ScheduleRequired, &base.Validation.ScheduleRequired},
		{&c.Validation.IDRequired, &base.Validation.IDRequired},
		{&c.Validation.ClassCodeRequired, &base.Validation.ClassCodeRequired},
	} {
		fill(p[0], *p[1])
	}
	return c
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
