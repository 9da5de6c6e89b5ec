package api

import (
	"errors"
	"reflect"
	"strings"
)

// Endpoints are paths relative to the base URL.
type Endpoints struct {
	SignIn           string
	SignInGoogle     string
	SignOut          string
	SignOutAll       string
	ResetPassword    string
	UpdatePassword   string
	Profile          string
	UpdateProfile    string
	UpdateAvatar     string
	RemoveAvatar     string
	MyAttendance     string
	AddAttendance    string
	RemoveAttendance string
	Classes          string
	ClassSchedule    string
	TimeSlot         string
}

// DefaultEndpoints returns the paths served by the HAST backend.
// SignInGoogle and SignOutAll are exposed by the backend but not used by
// the client.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SignIn:           "/api/auth/sign-in",
		SignInGoogle:     "/api/auth/sign-in-google",
		SignOut:          "/api/auth/sign-out",
		SignOutAll:       "/api/auth/sign-out-all-application",
		ResetPassword:    "/api/auth/reset-password",
		UpdatePassword:   "/api/auth/update-password",
		Profile:          "/api/user/profile",
		UpdateProfile:    "/api/user/update",
		UpdateAvatar:     "/api/user/update-avatar",
		RemoveAvatar:     "/api/user/remove-avatar",
		MyAttendance:     "/api/attendance/my-attendance",
		AddAttendance:    "/api/attendance/add",
		RemoveAttendance: "/api/attendance/remove",
		Classes:          "/api/class",
		ClassSchedule:    "/api/class/class-schedule-config",
		TimeSlot:         "/api/time-slot",
	}
}

// Validate checks that every endpoint is an absolute path.
func (e Endpoints) Validate() error {
	v := reflect.ValueOf(e)
	for i := 0; i < v.NumField(); i++ {
		p := v.Field(i).String()
		if !strings.HasPrefix(p, "/") {
			return errors.New("endpoint " + v.Type().Field(i).Name + " must start with /")
		}
	}
	return nil
}
