package session

import (
	"encoding/json"
	"strconv"
)

// Store keys for the two persisted credential entries.
const (
	KeyToken    = "authToken"
	KeyUserInfo = "userInfo"
)

// Session is the locally persisted login state. A non-empty Token means the
// client considers itself authenticated; there is no client-side expiry.
type Session struct {
	Token    string
	UserInfo UserInfo
}

// Authenticated reports whether a bearer token is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// UserInfo is the semi-structured user record returned by the backend at
// login. Only a handful of fields are read by the client; everything else is
// carried through untouched.
type UserInfo map[string]any

// Username returns the login name, accepting both spellings used by the backend.
func (u UserInfo) Username() string {
	if v := u.String("username"); v != "" {
		return v
	}
	return u.String("user_name")
}

func (u UserInfo) FullName() string { return u.String("full_name") }
func (u UserInfo) Email() string    { return u.String("email") }
func (u UserInfo) RoleName() string { return u.String("role_name") }

// IsTeacher reports the raw is_teacher flag: true, or any non-zero integer.
func (u UserInfo) IsTeacher() bool {
	return Truthy(u["is_teacher"])
}

// String returns the field as a string. Numbers are formatted; anything else
// yields "".
func (u UserInfo) String(key string) string {
	if u == nil {
		return ""
	}
	switch v := u[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// Merge returns a copy of u with the non-nil entries of patch applied.
func (u UserInfo) Merge(patch map[string]any) UserInfo {
	out := make(UserInfo, len(u)+len(patch))
	for k, v := range u {
		out[k] = v
	}
	for k, v := range patch {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy.
func (u UserInfo) Clone() UserInfo {
	if u == nil {
		return nil
	}
	return u.Merge(nil)
}

// Truthy reports whether v is a boolean true or a non-zero integer, the two
// flag encodings the backend uses.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		n, err := t.Int64()
		return err == nil && n != 0
	case float64:
		return t != 0 && t == float64(int64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return false
	}
}
