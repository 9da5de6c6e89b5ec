package hastauth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hast-app/hastauth/internal/flows"
)

// Result is the uniform outcome of every Client operation. Success results
// carry Data and optionally Message; failure results carry Error and the
// optional diagnostic fields. Err holds a sentinel for [errors.Is] and is
// not serialized.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`

	Error         string `json:"error,omitempty"`
	StatusCode    int    `json:"statusCode,omitempty"`
	NetworkError  bool   `json:"networkError,omitempty"`
	Debug         string `json:"debug,omitempty"`
	OriginalError string `json:"originalError,omitempty"`

	UserInfo   UserInfo        `json:"userInfo,omitempty"`
	Pagination json.RawMessage `json:"pagination,omitempty"`

	Err error `json:"-"`
}

// DecodeData unmarshals Data into v. It fails on a failure Result or when
// Data is empty.
func (r Result) DecodeData(v any) error {
	if !r.Success {
		if r.Err != nil {
			return r.Err
		}
		return errors.New(r.Error)
	}
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return errors.New("result carries no data")
	}
	return json.Unmarshal(r.Data, v)
}

func toResult(r flows.Result) Result {
	return Result{
		Success:       r.Success,
		Data:          r.Data,
		Message:       r.Message,
		Error:         r.Error,
		StatusCode:    r.StatusCode,
		NetworkError:  r.NetworkError,
		Debug:         r.Debug,
		OriginalError: r.OriginalError,
		UserInfo:      r.UserInfo,
		Pagination:    r.Pagination,
		Err:           r.Err,
	}
}

// Image is a JPEG to upload. Reader takes precedence over Path.
type Image struct {
	Path   string
	Reader io.Reader
}

func (img Image) open() (io.Reader, func(), error) {
	if img.Reader != nil {
		return img.Reader, func() {}, nil
	}
	if img.Path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(img.Path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open image: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// ProfileUpdate is a partial profile change. Nil fields are not sent. Extra
// carries additional backend fields as-is.
type ProfileUpdate struct {
	FullName    *string
	Email       *string
	Phone       *string
	Gender      *string
	DateOfBirth *string
	Address     *string
	Extra       map[string]any
}

func (p ProfileUpdate) fields() map[string]any {
	out := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		out[k] = v
	}
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("full_name", p.FullName)
	set("email", p.Email)
	set("phone", p.Phone)
	set("gender", p.Gender)
	set("dob", p.DateOfBirth)
	set("address", p.Address)
	return out
}

// String returns a pointer to s, for building a [ProfileUpdate].
func String(s string) *string {
	return &s
}
