package flows

import (
	"encoding/json"

	"github.com/hast-app/hastauth/session"
)

// Result is the flow-local operation outcome. The root package converts it
// to the public Result.
type Result struct {
	Success bool
	Data    json.RawMessage
	Message string

	Error         string
	StatusCode    int
	NetworkError  bool
	Debug         string
	OriginalError string

	UserInfo   session.UserInfo
	Pagination json.RawMessage

	Err error
}
