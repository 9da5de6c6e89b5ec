package flows

import (
	"encoding/json"
	"fmt"

	"github.com/hast-app/hastauth/internal/normalize"
	"github.com/hast-app/hastauth/messages"
)

// envelope describes how one operation reads the backend's success wrapper.
type envelope struct {
	op   string
	text messages.Text
	// lenient treats a body without a success field as success carrying the
	// whole body. Otherwise success must be literally true.
	lenient bool
	payload func(normalize.Body) json.RawMessage
	// pagination copies the body's pagination field.
	pagination bool
}

func (d Deps) read(env envelope, raw []byte) Result {
	body, ok := normalize.Parse(raw)
	if !ok {
		return d.ambiguous(env.op, raw)
	}

	if env.lenient && !body.Has("success") {
		return Result{
			Success: true,
			Data:    json.RawMessage(raw),
			Message: orDefault(body.String("description"), env.text.Success),
		}
	}

	if !body.SuccessTrue() {
		return Result{
			Error:      orDefault(body.String("description"), env.text.Failure),
			StatusCode: body.Status(),
			Err:        fmt.Errorf("%w: %s", d.Errors.Rejected, env.op),
		}
	}

	res := Result{
		Success: true,
		Message: orDefault(body.String("description"), env.text.Success),
	}
	if env.payload != nil {
		res.Data = env.payload(body)
	}
	if env.pagination {
		res.Pagination, _ = body.Payload("pagination")
	}
	return res
}

func dataPayload(b normalize.Body) json.RawMessage {
	p, _ := b.Payload("data")
	return p
}

func dataOrSetPayload(b normalize.Body) json.RawMessage {
	p, _ := b.Payload("data", "data_set")
	return p
}

var emptyList = json.RawMessage(`[]`)

func listPayload(b normalize.Body) json.RawMessage {
	if p, ok := b.Payload("data", "data_set"); ok {
		return p
	}
	return emptyList
}

func wholeBody(b normalize.Body) json.RawMessage {
	return json.RawMessage(b.Raw())
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
