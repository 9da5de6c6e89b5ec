package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Body is a response body that decoded to a JSON object. Numbers are kept as
// json.Number.
type Body struct {
	fields map[string]any
	raw    []byte
}

// Parse decodes raw into a Body. ok is false when raw is not a single JSON
// object (empty, array, scalar, invalid JSON).
func Parse(raw []byte) (Body, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return Body{raw: raw}, false
	}
	if dec.More() {
		return Body{raw: raw}, false
	}
	return Body{fields: fields, raw: raw}, true
}

// Raw returns the bytes the body was parsed from.
func (b Body) Raw() []byte { return b.raw }

// Fields exposes the decoded object. Callers must not mutate it.
func (b Body) Fields() map[string]any { return b.fields }

// Has reports whether key is present, whatever its value.
func (b Body) Has(key string) bool {
	_, ok := b.fields[key]
	return ok
}

// SuccessTrue reports success === true.
func (b Body) SuccessTrue() bool {
	v, ok := b.fields["success"].(bool)
	return ok && v
}

// String returns a non-empty string field, or "".
func (b Body) String(key string) string {
	s, _ := b.fields[key].(string)
	return s
}

// FirstString returns the first non-empty string among keys.
func (b Body) FirstString(keys ...string) string {
	for _, k := range keys {
		if s := b.String(k); s != "" {
			return s
		}
	}
	return ""
}

// Object returns the field when it is a JSON object.
func (b Body) Object(key string) map[string]any {
	m, _ := b.fields[key].(map[string]any)
	return m
}

// Status returns the body's own status field when it is numeric.
func (b Body) Status() int {
	switch v := b.fields["status"].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

// Payload returns the first present, non-null field among keys re-encoded as
// JSON. ok is false when none is present.
func (b Body) Payload(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		v, present := b.fields[k]
		if !present || v == nil {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		return data, true
	}
	return nil, false
}

// Token search order. The first non-empty string wins.
var tokenPaths = [][2]string{
	{"", "token"},
	{"", "access_token"},
	{"data", "token"},
	{"data", "access_token"},
	{"data_set", "token"},
}

// Token returns the bearer token and the path it was found at.
func (b Body) Token() (token, path string) {
	for _, p := range tokenPaths {
		var s string
		if p[0] == "" {
			s = b.String(p[1])
		} else if obj := b.Object(p[0]); obj != nil {
			s, _ = obj[p[1]].(string)
		}
		if s != "" {
			if p[0] == "" {
				return s, p[1]
			}
			return s, p[0] + "." + p[1]
		}
	}
	return "", ""
}

// UserInfo returns the first JSON object among user, data and data_set.
// When none is present a minimal record holding username is synthesized.
func (b Body) UserInfo(username string) map[string]any {
	if m := b.userObject("user", "data", "data_set"); m != nil {
		return m
	}
	return map[string]any{"username": username}
}

func (b Body) userObject(keys ...string) map[string]any {
	for _, k := range keys {
		if m := b.Object(k); m != nil {
			out := make(map[string]any, len(m))
			for kk, vv := range m {
				out[kk] = vv
			}
			return out
		}
	}
	return nil
}
