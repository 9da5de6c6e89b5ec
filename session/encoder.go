package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUserInfoCorrupt is returned when the stored userInfo entry is not a JSON object.
var ErrUserInfoCorrupt = errors.New("stored user info corrupt")

// EncodeUserInfo serializes u to the JSON text kept in the store. A nil
// record encodes as "{}".
func EncodeUserInfo(u UserInfo) (string, error) {
	if u == nil {
		return "{}", nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user info: %w", err)
	}
	return string(data), nil
}

// DecodeUserInfo parses the stored JSON text. Numbers are kept as
// json.Number so integer flags survive the round trip unchanged.
func DecodeUserInfo(raw string) (UserInfo, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoCorrupt, err)
	}
	if out == nil {
		return nil, ErrUserInfoCorrupt
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrUserInfoCorrupt)
	}
	return UserInfo(out), nil
}
