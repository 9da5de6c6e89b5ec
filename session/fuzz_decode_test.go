package session

import (
	"testing"
)

// FuzzDecodeUserInfo feeds arbitrary text to the userInfo decoder.
// Goal: no panics; anything accepted must re-encode and decode again.
func FuzzDecodeUserInfo(f *testing.F) {
	seed, err := EncodeUserInfo(UserInfo{"user_name": "gv01", "is_teacher": 1, "role_name": "Giáo viên"})
	if err == nil {
		f.Add(seed)
	}
	f.Add("")
	f.Add("{}")
	f.Add("null")
	f.Add("[1,2]")
	f.Add(`{"a":1}{"b":2}`)
	f.Add(`{"nested":{"x":[true,null,1.5]}}`)
	f.Add("{")

	f.Fuzz(func(t *testing.T, input string) {
		info, err := DecodeUserInfo(input)
		if err != nil {
			return
		}
		if info == nil {
			t.Fatal("DecodeUserInfo returned nil record without error")
		}
		again, err := EncodeUserInfo(info)
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		if _, err := DecodeUserInfo(again); err != nil {
			t.Fatalf("decode of re-encoded record failed: %v", err)
		}
	})
}
