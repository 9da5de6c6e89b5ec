package flows

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hast-app/hastauth/api"
	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/messages"
	"github.com/hast-app/hastauth/permission"
	"github.com/hast-app/hastauth/session"
	"github.com/rs/zerolog"
)

var testErrors = Errors{
	Network:          errors.New("network"),
	Request:          errors.New("request"),
	HTTPStatus:       errors.New("http status"),
	Unauthorized:     errors.New("unauthorized"),
	Rejected:         errors.New("rejected"),
	RoleDenied:       errors.New("role denied"),
	Ambiguous:        errors.New("ambiguous"),
	InvalidInput:     errors.New("invalid input"),
	NotAuthenticated: errors.New("not authenticated"),
	Store:            errors.New("store"),
}

var testMetrics = Metrics{
	LoginSuccess:            1,
	LoginFailure:            2,
	LoginRoleRejected:       3,
	LoginMissingToken:       4,
	AmbiguousResponse:       5,
	HeuristicClassification: 6,
	Logout:                  7,
	LogoutRemoteFailed:      8,
	NetworkError:            9,
	HTTPStatusError:         10,
	InputRejected:           11,
	StoreFailure:            12,
	ProfileUpdated:          13,
	ProbeSuccess:            14,
	ProbeFailure:            15,
	AttendanceAdded:         16,
}

// fakeSender records requests and answers every one with the same reply.
type fakeSender struct {
	mu      sync.Mutex
	reqs    []transport.Request
	uploads []string
	body    string
	err     error
}

func (f *fakeSender) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.File != nil {
		b, _ := io.ReadAll(req.File.Content)
		f.uploads = append(f.uploads, string(b))
	}
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &transport.Response{Status: 200, Body: []byte(f.body)}, nil
}

func (f *fakeSender) last(t *testing.T) transport.Request {
	t.Helper()
	if len(f.reqs) == 0 {
		t.Fatal("no request sent")
	}
	return f.reqs[len(f.reqs)-1]
}

type counters struct {
	mu sync.Mutex
	n  map[int]int
}

func (c *counters) inc(id int) {
	c.mu.Lock()
	c.n[id]++
	c.mu.Unlock()
}

func (c *counters) get(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[id]
}

type harness struct {
	deps    Deps
	send    *fakeSender
	keeper  *session.Keeper
	store   *session.MemoryStore
	metrics *counters
	events  []string
}

func newHarness(body string) *harness {
	h := &harness{
		send:    &fakeSender{body: body},
		store:   session.NewMemoryStore(),
		metrics: &counters{n: map[int]int{}},
	}
	h.keeper = session.NewKeeper(h.store)
	h.deps = Deps{
		API:       h.send,
		Session:   h.keeper,
		Gate:      permission.TeacherGate(),
		Endpoints: api.DefaultEndpoints(),
		Messages:  messages.Vietnamese(),
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return time.UnixMilli(1700000000123) },
		MetricInc: h.metrics.inc,
		EmitAudit: func(_ context.Context, event string, _ bool, _ string, _ error, _ func() map[string]string) {
			h.events = append(h.events, event)
		},
		Metrics: testMetrics,
		Events:  Events{LoginSuccess: "login_success", LoginFailure: "login_failure", LoginRoleRejected: "login_role_rejected", Logout: "logout"},
		Errors:  testErrors,
	}
	return h
}

func (h *harness) seed(t *testing.T, token string, info session.UserInfo) {
	t.Helper()
	if err := h.keeper.Establish(context.Background(), token, info); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func (h *harness) stored(t *testing.T) session.Session {
	t.Helper()
	s, err := h.keeper.Load(context.Background())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return s
}

func jsonOf(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestLoginExtractsTokenFromEveryLocation(t *testing.T) {
	bodies := map[string]string{
		"token":             `{"success":true,"token":"abc","data":{"is_teacher":true}}`,
		"access_token":      `{"success":true,"access_token":"abc","data":{"is_teacher":true}}`,
		"data.token":        `{"success":true,"data":{"token":"abc","is_teacher":true}}`,
		"data.access_token": `{"success":true,"data":{"access_token":"abc","is_teacher":1}}`,
		"data_set.token":    `{"success":true,"user":{"role_name":"Teacher"},"data_set":{"token":"abc"}}`,
	}
	for name, body := range bodies {
		h := newHarness(body)
		res := RunLogin(context.Background(), "alice", "secret", h.deps)
		if !res.Success {
			t.Fatalf("%s: expected success, got %+v", name, res)
		}
		if got := h.stored(t).Token; got != "abc" {
			t.Fatalf("%s: stored token=%q", name, got)
		}
		if h.metrics.get(testMetrics.LoginSuccess) != 1 {
			t.Fatalf("%s: login success not counted", name)
		}
	}
}

func TestLoginSendsCredentials(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"token":"abc","is_teacher":true}}`)
	RunLogin(context.Background(), "  alice ", "secret", h.deps)

	req := h.send.last(t)
	if req.Method != "POST" || req.Path != "/api/auth/sign-in" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if got := jsonOf(t, req.JSON); got != `{"user_name":"alice","password":"secret"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestLoginStoresUserRecordWithToken(t *testing.T) {
	h := newHarness(`{"success":true,"description":"Xin chào","data":{"token":"abc","is_teacher":true,"full_name":"Alice"}}`)
	res := RunLogin(context.Background(), "alice", "secret", h.deps)
	if !res.Success || res.Message != "Xin chào" {
		t.Fatalf("unexpected result %+v", res)
	}
	s := h.stored(t)
	if s.UserInfo.FullName() != "Alice" || res.UserInfo.FullName() != "Alice" {
		t.Fatalf("user record not stored: %v", s.UserInfo)
	}
	if string(res.Data) != `{"success":true,"description":"Xin chào","data":{"token":"abc","is_teacher":true,"full_name":"Alice"}}` {
		t.Fatalf("data must be the whole body, got %s", res.Data)
	}
}

func TestLoginRoleGateRejectsAndLeavesStoreUntouched(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"token":"abc","role_name":"student"}}`)
	h.seed(t, "previous", session.UserInfo{"username": "bob"})

	res := RunLogin(context.Background(), "alice", "secret", h.deps)
	if res.Success || res.StatusCode != 403 {
		t.Fatalf("expected 403 failure, got %+v", res)
	}
	if res.Error != messages.Vietnamese().RoleDenied {
		t.Fatalf("unexpected message %q", res.Error)
	}
	if !errors.Is(res.Err, testErrors.RoleDenied) {
		t.Fatalf("expected role denied sentinel, got %v", res.Err)
	}
	s := h.stored(t)
	if s.Token != "previous" || s.UserInfo.Username() != "bob" {
		t.Fatalf("store modified: %+v", s)
	}
	if h.metrics.get(testMetrics.LoginRoleRejected) != 1 || h.metrics.get(testMetrics.LoginFailure) != 1 {
		t.Fatal("role rejection not counted")
	}
}

func TestLoginWithoutGateAcceptsAnyRole(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"token":"abc","role_name":"student"}}`)
	h.deps.Gate = nil
	if res := RunLogin(context.Background(), "alice", "secret", h.deps); !res.Success {
		t.Fatalf("expected success with gate disabled, got %+v", res)
	}
}

func TestLoginExplicitFailureMessage(t *testing.T) {
	tests := []struct {
		body   string
		want   string
		status int
	}{
		{`{"success":false,"description":"Sai mật khẩu","error":"x","status":401}`, "Sai mật khẩu", 401},
		{`{"success":false,"error":"locked"}`, "locked", 0},
		{`{"success":"yes"}`, "Đăng nhập thất bại", 0},
	}
	for _, tt := range tests {
		h := newHarness(tt.body)
		res := RunLogin(context.Background(), "alice", "secret", h.deps)
		if res.Success || res.Error != tt.want || res.StatusCode != tt.status {
			t.Fatalf("body %s: got %+v", tt.body, res)
		}
		if !errors.Is(res.Err, testErrors.Rejected) {
			t.Fatalf("body %s: expected rejected sentinel, got %v", tt.body, res.Err)
		}
		if h.stored(t).Authenticated() {
			t.Fatalf("body %s: token stored on failure", tt.body)
		}
	}
}

func TestLoginBareTokenSkipsRoleGate(t *testing.T) {
	h := newHarness(`{"token":"legacy","user":{"role_name":"student"}}`)
	res := RunLogin(context.Background(), "alice", "secret", h.deps)
	if !res.Success {
		t.Fatalf("expected back-compat success, got %+v", res)
	}
	s := h.stored(t)
	if s.Token != "legacy" || s.UserInfo.RoleName() != "student" {
		t.Fatalf("unexpected stored session %+v", s)
	}
}

func TestLoginAmbiguousKeepsRawBody(t *testing.T) {
	raw := `{"status":"ok",  "items":[1,2]}`
	h := newHarness(raw)
	res := RunLogin(context.Background(), "alice", "secret", h.deps)
	if res.Success || res.Debug != raw {
		t.Fatalf("expected raw debug body, got %+v", res)
	}
	if res.Error != "Response không rõ ràng. Data: "+raw {
		t.Fatalf("unexpected message %q", res.Error)
	}
	if !errors.Is(res.Err, testErrors.Ambiguous) || h.metrics.get(testMetrics.AmbiguousResponse) != 1 {
		t.Fatalf("ambiguous response not reported: %v", res.Err)
	}
}

func TestLoginDescriptionHeuristicIsCounted(t *testing.T) {
	h := newHarness(`{"description":"Đăng nhập thành công"}`)
	res := RunLogin(context.Background(), "alice", "secret", h.deps)
	if !res.Success {
		t.Fatalf("expected heuristic success, got %+v", res)
	}
	if h.metrics.get(testMetrics.HeuristicClassification) != 1 {
		t.Fatal("heuristic decision not counted")
	}
	if h.stored(t).UserInfo != nil {
		t.Fatal("heuristic success must not write the store")
	}

	h = newHarness(`{"description":"Tài khoản không tồn tại"}`)
	res = RunLogin(context.Background(), "alice", "secret", h.deps)
	if res.Success || res.Error != "Tài khoản không tồn tại" {
		t.Fatalf("expected heuristic failure, got %+v", res)
	}
	if h.metrics.get(testMetrics.HeuristicClassification) != 1 {
		t.Fatal("heuristic failure not counted")
	}
}

func TestLoginWithoutTokenDropsStaleToken(t *testing.T) {
	h := newHarness(`{"success":true,"user":{"username":"alice","is_teacher":true}}`)
	h.seed(t, "stale", session.UserInfo{"username": "bob"})

	res := RunLogin(context.Background(), "alice", "secret", h.deps)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	s := h.stored(t)
	if s.Token != "" || s.UserInfo.Username() != "alice" {
		t.Fatalf("unexpected session %+v", s)
	}
	if h.metrics.get(testMetrics.LoginMissingToken) != 1 {
		t.Fatal("missing token not flagged")
	}
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	for _, in := range [][2]string{{"", "secret"}, {"   ", "secret"}, {"alice", ""}, {"alice", "  "}} {
		h := newHarness(`{}`)
		res := RunLogin(context.Background(), in[0], in[1], h.deps)
		if res.Success || !errors.Is(res.Err, testErrors.InvalidInput) {
			t.Fatalf("%q: expected invalid input, got %+v", in, res)
		}
		if len(h.send.reqs) != 0 {
			t.Fatalf("%q: request sent despite invalid input", in)
		}
	}
}

func TestTransportFailureMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		status   int
		network  bool
		sentinel error
	}{
		{"body description", &transport.Error{Kind: transport.KindStatus, Status: 400, Body: []byte(`{"description":"bad","message":"m"}`)}, "bad", 400, false, testErrors.HTTPStatus},
		{"body message", &transport.Error{Kind: transport.KindStatus, Status: 422, Body: []byte(`{"message":"m","error":"e"}`)}, "m", 422, false, testErrors.HTTPStatus},
		{"401 fallback", &transport.Error{Kind: transport.KindStatus, Status: 401, Body: []byte(`<html>`)}, "Tên đăng nhập hoặc mật khẩu không đúng", 401, false, testErrors.Unauthorized},
		{"500 fallback", &transport.Error{Kind: transport.KindStatus, Status: 502}, "Lỗi server nội bộ", 502, false, testErrors.HTTPStatus},
		{"other status", &transport.Error{Kind: transport.KindStatus, Status: 409}, "HTTP 409", 409, false, testErrors.HTTPStatus},
		{"network", &transport.Error{Kind: transport.KindNetwork, Err: errors.New("dial tcp")}, messages.Vietnamese().Network, 0, true, testErrors.Network},
		{"request", &transport.Error{Kind: transport.KindRequest, Err: errors.New("bad url")}, messages.Vietnamese().Request, 0, false, testErrors.Request},
	}
	for _, tt := range tests {
		h := newHarness("")
		h.send.err = tt.err
		res := RunGetProfile(context.Background(), h.deps)
		if res.Success || res.Error != tt.msg || res.StatusCode != tt.status || res.NetworkError != tt.network {
			t.Fatalf("%s: got %+v", tt.name, res)
		}
		if !errors.Is(res.Err, tt.sentinel) {
			t.Fatalf("%s: expected sentinel %v, got %v", tt.name, tt.sentinel, res.Err)
		}
	}

	h := newHarness("")
	h.send.err = &transport.Error{Kind: transport.KindStatus, Status: 401, Body: []byte(`<html>`)}
	if res := RunGetProfile(context.Background(), h.deps); res.Debug != "<html>" {
		t.Fatalf("status body not kept as debug: %q", res.Debug)
	}
	h.send.err = &transport.Error{Kind: transport.KindRequest, Err: errors.New("bad url")}
	if res := RunGetProfile(context.Background(), h.deps); res.OriginalError != "bad url" {
		t.Fatalf("original error not kept: %q", res.OriginalError)
	}
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	h := newHarness("")
	h.send.err = &transport.Error{Kind: transport.KindNetwork, Err: errors.New("offline")}
	h.seed(t, "abc", session.UserInfo{"username": "alice"})

	res := RunLogout(context.Background(), h.deps)
	if !res.Success {
		t.Fatalf("logout must succeed, got %+v", res)
	}
	s := h.stored(t)
	if s.Token != "" || s.UserInfo != nil {
		t.Fatalf("session not cleared: %+v", s)
	}
	if h.metrics.get(testMetrics.LogoutRemoteFailed) != 1 || h.metrics.get(testMetrics.Logout) != 1 {
		t.Fatal("logout metrics not recorded")
	}
}

func TestLogoutSurvivesCancelledContext(t *testing.T) {
	h := newHarness(`{}`)
	h.seed(t, "abc", session.UserInfo{"username": "alice"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if res := RunLogout(ctx, h.deps); !res.Success {
		t.Fatalf("logout must succeed, got %+v", res)
	}
	if h.stored(t).Authenticated() {
		t.Fatal("session not cleared")
	}
}

func TestResetPasswordSendsJSONStringAndKeepsStore(t *testing.T) {
	h := newHarness(`{"success":true,"description":"Đã gửi email"}`)
	h.seed(t, "abc", session.UserInfo{"username": "alice"})

	res := RunResetPassword(context.Background(), " alice ", h.deps)
	if !res.Success || res.Message != "Đã gửi email" {
		t.Fatalf("unexpected result %+v", res)
	}
	req := h.send.last(t)
	if req.Method != "PUT" || jsonOf(t, req.JSON) != `"alice"` {
		t.Fatalf("unexpected request %s %s", req.Method, jsonOf(t, req.JSON))
	}
	if h.stored(t).Token != "abc" {
		t.Fatal("reset password must not touch the store")
	}
}

func TestResetPasswordIgnoresRoleGate(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"role_name":"student"}}`)
	if res := RunResetPassword(context.Background(), "alice", h.deps); !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
}

func TestProfileEnvelope(t *testing.T) {
	tests := []struct {
		body string
		ok   bool
		data string
		msg  string
	}{
		{`{"success":true,"data":{"full_name":"A"}}`, true, `{"full_name":"A"}`, "Lấy thông tin profile thành công"},
		{`{"success":true,"data_set":{"full_name":"B"},"description":"ok"}`, true, `{"full_name":"B"}`, "ok"},
		{`{"full_name":"C"}`, true, `{"full_name":"C"}`, "Lấy thông tin profile thành công"},
		{`{"success":false}`, false, "", "Không thể lấy thông tin profile"},
	}
	for _, tt := range tests {
		h := newHarness(tt.body)
		res := RunGetProfile(context.Background(), h.deps)
		if res.Success != tt.ok || string(res.Data) != tt.data {
			t.Fatalf("body %s: got %+v", tt.body, res)
		}
		got := res.Message
		if !tt.ok {
			got = res.Error
		}
		if got != tt.msg {
			t.Fatalf("body %s: message %q want %q", tt.body, got, tt.msg)
		}
	}
}

func TestUpdateProfileRejectsBadPhoneBeforeNetwork(t *testing.T) {
	for _, phone := range []string{"123", "091234567890", "abc"} {
		h := newHarness(`{"success":true}`)
		res := RunUpdateProfile(context.Background(), map[string]any{"phone": phone}, h.deps)
		if res.Success || !errors.Is(res.Err, testErrors.InvalidInput) {
			t.Fatalf("phone %q: expected rejection, got %+v", phone, res)
		}
		if res.Error != "Số điện thoại không hợp lệ" {
			t.Fatalf("phone %q: unexpected message %q", phone, res.Error)
		}
		if len(h.send.reqs) != 0 {
			t.Fatalf("phone %q: request sent", phone)
		}
	}
}

func TestUpdateProfileNormalizesAndMerges(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"full_name":"Alice Nguyen"}}`)
	h.seed(t, "abc", session.UserInfo{"username": "alice", "email": "a@hast.vn"})

	res := RunUpdateProfile(context.Background(), map[string]any{
		"full_name": "  Alice Nguyen ",
		"phone":     "091-234-5678",
		"gender":    "Nữ",
		"dob":       "1990-01-02",
	}, h.deps)
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if got := jsonOf(t, h.send.last(t).JSON); got != `{"dob":"1990-01-02","full_name":"Alice Nguyen","gender":"2","phone":"091-234-5678"}` {
		t.Fatalf("unexpected body %s", got)
	}
	s := h.stored(t)
	if s.Token != "abc" || s.UserInfo.FullName() != "Alice Nguyen" || s.UserInfo.Email() != "a@hast.vn" || s.UserInfo.String("gender") != "2" {
		t.Fatalf("user record not merged: %+v", s)
	}
	if h.metrics.get(testMetrics.ProfileUpdated) != 1 {
		t.Fatal("profile update not counted")
	}
}

func TestUpdateProfileRejectsEmptyPatchAndBlankName(t *testing.T) {
	h := newHarness(`{"success":true}`)
	if res := RunUpdateProfile(context.Background(), map[string]any{}, h.deps); res.Success || !errors.Is(res.Err, testErrors.InvalidInput) {
		t.Fatalf("empty patch accepted: %+v", res)
	}
	if res := RunUpdateProfile(context.Background(), map[string]any{"full_name": "  "}, h.deps); res.Success {
		t.Fatalf("blank full name accepted: %+v", res)
	}
	if len(h.send.reqs) != 0 {
		t.Fatal("request sent for invalid input")
	}
}

func TestUpdateProfileFailureLeavesStore(t *testing.T) {
	h := newHarness(`{"success":false,"description":"Email đã tồn tại"}`)
	h.seed(t, "abc", session.UserInfo{"username": "alice", "email": "a@hast.vn"})

	res := RunUpdateProfile(context.Background(), map[string]any{"email": "b@hast.vn"}, h.deps)
	if res.Success || res.Error != "Email đã tồn tại" {
		t.Fatalf("unexpected result %+v", res)
	}
	if h.stored(t).UserInfo.Email() != "a@hast.vn" {
		t.Fatal("store changed on failure")
	}
}

func TestChangePasswordHasNoPayloadAndNoEqualityCheck(t *testing.T) {
	h := newHarness(`{"ok":1}`)
	res := RunChangePassword(context.Background(), "old", "new-one", "different", h.deps)
	if !res.Success || res.Data != nil || res.Message != "Đổi mật khẩu thành công" {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := jsonOf(t, h.send.last(t).JSON); got != `{"confirm_new_password":"different","new_password":"new-one","old_password":"old"}` {
		t.Fatalf("unexpected body %s", got)
	}

	h = newHarness(`{}`)
	if res := RunChangePassword(context.Background(), "", "a", "a", h.deps); res.Success || len(h.send.reqs) != 0 {
		t.Fatalf("missing old password accepted: %+v", res)
	}
}

func TestUpdateAvatarUploadsMultipart(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"avatar":"https://cdn/a.jpg"}}`)
	res := RunUpdateAvatar(context.Background(), strings.NewReader("JPEG"), h.deps)
	if !res.Success || string(res.Data) != `{"avatar":"https://cdn/a.jpg"}` {
		t.Fatalf("unexpected result %+v", res)
	}
	req := h.send.last(t)
	if req.Method != "PUT" || req.File == nil || req.File.Name != "avatar.jpg" || req.File.Field != "file" || req.File.ContentType != "image/jpeg" {
		t.Fatalf("unexpected upload %+v", req.File)
	}
	if h.send.uploads[0] != "JPEG" {
		t.Fatalf("unexpected content %q", h.send.uploads[0])
	}

	if res := RunUpdateAvatar(context.Background(), nil, h.deps); res.Success {
		t.Fatal("nil image accepted")
	}
}

func TestRemoveAvatarRequiresSuccessTrue(t *testing.T) {
	h := newHarness(`{"data":{}}`)
	res := RunRemoveAvatar(context.Background(), h.deps)
	if res.Success || res.Error != "Không thể xóa avatar" {
		t.Fatalf("expected strict failure, got %+v", res)
	}
	if h.send.last(t).Method != "DELETE" {
		t.Fatal("expected DELETE")
	}
}

func TestAddAttendance(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"id":"att-1"}}`)
	res := RunAddAttendance(context.Background(), strings.NewReader("PHOTO"), "42", "front door", h.deps)
	if !res.Success || string(res.Data) != `{"id":"att-1"}` || res.Message != "Điểm danh thành công" {
		t.Fatalf("unexpected result %+v", res)
	}
	req := h.send.last(t)
	if req.Method != "POST" || req.Path != "/api/attendance/add" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if req.Query.Get("scheduleId") != "42" || req.Query.Get("fileAlias") != "front door" {
		t.Fatalf("unexpected query %v", req.Query)
	}
	if req.File.Name != "attendance_1700000000123.jpg" {
		t.Fatalf("unexpected filename %q", req.File.Name)
	}
	if h.metrics.get(testMetrics.AttendanceAdded) != 1 {
		t.Fatal("attendance not counted")
	}

	h = newHarness(`{"success":true}`)
	RunAddAttendance(context.Background(), strings.NewReader("PHOTO"), "42", "", h.deps)
	if _, ok := h.send.last(t).Query["fileAlias"]; ok {
		t.Fatal("empty alias must not be sent")
	}
}

func TestAddAttendanceRequiresSchedule(t *testing.T) {
	h := newHarness(`{"success":true}`)
	res := RunAddAttendance(context.Background(), strings.NewReader("PHOTO"), " ", "", h.deps)
	if res.Success || !errors.Is(res.Err, testErrors.InvalidInput) || len(h.send.reqs) != 0 {
		t.Fatalf("missing schedule accepted: %+v", res)
	}
}

func TestRemoveAttendanceEscapesID(t *testing.T) {
	h := newHarness(`{"success":true}`)
	if res := RunRemoveAttendance(context.Background(), "a/b", h.deps); !res.Success {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := h.send.last(t).Path; got != "/api/attendance/remove/a%2Fb" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestMyAttendanceListAndPagination(t *testing.T) {
	h := newHarness(`{"success":true,"data_set":[{"id":1}],"pagination":{"page":1,"total":1}}`)
	res := RunGetMyAttendance(context.Background(), h.deps)
	if !res.Success || string(res.Data) != `[{"id":1}]` || string(res.Pagination) != `{"page":1,"total":1}` {
		t.Fatalf("unexpected result %+v", res)
	}

	h = newHarness(`{"success":true}`)
	res = RunGetMyAttendance(context.Background(), h.deps)
	if !res.Success || string(res.Data) != `[]` || res.Pagination != nil {
		t.Fatalf("expected empty list, got %+v", res)
	}

	h = newHarness(`[1,2]`)
	res = RunGetMyAttendance(context.Background(), h.deps)
	if res.Success || res.Debug != `[1,2]` {
		t.Fatalf("non-object body must be ambiguous, got %+v", res)
	}
}

func TestMyClassesFiltersByStoredUser(t *testing.T) {
	h := newHarness(`{"success":true,"data":[{"code":"CS101"}]}`)
	if res := RunGetMyClasses(context.Background(), h.deps); res.Success || !errors.Is(res.Err, testErrors.NotAuthenticated) {
		t.Fatalf("expected not authenticated, got %+v", res)
	}
	if len(h.send.reqs) != 0 {
		t.Fatal("request sent without a stored user")
	}

	h.seed(t, "abc", session.UserInfo{"user_name": "gv01", "username": "ignored"})
	res := RunGetMyClasses(context.Background(), h.deps)
	if !res.Success || string(res.Data) != `[{"code":"CS101"}]` {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := h.send.last(t).Query.Get("filter[teacher_user_name]"); got != "gv01" {
		t.Fatalf("unexpected filter %q", got)
	}
}

func TestClassSchedule(t *testing.T) {
	h := newHarness(`{"success":true,"data":{"slots":[]}}`)
	res := RunGetClassSchedule(context.Background(), "CS 101", h.deps)
	if !res.Success || string(res.Data) != `{"slots":[]}` {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := h.send.last(t).Path; got != "/api/class/class-schedule-config/CS%20101" {
		t.Fatalf("unexpected path %q", got)
	}
	if res := RunGetClassSchedule(context.Background(), "", h.deps); res.Success {
		t.Fatal("empty class code accepted")
	}
}

func TestConnectionUsesProbeSender(t *testing.T) {
	h := newHarness(`{}`)
	probe := &fakeSender{body: `{"success":true,"data":[]}`}
	h.deps.Probe = probe

	res := RunTestConnection(context.Background(), h.deps)
	if !res.Success || res.Message != "Kết nối thành công" || string(res.Data) != `{"success":true,"data":[]}` {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(h.send.reqs) != 0 || probe.last(t).Path != "/api/time-slot" {
		t.Fatal("probe must not use the API sender")
	}

	probe.body = `{"success":false}`
	if res := RunTestConnection(context.Background(), h.deps); res.Success || res.Error != "API trả về lỗi" {
		t.Fatalf("unexpected failure %+v", res)
	}
	if h.metrics.get(testMetrics.ProbeSuccess) != 1 || h.metrics.get(testMetrics.ProbeFailure) != 1 {
		t.Fatal("probe metrics not recorded")
	}
}
