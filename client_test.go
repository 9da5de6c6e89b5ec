package hastauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hast-app/hastauth/internal/hasttest"
	"github.com/hast-app/hastauth/session"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T, srv *hasttest.Server, configure ...func(*Builder)) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Debug = false
	b := New().WithConfig(cfg).WithMetricsEnabled(true)
	for _, fn := range configure {
		fn(b)
	}

	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func startServer(t *testing.T) *hasttest.Server {
	t.Helper()
	srv := hasttest.New()
	t.Cleanup(srv.Close)
	return srv
}

func mustLogin(t *testing.T, c *Client) {
	t.Helper()
	res := c.Login(context.Background(), "gv001", "secret123")
	if !res.Success {
		t.Fatalf("login failed: %+v", res)
	}
}

func TestLoginPersistsSessionAndAttachesBearer(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	res := c.Login(ctx, "  gv001 ", "secret123")
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Message != "Đăng nhập thành công" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if res.UserInfo.Username() != "gv001" {
		t.Fatalf("unexpected user info %v", res.UserInfo)
	}

	token, err := c.StoredToken(ctx)
	if err != nil || token == "" {
		t.Fatalf("token not stored: %q %v", token, err)
	}
	info, err := c.StoredUserInfo(ctx)
	if err != nil || info.FullName() != "Nguyễn Văn A" {
		t.Fatalf("user info not stored: %v %v", info, err)
	}

	signIn, _ := srv.LastRequest("/api/auth/sign-in")
	var body map[string]string
	if err := json.Unmarshal(signIn.Body, &body); err != nil {
		t.Fatalf("decode sign-in body: %v", err)
	}
	if body["user_name"] != "gv001" || body["password"] != "secret123" {
		t.Fatalf("unexpected sign-in body %v", body)
	}
	if signIn.Authorization != "" {
		t.Fatal("sign-in sent without a stored token must carry no bearer")
	}

	if res := c.GetProfile(ctx); !res.Success {
		t.Fatalf("profile failed: %+v", res)
	}
	profile, _ := srv.LastRequest("/api/user/profile")
	if profile.Authorization != "Bearer "+token {
		t.Fatalf("expected bearer header, got %q", profile.Authorization)
	}
	if got := c.MetricsSnapshot().Counters[MetricLoginSuccess]; got != 1 {
		t.Fatalf("expected one login success, got %d", got)
	}
}

func TestLoginRoleGateRejectsStudent(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	res := c.Login(ctx, "sv001", "secret123")
	if res.Success {
		t.Fatal("student login must be rejected")
	}
	if res.StatusCode != http.StatusForbidden || !errors.Is(res.Err, ErrRoleDenied) {
		t.Fatalf("expected 403 role denial, got %+v", res)
	}
	if res.Error == "" {
		t.Fatal("expected denial message")
	}
	if c.IsAuthenticated(ctx) {
		t.Fatal("rejected login must not persist a session")
	}
	if got := c.MetricsSnapshot().Counters[MetricLoginRoleRejected]; got != 1 {
		t.Fatalf("expected one role rejection, got %d", got)
	}
}

func TestLoginRoleGateDisabled(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv, func(b *Builder) {
		b.config.RoleGate.Enabled = false
	})

	if res := c.Login(context.Background(), "sv001", "secret123"); !res.Success {
		t.Fatalf("expected success with gate disabled, got %+v", res)
	}
	if !c.IsAuthenticated(context.Background()) {
		t.Fatal("session not stored")
	}
}

func TestLoginWrongPasswordUsesServerDescription(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)

	res := c.Login(context.Background(), "gv001", "wrong")
	if res.Success || !errors.Is(res.Err, ErrRejected) {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if res.Error != "Tên đăng nhập hoặc mật khẩu không đúng" || res.StatusCode != 401 {
		t.Fatalf("unexpected failure fields %+v", res)
	}
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)

	for _, tc := range []struct{ user, pass string }{{"", "x"}, {"   ", "x"}, {"gv001", ""}, {"gv001", "  "}} {
		res := c.Login(context.Background(), tc.user, tc.pass)
		if res.Success || !errors.Is(res.Err, ErrInvalidInput) {
			t.Fatalf("Login(%q,%q) expected invalid input, got %+v", tc.user, tc.pass, res)
		}
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestLoginAmbiguousResponseKeepsRawBody(t *testing.T) {
	srv := startServer(t)
	srv.Reply("/api/auth/sign-in", http.StatusOK, `{"ok":1}`)
	c := newTestClient(t, srv)

	res := c.Login(context.Background(), "gv001", "secret123")
	if res.Success || !errors.Is(res.Err, ErrAmbiguousResponse) {
		t.Fatalf("expected ambiguous failure, got %+v", res)
	}
	if res.Debug != `{"ok":1}` || !strings.HasSuffix(res.Error, `{"ok":1}`) {
		t.Fatalf("raw body not preserved: %+v", res)
	}
}

func TestLoginTokenOnlyBodyIsSuccess(t *testing.T) {
	srv := startServer(t)
	srv.Reply("/api/auth/sign-in", http.StatusOK, `{"access_token":"tok-1"}`)
	c := newTestClient(t, srv)
	ctx := context.Background()

	res := c.Login(ctx, "anyone", "pw")
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	token, _ := c.StoredToken(ctx)
	if token != "tok-1" {
		t.Fatalf("expected tok-1, got %q", token)
	}
	if got := c.MetricsSnapshot().Counters[MetricLoginSuccess]; got != 1 {
		t.Fatalf("expected one login success, got %d", got)
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	srv := startServer(t)
	sink := NewChannelSink(32)
	c := newTestClient(t, srv, func(b *Builder) { b.WithAuditSink(sink) })
	ctx := context.Background()
	mustLogin(t, c)

	srv.RevokeAll()
	res := c.GetProfile(ctx)
	if res.Success || res.StatusCode != http.StatusUnauthorized || !errors.Is(res.Err, ErrUnauthorized) {
		t.Fatalf("expected 401 failure, got %+v", res)
	}
	if res.Error != "Phiên đăng nhập đã hết hạn" {
		t.Fatalf("expected server description, got %q", res.Error)
	}
	if c.IsAuthenticated(ctx) {
		t.Fatal("401 must clear the stored token")
	}
	if info, _ := c.StoredUserInfo(ctx); info != nil {
		t.Fatalf("401 must clear the user record, got %v", info)
	}
	if got := c.MetricsSnapshot().Counters[MetricSessionCleared]; got != 1 {
		t.Fatalf("expected one session clear, got %d", got)
	}

	c.Close()
	found := false
	for len(sink.Events()) > 0 {
		if ev := <-sink.Events(); ev.EventType == auditEventSessionCleared {
			found = ev.Success && ev.Metadata["path"] == "/api/user/profile"
		}
	}
	if !found {
		t.Fatal("expected session_cleared audit event")
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()
	mustLogin(t, c)

	srv.Reply("/api/auth/sign-out", http.StatusInternalServerError, `{"success":false}`)
	res := c.Logout(ctx)
	if !res.Success {
		t.Fatalf("logout must succeed locally, got %+v", res)
	}
	if c.IsAuthenticated(ctx) {
		t.Fatal("logout must clear the session")
	}
	if got := c.MetricsSnapshot().Counters[MetricLogoutRemoteFailed]; got != 1 {
		t.Fatalf("expected remote failure counted, got %d", got)
	}
}

func TestNetworkFailureIsFlagged(t *testing.T) {
	srv := hasttest.New()
	c := newTestClient(t, srv)
	srv.Close()

	res := c.GetMyAttendance(context.Background())
	if res.Success || !res.NetworkError || !errors.Is(res.Err, ErrNetwork) {
		t.Fatalf("expected network failure, got %+v", res)
	}
	if res.Error == "" {
		t.Fatal("expected a message")
	}
}

func TestHTTPStatusWithoutBodyMessage(t *testing.T) {
	srv := startServer(t)
	srv.Reply("/api/user/profile", http.StatusBadGateway, `<html>bad gateway</html>`)
	c := newTestClient(t, srv)

	res := c.GetProfile(context.Background())
	if res.Success || res.StatusCode != http.StatusBadGateway || !errors.Is(res.Err, ErrHTTPStatus) {
		t.Fatalf("expected status failure, got %+v", res)
	}
	if res.Debug != `<html>bad gateway</html>` {
		t.Fatalf("expected body in Debug, got %q", res.Debug)
	}
}

func TestTestConnectionSendsNoToken(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	mustLogin(t, c)

	res := c.TestConnection(context.Background())
	if !res.Success {
		t.Fatalf("probe failed: %+v", res)
	}
	probe, ok := srv.LastRequest("/api/time-slot")
	if !ok || probe.Authorization != "" {
		t.Fatalf("probe must not carry credentials: %+v", probe)
	}
}

func TestProbeUnauthorizedKeepsSession(t *testing.T) {
	srv := startServer(t)
	srv.Reply("/api/time-slot", http.StatusUnauthorized, `{"success":false}`)
	c := newTestClient(t, srv)
	mustLogin(t, c)

	if res := c.TestConnection(context.Background()); res.Success {
		t.Fatal("expected probe failure")
	}
	if !c.IsAuthenticated(context.Background()) {
		t.Fatal("probe 401 must not clear the session")
	}
}

func TestResetPasswordSendsJSONString(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)

	res := c.ResetPassword(context.Background(), "gv001")
	if !res.Success || res.Message != "Mật khẩu mới đã được gửi tới email" {
		t.Fatalf("unexpected result %+v", res)
	}
	req, _ := srv.LastRequest("/api/auth/reset-password")
	if req.Method != http.MethodPut || strings.TrimSpace(string(req.Body)) != `"gv001"` {
		t.Fatalf("unexpected reset request %s %s", req.Method, req.Body)
	}

	res = c.ResetPassword(context.Background(), "nobody")
	if res.Success || res.Error != "Không tìm thấy người dùng" {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if c.IsAuthenticated(context.Background()) {
		t.Fatal("reset must not touch the session")
	}
}

func TestUpdateProfileMergesStoredUser(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()
	mustLogin(t, c)

	res := c.UpdateProfile(ctx, ProfileUpdate{
		FullName: String("  Nguyễn Văn C "),
		Phone:    String("090-123-4567"),
		Gender:   String("Nam"),
	})
	if !res.Success {
		t.Fatalf("update failed: %+v", res)
	}

	info, _ := c.StoredUserInfo(ctx)
	if info.FullName() != "Nguyễn Văn C" || info.String("gender") != "1" || info.String("phone") != "090-123-4567" {
		t.Fatalf("stored user not merged: %v", info)
	}
	if info.Username() != "gv001" {
		t.Fatal("merge must keep untouched fields")
	}
	acc, _ := srv.Account("gv001")
	if acc.Info["full_name"] != "Nguyễn Văn C" {
		t.Fatalf("server not updated: %v", acc.Info)
	}
}

func TestUpdateProfileRejectsBadPhone(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	mustLogin(t, c)
	before := len(srv.Requests())

	res := c.UpdateProfile(context.Background(), ProfileUpdate{Phone: String("12345")})
	if res.Success || !errors.Is(res.Err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %+v", res)
	}
	if len(srv.Requests()) != before {
		t.Fatal("invalid phone must not reach the server")
	}
}

func TestChangePassword(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	mustLogin(t, c)
	ctx := context.Background()

	res := c.ChangePassword(ctx, "bad", "newpass1", "newpass1")
	if res.Success || res.Error != "Mật khẩu cũ không đúng" {
		t.Fatalf("expected rejection, got %+v", res)
	}

	res = c.ChangePassword(ctx, "secret123", "newpass1", "newpass1")
	if !res.Success || res.Data != nil {
		t.Fatalf("expected success without data, got %+v", res)
	}
	acc, _ := srv.Account("gv001")
	if acc.Password != "newpass1" {
		t.Fatal("server password not changed")
	}
}

func TestUpdateAvatarFromPathAndReader(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	mustLogin(t, c)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "me.jpg")
	if err := os.WriteFile(path, []byte("\xff\xd8\xff fake jpeg"), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}

	res := c.UpdateAvatar(ctx, Image{Path: path})
	if !res.Success {
		t.Fatalf("avatar upload failed: %+v", res)
	}
	var data struct {
		Avatar string `json:"avatar"`
	}
	if err := res.DecodeData(&data); err != nil || data.Avatar != "/uploads/avatars/avatar.jpg" {
		t.Fatalf("unexpected avatar data %s (%v)", res.Data, err)
	}
	req, _ := srv.LastRequest("/api/user/update-avatar")
	if req.Method != http.MethodPut || !strings.HasPrefix(req.ContentType, "multipart/form-data") {
		t.Fatalf("unexpected upload request %s %s", req.Method, req.ContentType)
	}

	res = c.UpdateAvatar(ctx, Image{Path: filepath.Join(t.TempDir(), "missing.jpg")})
	if res.Success || !errors.Is(res.Err, ErrRequest) || res.OriginalError == "" {
		t.Fatalf("expected request failure for missing file, got %+v", res)
	}

	res = c.UpdateAvatar(ctx, Image{})
	if res.Success || !errors.Is(res.Err, ErrInvalidInput) {
		t.Fatalf("expected invalid input without image, got %+v", res)
	}

	if res := c.RemoveAvatar(ctx); !res.Success {
		t.Fatalf("remove avatar failed: %+v", res)
	}
}

func TestAttendanceRoundTrip(t *testing.T) {
	srv := startServer(t)
	fixed := time.UnixMilli(1767225600123)
	c := newTestClient(t, srv, func(b *Builder) {
		b.WithClock(func() time.Time { return fixed })
	})
	mustLogin(t, c)
	ctx := context.Background()

	res := c.AddAttendance(ctx, Image{Reader: bytes.NewReader([]byte("jpeg"))}, "sch-1", "front")
	if !res.Success {
		t.Fatalf("add attendance failed: %+v", res)
	}
	var rec map[string]any
	if err := res.DecodeData(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["file_name"] != "attendance_1767225600123.jpg" || rec["file_alias"] != "front" {
		t.Fatalf("unexpected record %v", rec)
	}

	list := c.GetMyAttendance(ctx)
	if !list.Success {
		t.Fatalf("list failed: %+v", list)
	}
	var items []map[string]any
	if err := list.DecodeData(&items); err != nil || len(items) != 1 {
		t.Fatalf("expected one record, got %s (%v)", list.Data, err)
	}
	var page map[string]any
	if err := json.Unmarshal(list.Pagination, &page); err != nil || page["total"] != float64(1) {
		t.Fatalf("unexpected pagination %s", list.Pagination)
	}

	id, _ := rec["id"].(string)
	if res := c.RemoveAttendance(ctx, id); !res.Success {
		t.Fatalf("remove failed: %+v", res)
	}
	if res := c.RemoveAttendance(ctx, id); res.Success || !errors.Is(res.Err, ErrRejected) {
		t.Fatalf("second remove must be rejected, got %+v", res)
	}

	if res := c.AddAttendance(ctx, Image{Reader: bytes.NewReader(nil)}, "  ", ""); !errors.Is(res.Err, ErrInvalidInput) {
		t.Fatalf("schedule is required, got %+v", res)
	}
}

func TestAttendanceRequiresExplicitSuccess(t *testing.T) {
	srv := startServer(t)
	srv.Reply("/api/attendance/my-attendance", http.StatusOK, `{"data":[]}`)
	c := newTestClient(t, srv)
	mustLogin(t, c)

	res := c.GetMyAttendance(context.Background())
	if res.Success || !errors.Is(res.Err, ErrRejected) {
		t.Fatalf("missing success field must fail, got %+v", res)
	}
}

func TestAttendanceEmptyListDefaultsToArray(t *testing.T) {
	srv := startServer(t)
	srv.Reply("/api/attendance/my-attendance", http.StatusOK, `{"success":true}`)
	c := newTestClient(t, srv)
	mustLogin(t, c)

	res := c.GetMyAttendance(context.Background())
	if !res.Success || string(res.Data) != "[]" {
		t.Fatalf("expected [] payload, got %+v", res)
	}
}

func TestClassesUseStoredUsername(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	if res := c.GetMyClasses(ctx); !errors.Is(res.Err, ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %+v", res)
	}

	mustLogin(t, c)
	res := c.GetMyClasses(ctx)
	if !res.Success {
		t.Fatalf("classes failed: %+v", res)
	}
	var classes []map[string]any
	if err := res.DecodeData(&classes); err != nil || len(classes) != 1 || classes[0]["class_code"] != "CS101" {
		t.Fatalf("unexpected classes %s (%v)", res.Data, err)
	}

	sched := c.GetClassSchedule(ctx, "CS101")
	if !sched.Success {
		t.Fatalf("schedule failed: %+v", sched)
	}
	if res := c.GetClassSchedule(ctx, "NOPE"); res.Success || res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", res)
	}
}

func TestSessionInfoDecodesToken(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	info, err := c.SessionInfo(ctx)
	if err != nil || info.Authenticated {
		t.Fatalf("expected signed-out info, got %+v %v", info, err)
	}

	mustLogin(t, c)
	info, err = c.SessionInfo(ctx)
	if err != nil {
		t.Fatalf("session info: %v", err)
	}
	if !info.Authenticated || !info.TokenIsJWT || info.Subject != "gv001" || info.Username != "gv001" {
		t.Fatalf("unexpected session info %+v", info)
	}
	if info.Expired || !info.ExpiresAt.After(time.Now()) {
		t.Fatalf("fresh token reported expired: %+v", info)
	}
}

func TestAuditEventsCarryDeviceAndNoSecrets(t *testing.T) {
	srv := startServer(t)
	var buf safeBuffer
	c := newTestClient(t, srv, func(b *Builder) { b.WithAuditSink(NewJSONWriterSink(&buf)) })

	ctx := WithDevice(context.Background(), "pixel-7")
	if res := c.Login(ctx, "gv001", "secret123"); !res.Success {
		t.Fatalf("login failed: %+v", res)
	}
	c.Login(ctx, "gv001", "wrong")
	c.Close()

	out := buf.String()
	if strings.Contains(out, "secret123") {
		t.Fatal("password leaked into audit log")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d: %s", len(lines), out)
	}
	var first, second AuditEvent
	_ = json.Unmarshal([]byte(lines[0]), &first)
	_ = json.Unmarshal([]byte(lines[1]), &second)
	if first.EventType != auditEventLoginSuccess || first.Metadata["device"] != "pixel-7" || first.Username != "gv001" {
		t.Fatalf("unexpected first event %+v", first)
	}
	if second.EventType != auditEventLoginFailure || second.Error != string(auditErrRejected) {
		t.Fatalf("unexpected second event %+v", second)
	}
}

func TestRedisStoreSharesSessionAcrossClients(t *testing.T) {
	srv := startServer(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := session.NewRedisStore(rdb, "test")

	a := newTestClient(t, srv, func(b *Builder) { b.WithStore(store) })
	mustLogin(t, a)

	b := newTestClient(t, srv, func(b *Builder) { b.WithStore(store) })
	if !b.IsAuthenticated(context.Background()) {
		t.Fatal("second client must see the stored session")
	}
	if res := b.GetProfile(context.Background()); !res.Success {
		t.Fatalf("second client profile failed: %+v", res)
	}

	mr.Close()
	res := a.Logout(context.Background())
	if res.Success || !errors.Is(res.Err, ErrStore) {
		t.Fatalf("expected store failure once redis is gone, got %+v", res)
	}
}

func TestConcurrentOperationsShareOneSession(t *testing.T) {
	srv := startServer(t)
	c := newTestClient(t, srv)
	mustLogin(t, c)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var res Result
			if i%2 == 0 {
				res = c.GetProfile(context.Background())
			} else {
				res = c.UpdateProfile(context.Background(), ProfileUpdate{Address: String("Hà Nội")})
			}
			if !res.Success {
				errs <- res.Error
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("concurrent operation failed: %s", e)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	c, err := b.Build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	defer c.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "ftp://example.test"
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected invalid base url to fail")
	}
}

func TestResultDecodeDataOnFailure(t *testing.T) {
	r := Result{Error: "boom", Err: ErrRejected}
	var v any
	if err := r.DecodeData(&v); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if err := (Result{Success: true}).DecodeData(&v); err == nil {
		t.Fatal("expected error for empty data")
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
