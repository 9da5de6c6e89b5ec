package hasttest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Account is one backend user.
type Account struct {
	Password string
	Info     map[string]any
}

// Class is one class taught by a teacher.
type Class struct {
	Code      string
	Name      string
	Teacher   string
	Schedules []map[string]any
}

// Request is a recorded incoming request.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

// Server is an in-process fake of the HAST backend API. Response shapes
// follow the real service: {success, description, data, pagination}.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]*Account
	tokens     map[string]string
	classes    []Class
	attendance []map[string]any
	nextID     int
	overrides  map[string]http.HandlerFunc
	requests   []Request
	signingKey []byte
	tokenTTL   time.Duration
}

// New starts a server with one teacher (gv001 / secret123) and one student
// (sv001 / secret123).
func New() *Server {
	s := &Server{
		accounts: map[string]*Account{
			"gv001": {Password: "secret123", Info: map[string]any{
				"id": 1, "user_name": "gv001", "full_name": "Nguyễn Văn A",
				"email": "gv001@hast.edu.vn", "role_name": "Giáo viên", "is_teacher": true,
			}},
			"sv001": {Password: "secret123", Info: map[string]any{
				"id": 2, "user_name": "sv001", "full_name": "Trần Thị B",
				"email": "sv001@hast.edu.vn", "role_name": "Sinh viên", "is_teacher": false,
			}},
		},
		tokens: map[string]string{},
		classes: []Class{{
			Code: "CS101", Name: "Lập trình cơ bản", Teacher: "gv001",
			Schedules: []map[string]any{{"id": "sch-1", "weekday": 2, "time_slot": "07:00-09:00"}},
		}},
		nextID:     1,
		overrides:  map[string]http.HandlerFunc{},
		signingKey: []byte("hasttest-signing-key"),
		tokenTTL:   time.Hour,
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// AddAccount registers or replaces an account.
func (s *Server) AddAccount(username string, acc Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc.Info = maps.Clone(acc.Info)
	s.accounts[username] = &acc
}

// Override serves path (any method) with h instead of the built-in route.
func (s *Server) Override(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = h
}

// Reply overrides path with a fixed status and raw body.
func (s *Server) Reply(path string, status int, body string) {
	s.Override(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// RevokeAll invalidates every issued token, as a server-side expiry would.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.tokens)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request to path.
func (s *Server) LastRequest(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// Account returns a copy of the stored record of username.
func (s *Server) Account(username string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return Account{}, false
	}
	return Account{Password: acc.Password, Info: maps.Clone(acc.Info)}, true
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/auth/sign-in", s.signIn).Methods("POST")
	r.HandleFunc("/api/auth/reset-password", s.resetPassword).Methods("PUT")
	r.HandleFunc("/api/time-slot", s.timeSlots).Methods("GET")

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/api/auth/sign-out", s.signOut).Methods("POST")
	authed.HandleFunc("/api/auth/update-password", s.updatePassword).Methods("PUT")
	authed.HandleFunc("/api/user/profile", s.profile).Methods("GET")
	authed.HandleFunc("/api/user/update", s.updateProfile).Methods("PUT")
	authed.HandleFunc("/api/user/update-avatar", s.updateAvatar).Methods("PUT")
	authed.HandleFunc("/api/user/remove-avatar", s.removeAvatar).Methods("DELETE")
	authed.HandleFunc("/api/attendance/add", s.addAttendance).Methods("POST")
	authed.HandleFunc("/api/attendance/remove/{id}", s.removeAttendance).Methods("DELETE")
	authed.HandleFunc("/api/attendance/my-attendance", s.myAttendance).Methods("GET")
	authed.HandleFunc("/api/class", s.listClasses).Methods("GET")
	authed.HandleFunc("/api/class/class-schedule-config/{code}", s.classSchedule).Methods("GET")

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        req.Method,
			Path:          req.URL.Path,
			Query:         req.URL.RawQuery,
			Authorization: req.Header.Get("Authorization"),
			ContentType:   req.Header.Get("Content-Type"),
			Body:          body,
		})
		override := s.overrides[req.URL.Path]
		s.mu.Unlock()

		if override != nil {
			override(w, req)
			return
		}
		r.ServeHTTP(w, req)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		user, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false, "status": 401, "description": "Phiên đăng nhập đã hết hạn",
			})
			return
		}
		r.Header.Set("X-Test-User", user)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) issueToken(username string) (string, error) {
	now := time.Now()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":       username,
		"iss":       "hasttest",
		"iat":       now.Unix(),
		"exp":       now.Add(s.tokenTTL).Unix(),
		"user_name": username,
		"jti":       strconv.FormatInt(now.UnixNano(), 36),
	})
	return tok.SignedString(s.signingKey)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserName string `json:"user_name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "description": "Dữ liệu không hợp lệ"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[in.UserName]
	valid := ok && acc.Password == in.Password
	s.mu.Unlock()
	if !valid {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false, "status": 401, "description": "Tên đăng nhập hoặc mật khẩu không đúng",
		})
		return
	}

	token, err := s.issueToken(in.UserName)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "description": err.Error()})
		return
	}
	s.mu.Lock()
	s.tokens[token] = in.UserName
	info := maps.Clone(acc.Info)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"description": "Đăng nhập thành công",
		"token":       token,
		"data":        info,
	})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Đăng xuất thành công"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var username string
	if err := json.NewDecoder(r.Body).Decode(&username); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "description": "Dữ liệu không hợp lệ"})
		return
	}
	s.mu.Lock()
	_, ok := s.accounts[username]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "description": "Không tìm thấy người dùng"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Mật khẩu mới đã được gửi tới email"})
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Old     string `json:"old_password"`
		New     string `json:"new_password"`
		Confirm string `json:"confirm_new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "description": "Dữ liệu không hợp lệ"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[r.Header.Get("X-Test-User")]
	switch {
	case acc == nil || acc.Password != in.Old:
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "description": "Mật khẩu cũ không đúng"})
	case in.New != in.Confirm:
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "description": "Mật khẩu xác nhận không khớp"})
	default:
		acc.Password = in.New
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Đổi mật khẩu thành công"})
	}
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	info := maps.Clone(s.accounts[r.Header.Get("X-Test-User")].Info)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": info})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "description": "Dữ liệu không hợp lệ"})
		return
	}
	s.mu.Lock()
	acc := s.accounts[r.Header.Get("X-Test-User")]
	maps.Copy(acc.Info, patch)
	info := maps.Clone(acc.Info)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Cập nhật thành công", "data": info})
}

func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	name, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	path := "/uploads/avatars/" + name
	s.mu.Lock()
	s.accounts[r.Header.Get("X-Test-User")].Info["avatar"] = path
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"avatar": path}})
}

func (s *Server) removeAvatar(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.accounts[r.Header.Get("X-Test-User")].Info, "avatar")
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Đã xóa ảnh đại diện", "data": nil})
}

func (s *Server) addAttendance(w http.ResponseWriter, r *http.Request) {
	scheduleID := r.URL.Query().Get("scheduleId")
	if scheduleID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "description": "Thiếu lịch học"})
		return
	}
	name, ok := uploadedFile(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	rec := map[string]any{
		"id":          strconv.Itoa(s.nextID),
		"schedule_id": scheduleID,
		"user_name":   r.Header.Get("X-Test-User"),
		"file_name":   name,
		"file_alias":  r.URL.Query().Get("fileAlias"),
	}
	s.nextID++
	s.attendance = append(s.attendance, rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Điểm danh thành công", "data": rec})
}

func (s *Server) removeAttendance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.attendance {
		if rec["id"] == id {
			s.attendance = append(s.attendance[:i], s.attendance[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "description": "Đã xóa điểm danh"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "description": "Không tìm thấy điểm danh"})
}

func (s *Server) myAttendance(w http.ResponseWriter, r *http.Request) {
	user := r.Header.Get("X-Test-User")
	s.mu.Lock()
	out := []map[string]any{}
	for _, rec := range s.attendance {
		if rec["user_name"] == user {
			out = append(out, maps.Clone(rec))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data":       out,
		"pagination": map[string]any{"page": 1, "page_size": 20, "total": len(out)},
	})
}

func (s *Server) listClasses(w http.ResponseWriter, r *http.Request) {
	teacher := r.URL.Query().Get("filter[teacher_user_name]")
	s.mu.Lock()
	out := []map[string]any{}
	for _, c := range s.classes {
		if teacher == "" || c.Teacher == teacher {
			out = append(out, map[string]any{"class_code": c.Code, "class_name": c.Name, "teacher_user_name": c.Teacher})
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"data_set":   out,
		"pagination": map[string]any{"page": 1, "total": len(out)},
	})
}

func (s *Server) classSchedule(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.classes {
		if c.Code == code {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"class_code": c.Code, "schedules": c.Schedules},
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "description": "Không tìm thấy lớp học"})
}

func (s *Server) timeSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": []map[string]any{
			{"id": 1, "start": "07:00", "end": "09:00"},
			{"id": 2, "start": "09:15", "end": "11:15"},
		},
	})
}

func uploadedFile(w http.ResponseWriter, r *http.Request) (string, bool) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "description": fmt.Sprintf("Thiếu tệp: %v", err)})
		return "", false
	}
	defer f.Close()
	if ct := hdr.Header.Get("Content-Type"); ct != "image/jpeg" {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"success": false, "description": "Chỉ chấp nhận ảnh JPEG"})
		return "", false
	}
	return hdr.Filename, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
