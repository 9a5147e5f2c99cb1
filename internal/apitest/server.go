// Package apitest is an in-memory fake of the water resources backend for
// tests. It serves the /auth endpoints and lets tests register handlers for
// resource routes.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Username = "admin"
	Password = "Admin#2024"
	RoleName = "ADMIN"

	signingKey = "apitest-signing-key"
)

// Permissions granted to the test user.
var Permissions = []string{"system:user:view", "system:user:edit", "warning:threshold:view"}

// Profile shapes served by GET /auth/me.
const (
	ShapeFlat   = "flat"
	ShapeNested = "nested"
	ShapeOpaque = "opaque"
	ShapeString = "string"
)

type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type Server struct {
	*httptest.Server

	mu            sync.Mutex
	accessTokens  map[string]bool
	refreshTokens map[string]bool
	accessTTL     time.Duration
	meShape       string
	refreshDelay  time.Duration
	failRefresh   bool
	handlers      map[string]http.HandlerFunc
	calls         map[string]int
	requests      map[string]Recorded
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		accessTokens:  make(map[string]bool),
		refreshTokens: make(map[string]bool),
		accessTTL:     time.Hour,
		meShape:       ShapeFlat,
		handlers:      make(map[string]http.HandlerFunc),
		calls:         make(map[string]int),
		requests:      make(map[string]Recorded),
	}
	s.Handle(http.MethodPost, "/auth/login", s.login)
	s.Handle(http.MethodPost, "/auth/logout", s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, nil)
	}))
	s.Handle(http.MethodGet, "/auth/me", s.authenticated(s.me))
	s.Handle(http.MethodPost, "/auth/refresh", s.refresh)
	s.Handle(http.MethodGet, "/auth/validate", s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, true)
	}))

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Handle registers h for method and path (relative to /api). Handlers
// registered with Protected require a valid access token.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method+" "+path] = h
}

// Protected registers h behind bearer authentication.
func (s *Server) Protected(method, path string, h http.HandlerFunc) {
	s.Handle(method, path, s.authenticated(h))
}

func (s *Server) SetMeShape(shape string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meShape = shape
}

// SetAccessTTL sets the lifetime of access tokens issued from now on.
func (s *Server) SetAccessTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = ttl
}

// SetRefreshDelay delays every refresh response.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// FailRefresh makes refresh calls answer 401.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// ExpireAccessTokens revokes every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens = make(map[string]bool)
}

func (s *Server) CallCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// LastRequest returns the most recent request to method and path.
func (s *Server) LastRequest(method, path string) (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[method+" "+path]
	return r, ok
}

// IssueAccessToken mints a token the server accepts.
func (s *Server) IssueAccessToken(ttl time.Duration) string {
	token := SignToken(Username, time.Now().Add(ttl))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens[token] = true
	return token
}

func (s *Server) issueRefreshToken() string {
	token := "refresh-" + uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[token] = true
	return token
}

// SignToken returns an HS256 JWT for subject expiring at exp.
func SignToken(subject string, exp time.Time) string {
	claims := jwtlib.MapClaims{
		"sub": subject,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
		"jti": uuid.NewString(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	key := r.Method + " " + path
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	s.mu.Lock()
	s.calls[key]++
	s.requests[key] = Recorded{Method: r.Method, Path: path, Query: r.URL.Query(), Header: r.Header.Clone(), Body: body}
	h, ok := s.handlers[key]
	s.mu.Unlock()

	if !ok {
		WriteError(w, http.StatusNotFound, "not found", nil)
		return
	}
	h(w, r)
}

func (s *Server) authenticated(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		ok := s.accessTokens[token]
		s.mu.Unlock()
		if !ok {
			WriteError(w, http.StatusUnauthorized, "token expired", nil)
			return
		}
		h(w, r)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		WriteError(w, http.StatusBadRequest, "malformed login form", nil)
		return
	}
	if creds.Username != Username || creds.Password != Password {
		WriteError(w, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	s.mu.Lock()
	ttl := s.accessTTL
	s.mu.Unlock()

	WriteData(w, map[string]any{
		"accessToken":  s.IssueAccessToken(ttl),
		"refreshToken": s.issueRefreshToken(),
		"tokenType":    "Bearer",
		"expiresIn":    int64(ttl / time.Second),
		"userInfo":     userInfo(),
		"permissions":  Permissions,
		"roleName":     RoleName,
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	shape := s.meShape
	s.mu.Unlock()

	switch shape {
	case ShapeNested:
		WriteData(w, map[string]any{"userInfo": userInfo(), "permissions": Permissions, "roleName": RoleName})
	case ShapeOpaque:
		WriteData(w, map[string]any{"email": "admin@example.com", "permissions": Permissions})
	case ShapeString:
		WriteData(w, "admin")
	default:
		out := userInfo()
		out["permissions"] = Permissions
		WriteData(w, out)
	}
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	delay, fail, ttl := s.refreshDelay, s.failRefresh, s.accessTTL
	valid := s.refreshTokens[req.RefreshToken]
	if valid && !fail {
		delete(s.refreshTokens, req.RefreshToken)
	}
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !valid || fail {
		WriteError(w, http.StatusUnauthorized, "refresh token expired", nil)
		return
	}

	WriteData(w, map[string]any{
		"accessToken":  s.IssueAccessToken(ttl),
		"refreshToken": s.issueRefreshToken(),
		"tokenType":    "Bearer",
		"expiresIn":    int64(ttl / time.Second),
	})
}

func userInfo() map[string]any {
	return map[string]any{"id": 1, "username": Username, "realName": "System Administrator", "roleName": RoleName}
}

// WriteData writes a success envelope.
func WriteData(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, map[string]any{"code": 200, "message": "success", "data": data})
}

// WriteError writes a failure envelope with the given HTTP status.
func WriteError(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, map[string]any{"code": status, "message": message, "data": data})
}

// WriteBlob writes a binary body.
func WriteBlob(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

// Page wraps items in the backend's paged list shape.
func Page(items any, total int) map[string]any {
	return map[string]any{"items": items, "total": total, "page": 1, "size": 10}
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
