package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fieldvisit/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionFrom returns the authenticated identity attached by RequireAuth,
// or nil on unauthenticated requests.
func SessionFrom(r *http.Request) *service.Session {
	s, _ := r.Context().Value(sessionKey).(*service.Session)
	return s
}

type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get("X-Auth-Token")
}

// RequireAuth validates the bearer token and attaches the session to the
// request context.
func (h *AuthHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.auth.Validate(r.Context(), bearerToken(r))
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				writeJSON(w, http.StatusUnauthorized, Fail("invalid or expired token"))
				return
			}
			h.logger.Error("token validation failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, Fail("token validation failed"))
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resp, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid username or password"))
			return
		}
		writeServiceError(w, h.logger, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, OK("login successful", map[string]any{
		"token":        resp.Token,
		"username":     resp.Username,
		"access_level": resp.AccessLevel,
	}))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		AccessLevel string `json:"access_level"`
	}
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	cred, err := h.auth.Register(r.Context(), req.Username, req.Password, req.AccessLevel)
	if err != nil {
		writeServiceError(w, h.logger, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, OK("user registered", cred.ToJSON()))
}

// Users lists and deletes login records; admin access only.
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	session := SessionFrom(r)
	if session == nil || session.AccessLevel != "admin" {
		writeJSON(w, http.StatusForbidden, Fail("admin access required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		creds, err := h.auth.ListUsers(r.Context())
		if err != nil {
			writeServiceError(w, h.logger, "list users", err)
			return
		}
		out := make([]any, 0, len(creds))
		for _, c := range creds {
			out = append(out, c.ToJSON())
		}
		writeJSON(w, http.StatusOK, OK("users", out))
	case http.MethodDelete:
		id, err := parseID(strings.TrimPrefix(r.URL.Path, "/api/auth/users/"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid user id"))
			return
		}
		if err := h.auth.DeleteUser(r.Context(), id); err != nil {
			writeServiceError(w, h.logger, "delete user", err)
			return
		}
		writeJSON(w, http.StatusOK, OK("user deleted", nil))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Sessions lists who currently holds a live token; admin access only.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	session := SessionFrom(r)
	if session == nil || session.AccessLevel != "admin" {
		writeJSON(w, http.StatusForbidden, Fail("admin access required"))
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sessions, err := h.auth.ActiveSessions(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, OK("active sessions", sessions))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeServiceError(w, h.logger, "logout", err)
		return
	}
	writeJSON(w, http.StatusOK, OK("logged out", nil))
}
