package http

import (
	"net/http"
	"strings"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	u, err := s.deps.Auth.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"msg":  "User registered successfully",
		"user": userJSON{ID: u.ID, Username: u.Username, Name: u.Name},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username and password required")
		return
	}

	sess, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       userJSON{ID: sess.User.ID, Username: sess.User.Username, Name: sess.User.Name},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.deps.Auth.Me(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, applog.OpRead, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, userJSON{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "password is required")
		return
	}

	removed, err := s.deps.Auth.DeleteAccount(r.Context(), userID(r), req.Password)
	if err != nil {
		writeError(w, r, applog.OpDelete, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"msg":                  "Account deleted",
		"deleted_transactions": removed,
	})
}
