package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/paperbark/kindwords/internal/auth"
	"github.com/paperbark/kindwords/internal/session"
	"github.com/paperbark/kindwords/internal/store"
)

// bcryptCost is the adaptive hashing work factor for stored passwords.
const bcryptCost = 12

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

type AuthHandler struct {
	users    *store.UserStore
	things   *store.ThingStore
	sessions *session.Manager
	logger   *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ts *store.ThingStore, sm *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: us, things: ts, sessions: sm, logger: logger}
}

// normalizeEmail applies the canonical form used for both storage and
// lookups, making the uniqueness check case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates an account and logs the new user straight in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials: missing email or password")
		return
	}
	if !emailPattern.MatchString(email) {
		writeMessage(w, http.StatusBadRequest, "Please enter a valid email")
		return
	}

	existing, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error("signup lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusConflict, "Email taken.")
		return
	}

	if len(req.Password) < minPasswordLength {
		writeMessage(w, http.StatusBadRequest, "Passwords must be at least 8 characters.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.users.Create(email, string(hash))
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble creating your account, please try again.")
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.sessions.SetCookie(w, token)

	writeJSON(w, http.StatusCreated, user)
}

// CheckEmail reports whether an email is already registered.
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.PathValue("email"))
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials: email missing")
		return
	}

	existing, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error("check email", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble, try again.")
		return
	}

	if existing != nil {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Email is already in use.", "taken": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Email available!", "taken": false})
}

// Login verifies credentials and mints a fresh session. Lookup misses
// and wrong passwords get the same answer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	email := normalizeEmail(req.Email)
	user, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	hash, err := h.users.PasswordHash(user.ID)
	if err != nil {
		h.logger.Error("login hash lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.sessions.SetCookie(w, token)

	writeJSON(w, http.StatusOK, user)
}

// Logout clears the session cookie. Already-issued tokens stay valid
// until expiry; there is no revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	writeMessage(w, http.StatusOK, "Logged out successfully. Please come back.")
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdatePassword verifies the current password before rehashing and
// storing the new one.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials: required field missing")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeMessage(w, http.StatusBadRequest, "Passwords must be at least 8 characters.")
		return
	}

	user, err := h.users.GetByID(ac.UserID)
	if err != nil {
		h.logger.Error("password user lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble, please try again.")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusNotFound, "User not found.")
		return
	}

	hash, err := h.users.PasswordHash(user.ID)
	if err != nil {
		h.logger.Error("password hash lookup", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble, please try again.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.CurrentPassword)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Incorrect current password.")
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		h.logger.Error("hash new password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble updating your password, please try again.")
		return
	}
	if err := h.users.UpdatePassword(user.ID, string(newHash)); err != nil {
		h.logger.Error("update password", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble updating your password, please try again.")
		return
	}

	writeMessage(w, http.StatusOK, "Password updated successfully")
}

// DeleteAccount removes the user's things and then the user row.
// Ordered this way a mid-sequence crash can only leave orphans that
// no query can ever surface.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	if _, err := h.things.DeleteAll(ac.UserID); err != nil {
		h.logger.Error("cascade delete things", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble deleting your account, please try again later.")
		return
	}

	deleted, err := h.users.Delete(ac.UserID)
	if err != nil {
		h.logger.Error("delete user", "error", err)
		writeMessage(w, http.StatusInternalServerError, "We're having trouble deleting your account, please try again later.")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "User not found.")
		return
	}

	writeMessage(w, http.StatusOK, "Account deletion successful. Please come back soon.")
}

// Me returns the authenticated user's account projection.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	user, err := h.users.GetByID(ac.UserID)
	if err != nil {
		h.logger.Error("fetch account", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
