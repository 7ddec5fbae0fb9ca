package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"notivo/store"
)

const tokenTTL = 24 * time.Hour

// Auth serves signup and login. Both issue a bearer token that the note
// routes require.
type Auth struct {
	users  *store.Users
	secret []byte
}

func NewAuth(users *store.Users, secret []byte) *Auth {
	return &Auth{users: users, secret: secret}
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	json.NewDecoder(r.Body).Decode(&req)

	user, err := a.users.Create(r.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrDuplicateUsername) {
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	if err != nil {
		slog.Error("signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.respond(w, user.ID, user.Username)
}

func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	json.NewDecoder(r.Body).Decode(&req)

	user, err := a.users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	a.respond(w, user.ID, user.Username)
}

func (a *Auth) respond(w http.ResponseWriter, id int, username string) {
	token, err := a.issueToken(id)
	if err != nil {
		slog.Error("issuing token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{ID: id, Username: username, Token: token})
}

func (a *Auth) issueToken(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(a.secret)
}
