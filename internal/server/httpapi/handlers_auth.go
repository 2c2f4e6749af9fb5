package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// SessionServiceInterface is what the auth handlers and the gate need from
// services.SessionService.
type SessionServiceInterface interface {
	Authenticator
	Register(ctx context.Context, in services.RegisterInput) error
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type AuthHandler struct {
	sessions SessionServiceInterface
}

func NewAuthHandler(sessions SessionServiceInterface) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}

	err := h.sessions.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err, "Error registering user")
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}

	res, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err, "Error logging in")
		return
	}

	if info := requestInfoFrom(r.Context()); info != nil {
		info.username = res.User.UserName
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message:     "Login successful.",
		AccessToken: res.AccessToken,
		UserData:    res.User,
	})
}

// Refresh handles POST /refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, "")
		return
	}

	access, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err, "Error refreshing token")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Message: "New access token generated.",
		Tokens:  tokensBody{AccessToken: access},
	})
}
