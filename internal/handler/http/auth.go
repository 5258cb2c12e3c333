package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aujren/auth-service/internal/service"
	"github.com/aujren/auth-service/pkg/validator"
)

// refreshCookieName is the cookie carrying the opaque refresh token.
const refreshCookieName = "refreshToken"

// CookieConfig controls how the refresh token cookie is issued.
type CookieConfig struct {
	Secure bool
}

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AccountService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AccountService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for user registration.
type RegisterRequest struct {
	Username       string `json:"username" validate:"required,username"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=10,max=256"`
	PasswordRepeat string `json:"password_repeat" validate:"required,eqfield=Password"`
	GivenName      string `json:"given_name" validate:"required,max=100"`
	FamilyName     string `json:"family_name" validate:"required,max=100"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// RegisterResponse carries the id of a newly created user.
type RegisterResponse struct {
	ID string `json:"id"`
}

// TokenResponse carries a signed access token. The refresh token travels in
// the cookie, never in the body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	// Normalize before validation so whitespace-only names fail the
	// required rule and email dedup is case insensitive.
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.GivenName = strings.TrimSpace(req.GivenName)
	req.FamilyName = strings.TrimSpace(req.FamilyName)

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
	}

	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Data: RegisterResponse{ID: user.ID},
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}

	session, err := h.service.Login(r.Context(), input, clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken.Token, session.RefreshToken.ExpiresAt)
	writeJSON(w, http.StatusOK, response{
		Data: TokenResponse{AccessToken: session.AccessToken},
	})
}

// Refresh handles GET /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Refresh(r.Context(), refreshTokenFromCookie(r), clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, session.RefreshToken.Token, session.RefreshToken.ExpiresAt)
	writeJSON(w, http.StatusOK, response{
		Data: TokenResponse{AccessToken: session.AccessToken},
	})
}

// Logout handles GET /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), refreshTokenFromCookie(r), clientIP(r)); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"status": "logged_out"},
	})
}

// --- Cookie helpers ---

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFromCookie extracts the refresh token cookie value, returning
// an empty string when the cookie is absent.
func refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// clientIP resolves the originating client address, preferring the first
// X-Forwarded-For hop set by a trusted proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
