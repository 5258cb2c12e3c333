package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aujren/auth-service/internal/service"
	"github.com/aujren/auth-service/pkg/validator"
)

// trimPtr trims a field that may be absent from the request body.
func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	service *service.AccountService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.AccountService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// PatchUserRequest is the JSON request body for partially updating a user.
// Absent fields are left unchanged.
type PatchUserRequest struct {
	Username       *string `json:"username" validate:"omitempty,username"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Password       *string `json:"password" validate:"omitempty,min=10,max=256"`
	PasswordRepeat *string `json:"password_repeat" validate:"required_with=Password,omitempty,eqfield=Password"`
	GivenName      *string `json:"given_name" validate:"omitempty,max=100"`
	FamilyName     *string `json:"family_name" validate:"omitempty,max=100"`
}

// PutUserRequest is the JSON request body for fully replacing a user's
// editable fields. The password is still optional; omitting it keeps the
// current one.
type PutUserRequest struct {
	Username       string  `json:"username" validate:"required,username"`
	Email          string  `json:"email" validate:"required,email"`
	Password       *string `json:"password" validate:"omitempty,min=10,max=256"`
	PasswordRepeat *string `json:"password_repeat" validate:"required_with=Password,omitempty,eqfield=Password"`
	GivenName      string  `json:"given_name" validate:"required,max=100"`
	FamilyName     string  `json:"family_name" validate:"required,max=100"`
}

// --- Handlers ---

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user.Public()})
}

// Patch handles PATCH /api/v1/users/{id}
func (h *UserHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PatchUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	trimPtr(req.GivenName)
	trimPtr(req.FamilyName)
	if req.Email != nil {
		*req.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.UpdateInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
	}

	user, err := h.service.Update(r.Context(), id, input, clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user.Public()})
}

// Put handles PUT /api/v1/users/{id}
func (h *UserHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PutUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.GivenName = strings.TrimSpace(req.GivenName)
	req.FamilyName = strings.TrimSpace(req.FamilyName)

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	input := service.UpdateInput{
		Username:   &req.Username,
		Email:      &req.Email,
		Password:   req.Password,
		GivenName:  &req.GivenName,
		FamilyName: &req.FamilyName,
	}

	user, err := h.service.Update(r.Context(), id, input, clientIP(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user.Public()})
}

// Delete handles DELETE /api/v1/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}
