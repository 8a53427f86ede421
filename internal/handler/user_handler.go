package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/middleware"
	"pos-sync-server/internal/service"
	"pos-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	service  *service.AuthService
	validate *validator.Validate
}

func NewUserHandler(service *service.AuthService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, user)
}

// List returns every user on the caller's account.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		response.Unauthorized(w, "Missing identity")
		return
	}

	users, err := h.service.ListUsers(r.Context(), identity.AccountID)
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	response.Success(w, users)
}

// Create provisions a cashier on the caller's account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)
	if identity == nil {
		response.Unauthorized(w, "Missing identity")
		return
	}

	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.service.CreateCashier(r.Context(), identity, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.ErrorCode(w, http.StatusConflict, "Email already registered", "EMAIL_TAKEN")
			return
		}
		response.InternalError(w, "Failed to create user")
		return
	}

	response.Created(w, user)
}
