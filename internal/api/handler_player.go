package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ryanbastic/puzzlebox/internal/player"
)

// --- Huma Input/Output types ---

type RegisterBody struct {
	Name string `json:"name,omitempty" doc:"Player name; surrounding whitespace is trimmed"`

	_ struct{} `json:"-" additionalProperties:"true"`
}

type RegisterInput struct {
	Body RegisterBody
}

type RegisterResponse struct {
	Message string `json:"message"`
	Name    string `json:"name" doc:"Registered (trimmed) name"`
}

type RegisterOutput struct {
	Body RegisterResponse
}

type VerifyAdminBody struct {
	Password string `json:"password,omitempty" doc:"Admin password"`

	_ struct{} `json:"-" additionalProperties:"true"`
}

type VerifyAdminInput struct {
	Body VerifyAdminBody
}

type UpdateAdminBody struct {
	Password        string `json:"password,omitempty" doc:"New admin password"`
	CurrentPassword string `json:"currentPassword,omitempty" doc:"Current admin password. Required; a wrong or missing value is rejected with 401."`

	_ struct{} `json:"-" additionalProperties:"true"`
}

type UpdateAdminInput struct {
	Body UpdateAdminBody
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MessageOutput struct {
	Body MessageResponse
}

// --- Handler ---

type PlayerHandler struct {
	players player.Registry
	admin   player.AdminCredentials
	logger  *slog.Logger
	now     func() time.Time
}

func NewPlayerHandler(players player.Registry, admin player.AdminCredentials, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{players: players, admin: admin, logger: logger, now: time.Now}
}

func registerPlayerRoutes(api huma.API, h *PlayerHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "register-player",
		Method:      http.MethodPost,
		Path:        "/register",
		Summary:     "Register a player",
		Tags:        []string{"players"},
	}, h.Register)

	huma.Register(api, huma.Operation{
		OperationID: "verify-admin",
		Method:      http.MethodPost,
		Path:        "/verify-admin",
		Summary:     "Verify the admin password",
		Tags:        []string{"admin"},
	}, h.VerifyAdmin)

	huma.Register(api, huma.Operation{
		OperationID: "update-admin",
		Method:      http.MethodPut,
		Path:        "/update-admin",
		Summary:     "Change the admin password",
		Description: "Requires both the new password and the current one. The new password is stored hashed and replaces ADMIN_PASSWORD for later verification.",
		Tags:        []string{"admin"},
	}, h.UpdateAdmin)
}

func (h *PlayerHandler) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	name := strings.TrimSpace(input.Body.Name)
	if name == "" {
		return nil, huma.Error400BadRequest("Name is required")
	}

	err := h.players.Register(ctx, player.Player{Name: name, RegisteredAt: h.now().UTC()})
	if err != nil {
		if errors.Is(err, player.ErrPlayerExists) {
			return nil, huma.Error409Conflict("Name is already taken")
		}
		h.logger.Error("failed to register player", "name", name, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}

	return &RegisterOutput{Body: RegisterResponse{Message: "Player registered successfully", Name: name}}, nil
}

func (h *PlayerHandler) VerifyAdmin(ctx context.Context, input *VerifyAdminInput) (*MessageOutput, error) {
	if input.Body.Password == "" {
		return nil, huma.Error400BadRequest("Password is required")
	}
	if err := h.checkAdmin(ctx, input.Body.Password); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Admin verified successfully"}}, nil
}

// UpdateAdmin persists a new admin password. The caller must present the
// current one.
func (h *PlayerHandler) UpdateAdmin(ctx context.Context, input *UpdateAdminInput) (*MessageOutput, error) {
	if input.Body.Password == "" {
		return nil, huma.Error400BadRequest("New password is required")
	}
	if err := h.checkAdmin(ctx, input.Body.CurrentPassword); err != nil {
		return nil, err
	}

	if err := h.admin.Update(ctx, input.Body.Password); err != nil {
		h.logger.Error("failed to update admin password", "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	h.logger.Info("admin password updated")
	return &MessageOutput{Body: MessageResponse{Message: "Admin password updated successfully"}}, nil
}

func (h *PlayerHandler) checkAdmin(ctx context.Context, password string) error {
	ok, err := h.admin.Verify(ctx, password)
	if err != nil {
		h.logger.Error("failed to verify admin password", "error", err)
		return huma.Error500InternalServerError("internal server error")
	}
	if !ok {
		return huma.Error401Unauthorized("Invalid credentials")
	}
	return nil
}
