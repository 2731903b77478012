package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UserDirectory is the user service as seen by the transport layer.
type UserDirectory interface {
	CreateUser(ctx context.Context, input service.CreateUserInput) (*domain.PublicUser, error)
	LoginUser(ctx context.Context, email, password string) (string, error)
	UpdateUser(ctx context.Context, claims *domain.Claims, targetID string, input service.UpdateUserInput) (*domain.PublicUser, error)
	ActivateUser(ctx context.Context, claims *domain.Claims, targetID string) error
	DeactivateUser(ctx context.Context, claims *domain.Claims, targetID string) error
	DeleteUser(ctx context.Context, claims *domain.Claims, targetID string) error
	ListUsers(ctx context.Context, claims *domain.Claims) ([]domain.PublicUser, error)
	GetUser(ctx context.Context, claims *domain.Claims, targetID string) (*domain.PublicUser, error)
}

// UsersHandler exposes the /users endpoints.
type UsersHandler struct {
	users UserDirectory
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users UserDirectory) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	user, err := h.users.CreateUser(c.UserContext(), service.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(*user))
}

// Login handles POST /users/login. The body is the bare token.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	token, err := h.users.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).SendString(token)
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.UserContext(), callerClaims(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserListResponse(users))
}

// Get handles GET /users/:uuid.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), callerClaims(c), c.Params("uuid"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(*user))
}

// Update handles PUT /users/:uuid.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}

	user, err := h.users.UpdateUser(c.UserContext(), callerClaims(c), c.Params("uuid"), service.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(*user))
}

// Activate handles PATCH /users/active/:uuid.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	if err := h.users.ActivateUser(c.UserContext(), callerClaims(c), c.Params("uuid")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}

// Deactivate handles PATCH /users/deactive/:uuid.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.users.DeactivateUser(c.UserContext(), callerClaims(c), c.Params("uuid")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}

// Delete handles DELETE /users/:uuid.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.UserContext(), callerClaims(c), c.Params("uuid")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusOK)
}

func callerClaims(c *fiber.Ctx) *domain.Claims {
	claims, _ := auth.ClaimsFromContext(c)
	return claims
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
