package handlers

import (
	"errors"

	"stylesync/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"omitempty,max=32"`
}

// HandleRegister handles new user registration. No token is issued; the
// client logs in separately.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if handled, err := parseBody(c, h.validate, &req); handled {
		return err
	}

	_, err := h.authService.RegisterUser(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return fail(c, fiber.StatusBadRequest, "User already exists", nil)
		}
		if errors.Is(err, services.ErrBadRequest) {
			return fail(c, fiber.StatusBadRequest, "Invalid password", err)
		}
		return failInternal(c, "Could not register user", err)
	}

	return respond(c, fiber.StatusCreated, "User registered successfully", nil)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if handled, err := parseBody(c, h.validate, &req); handled {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return fail(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
		}
		return failInternal(c, "Could not log in", err)
	}

	return respond(c, fiber.StatusOK, "Login successful", LoginResponse{Token: token})
}

// HandleMe returns the claims of the caller's token. It must be mounted
// behind middleware.AuthRequired.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	claims, ok := c.Locals(ClaimsKey).(*services.TokenClaims)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required", nil)
	}
	return respond(c, fiber.StatusOK, "Token is valid", fiber.Map{
		"userId": claims.UserID,
		"email":  claims.Email,
		"role":   claims.Role,
	})
}

// ClaimsKey is the fiber.Ctx locals key holding *services.TokenClaims.
const ClaimsKey = "claims"
