package dto

import "github.com/spec-kit/user-service/internal/domain"

// UserCreateRequest payload for new users.
type UserCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest carries the only fields an update applies. Anything else
// in the body is dropped during decoding.
type UserUpdateRequest struct {
	Name *string `json:"name"`
	Role *string `json:"rol"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	UUID   string       `json:"uuid"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Role   *domain.Role `json:"rol,omitempty"`
	Active *bool        `json:"active,omitempty"`
}

// NewUserResponse maps a public record to its wire form.
func NewUserResponse(pub domain.PublicUser) UserResponse {
	return UserResponse{
		UUID:   pub.ID,
		Name:   pub.Name,
		Email:  pub.Email,
		Role:   pub.Role,
		Active: pub.Active,
	}
}

// NewUserListResponse maps a slice of public records.
func NewUserListResponse(users []domain.PublicUser) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
