package dto

import (
	"time"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// UserResponse представляет пользователя в формате для клиента
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse представляет результат входа: пользователь плюс access-токен
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// NewAuthResponse создает DTO результата входа
func NewAuthResponse(user *entity.User, accessToken string) *AuthResponse {
	return &AuthResponse{
		User:        *NewUserResponse(user),
		AccessToken: accessToken,
	}
}
