package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// Назначения подписанных токенов. Claim usage отделяет пользовательские
// access-токены от анонимных share-ссылок и токенов самообслуживания
// респондента - токен одного назначения нельзя предъявить вместо другого.
const (
	UsageAccess   = "access"
	UsageShare    = "share"
	UsageResponse = "response"
)

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID     uint   `json:"user_id,omitempty"`
	Email      string `json:"email,omitempty"`
	FormID     uint   `json:"form_id,omitempty"`
	VersionID  uint   `json:"version_id,omitempty"`
	ResponseID uint   `json:"response_id,omitempty"`
	Usage      string `json:"usage"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет подписанные токены
type JWTService struct {
	secret       []byte
	accessExpiry time.Duration
	linkExpiry   time.Duration
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, accessExpirationHrs, linkExpirationHrs int) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if accessExpirationHrs <= 0 {
		accessExpirationHrs = 24
	}
	if linkExpirationHrs <= 0 {
		linkExpirationHrs = 24
	}
	return &JWTService{
		secret:       []byte(secret),
		accessExpiry: time.Duration(accessExpirationHrs) * time.Hour,
		linkExpiry:   time.Duration(linkExpirationHrs) * time.Hour,
	}, nil
}

// GenerateAccessToken выпускает access-токен пользователя
func (s *JWTService) GenerateAccessToken(user *entity.User) (string, error) {
	return s.sign(&JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Usage:  UsageAccess,
	}, s.accessExpiry)
}

// GenerateShareToken выпускает токен публичной ссылки на форму.
// Кодирует (form_id, version_id) - ссылку на конкретную версию,
// а не на "текущее состояние" формы.
func (s *JWTService) GenerateShareToken(formID, versionID uint) (string, error) {
	return s.sign(&JWTCustomClaims{
		FormID:    formID,
		VersionID: versionID,
		Usage:     UsageShare,
	}, s.linkExpiry)
}

// GenerateResponseToken выпускает токен самообслуживания респондента,
// привязанный к паре (response_id, form_id)
func (s *JWTService) GenerateResponseToken(responseID, formID uint) (string, error) {
	return s.sign(&JWTCustomClaims{
		ResponseID: responseID,
		FormID:     formID,
		Usage:      UsageResponse,
	}, s.linkExpiry)
}

func (s *JWTService) sign(claims *JWTCustomClaims, expiry time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken проверяет подпись и срок действия токена и требует
// совпадения claim'а usage с ожидаемым назначением
func (s *JWTService) ParseToken(tokenString, expectedUsage string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}
	if claims.Usage != expectedUsage {
		return nil, fmt.Errorf("%w: token usage mismatch", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
