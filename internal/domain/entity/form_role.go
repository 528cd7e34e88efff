package entity

import (
	"time"
)

// Роли пользователя на форме
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// FormRole связывает пользователя с формой и ролью.
// Одна запись на пару (form, user).
type FormRole struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	FormID uint   `gorm:"not null;index;uniqueIndex:idx_role_form_user" json:"form_id"`
	UserID uint   `gorm:"not null;index;uniqueIndex:idx_role_form_user" json:"user_id"`
	Role   string `gorm:"size:20;not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (FormRole) TableName() string {
	return "form_roles"
}

// Allows проверяет, входит ли роль в набор допустимых
func (r *FormRole) Allows(required ...string) bool {
	for _, role := range required {
		if r.Role == role {
			return true
		}
	}
	return false
}

// CanEdit проверяет право на мутации формы
func (r *FormRole) CanEdit() bool {
	return r.Allows(RoleOwner, RoleEditor)
}
