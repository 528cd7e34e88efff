package repository

import (
	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// RoleRepository определяет методы для работы с ролями пользователей на формах
type RoleRepository interface {
	// GetByFormAndUser возвращает роль пользователя на форме
	// (apperrors.ErrNotFound, если записи нет)
	GetByFormAndUser(formID, userID uint) (*entity.FormRole, error)
	// Grant выдает или обновляет роль (одна запись на пару form/user)
	Grant(formID, userID uint, role string) error
	ListByFormID(formID uint) ([]entity.FormRole, error)
	Revoke(formID, userID uint) error
}
