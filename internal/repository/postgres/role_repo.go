package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// RoleRepo реализует repository.RoleRepository
type RoleRepo struct {
	db *gorm.DB
}

// NewRoleRepo создает новый репозиторий ролей
func NewRoleRepo(db *gorm.DB) *RoleRepo {
	return &RoleRepo{db: db}
}

// GetByFormAndUser возвращает роль пользователя на форме
func (r *RoleRepo) GetByFormAndUser(formID, userID uint) (*entity.FormRole, error) {
	var role entity.FormRole
	err := r.db.Where("form_id = ? AND user_id = ?", formID, userID).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// Grant выдает или обновляет роль пользователя на форме.
// Upsert по ключу (form_id, user_id): повторная выдача перезаписывает роль.
func (r *RoleRepo) Grant(formID, userID uint, role string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "form_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&entity.FormRole{
		FormID: formID,
		UserID: userID,
		Role:   role,
	}).Error
}

// ListByFormID возвращает все роли на форме
func (r *RoleRepo) ListByFormID(formID uint) ([]entity.FormRole, error) {
	var roles []entity.FormRole
	err := r.db.Where("form_id = ?", formID).Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// Revoke отзывает роль пользователя на форме
func (r *RoleRepo) Revoke(formID, userID uint) error {
	return r.db.Where("form_id = ? AND user_id = ?", formID, userID).
		Delete(&entity.FormRole{}).Error
}
