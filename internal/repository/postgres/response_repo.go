package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// ResponseRepo реализует repository.ResponseRepository
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo создает новый репозиторий ответов
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// GetByID возвращает ответ по ID
func (r *ResponseRepo) GetByID(id uint) (*entity.FormResponse, error) {
	var response entity.FormResponse
	err := r.db.First(&response, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// GetWithAnswers возвращает ответ вместе со всеми ответами на вопросы
func (r *ResponseRepo) GetWithAnswers(id uint) (*entity.FormResponse, error) {
	var response entity.FormResponse
	err := r.db.Preload("Answers").First(&response, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &response, nil
}

// ListByFormID возвращает ответы формы с пагинацией и total count
func (r *ResponseRepo) ListByFormID(formID uint, limit, offset int) ([]entity.FormResponse, int64, error) {
	var responses []entity.FormResponse
	var total int64

	query := r.db.Model(&entity.FormResponse{}).Where("form_id = ?", formID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Answers").
		Limit(limit).Offset(offset).Order("id DESC").
		Find(&responses).Error
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// UpdateAccessToken сохраняет выданный токен самообслуживания на строке ответа
func (r *ResponseRepo) UpdateAccessToken(responseID uint, token string) error {
	return r.db.Model(&entity.FormResponse{}).
		Where("id = ?", responseID).
		Update("access_token", token).
		Error
}

// Delete удаляет ответ (каскадно вместе с ответами на вопросы)
func (r *ResponseRepo) Delete(id uint) error {
	return r.db.Delete(&entity.FormResponse{}, id).Error
}
