package repository

import (
	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// ResponseRepository определяет методы для работы с ответами на формы
type ResponseRepository interface {
	GetByID(id uint) (*entity.FormResponse, error)
	// GetWithAnswers возвращает ответ вместе со всеми ответами на вопросы
	GetWithAnswers(id uint) (*entity.FormResponse, error)
	ListByFormID(formID uint, limit, offset int) ([]entity.FormResponse, int64, error)
	// UpdateAccessToken сохраняет выданный токен самообслуживания на строке ответа
	UpdateAccessToken(responseID uint, token string) error
	Delete(id uint) error
}
