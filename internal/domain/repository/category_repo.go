package repository

import (
	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с категориями шаблонов
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	List() ([]entity.Category, error)
}
