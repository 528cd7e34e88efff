package repository

import (
	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// TemplateFilters определяет фильтры для поиска публичных шаблонов
type TemplateFilters struct {
	CategoryID *uint  // Фильтр по категории
	Search     string // Поиск по названию/описанию
}

// FormRepository определяет методы для работы с формами
type FormRepository interface {
	Create(form *entity.Form) error
	GetByID(id uint) (*entity.Form, error)
	// GetDetail возвращает форму с полной вложенной структурой:
	// разделы, элементы, вопросы, варианты, оценивание, правила ветвления
	GetDetail(id uint) (*entity.Form, error)
	Update(form *entity.Form) error
	// UpdateActiveVersion точечно переставляет указатель активной версии
	UpdateActiveVersion(formID uint, versionID uint) error
	ListByUser(userID uint, limit, offset int) ([]entity.Form, int64, error)
	ListTemplates(filters TemplateFilters, limit, offset int) ([]entity.Form, int64, error)
	Delete(id uint) error
}
