package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// FormRepo реализует repository.FormRepository
type FormRepo struct {
	db *gorm.DB
}

// NewFormRepo создает новый репозиторий форм
func NewFormRepo(db *gorm.DB) *FormRepo {
	return &FormRepo{db: db}
}

// Create создает новую форму
func (r *FormRepo) Create(form *entity.Form) error {
	return r.db.Create(form).Error
}

// GetByID возвращает форму по ID
func (r *FormRepo) GetByID(id uint) (*entity.Form, error) {
	var form entity.Form
	err := r.db.First(&form, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// GetDetail возвращает форму с полной вложенной структурой:
// разделы, элементы, вопросы, варианты, оценивание, правила ветвления
func (r *FormRepo) GetDetail(id uint) (*entity.Form, error) {
	var form entity.Form
	err := r.db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.seq_order")
		}).
		Preload("Sections.Items").
		Preload("Sections.Items.Questions").
		Preload("Sections.Items.Questions.Options").
		Preload("Sections.Items.Questions.Grading").
		Preload("NavigationRules").
		First(&form, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// Update обновляет информацию о форме
func (r *FormRepo) Update(form *entity.Form) error {
	return r.db.Save(form).Error
}

// UpdateActiveVersion точечно переставляет указатель активной версии формы
func (r *FormRepo) UpdateActiveVersion(formID uint, versionID uint) error {
	return r.db.Model(&entity.Form{}).
		Where("id = ?", formID).
		Update("active_version_id", versionID).
		Error
}

// ListByUser возвращает формы, на которых у пользователя есть роль
func (r *FormRepo) ListByUser(userID uint, limit, offset int) ([]entity.Form, int64, error) {
	var forms []entity.Form
	var total int64

	query := r.db.Model(&entity.Form{}).
		Joins("JOIN form_roles ON form_roles.form_id = forms.id").
		Where("form_roles.user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("forms.id DESC").Find(&forms).Error
	if err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

// ListTemplates возвращает публичные шаблоны с фильтрами и total count
func (r *FormRepo) ListTemplates(filters repository.TemplateFilters, limit, offset int) ([]entity.Form, int64, error) {
	var forms []entity.Form
	var total int64

	query := r.db.Model(&entity.Form{}).
		Where("is_template = TRUE AND is_public = TRUE")

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}

	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&forms).Error
	if err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

// Delete удаляет форму (каскадно вместе с версиями, разделами и ответами)
func (r *FormRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Form{}, id).Error
}
