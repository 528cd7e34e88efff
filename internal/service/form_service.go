package service

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// FormService управляет жизненным циклом форм: создание, просмотр,
// удаление, списки и клонирование шаблонов.
type FormService struct {
	db           *gorm.DB
	formRepo     repository.FormRepository
	roleRepo     repository.RoleRepository
	categoryRepo repository.CategoryRepository
	accessSvc    *AccessService
	versionSvc   *VersionService
}

// NewFormService создает новый сервис форм
func NewFormService(
	db *gorm.DB,
	formRepo repository.FormRepository,
	roleRepo repository.RoleRepository,
	categoryRepo repository.CategoryRepository,
	accessSvc *AccessService,
	versionSvc *VersionService,
) *FormService {
	return &FormService{
		db:           db,
		formRepo:     formRepo,
		roleRepo:     roleRepo,
		categoryRepo: categoryRepo,
		accessSvc:    accessSvc,
		versionSvc:   versionSvc,
	}
}

// CreateForm создает форму из документа и сразу публикует ее как v1.0.
// Форма, роль владельца и первая версия создаются одной транзакцией:
// сбой любой части не оставляет форму-сироту без версии.
func (s *FormService) CreateForm(ownerID uint, doc *FormDocument, isTemplate bool) (*entity.Form, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	form := &entity.Form{
		OwnerID:    ownerID,
		Title:      doc.Title,
		IsTemplate: isTemplate,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(form).Error; err != nil {
			return fmt.Errorf("create form: %w", err)
		}
		if err := tx.Create(&entity.FormRole{
			FormID: form.ID,
			UserID: ownerID,
			Role:   entity.RoleOwner,
		}).Error; err != nil {
			return err
		}
		// Первая публикация заполняет структуру и выпускает v1.0
		_, err := s.versionSvc.publishTx(tx, form.ID, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FormService] Пользователь #%d создал форму #%d (%q)", ownerID, form.ID, form.Title)
	return s.formRepo.GetDetail(form.ID)
}

// GetFormDetail возвращает форму с полной вложенной структурой.
// Доступ: любая роль на форме, либо публичный шаблон.
func (s *FormService) GetFormDetail(userID, formID uint) (*entity.Form, error) {
	form, err := s.formRepo.GetDetail(formID)
	if err != nil {
		return nil, err
	}
	if form.IsTemplate && form.IsPublic {
		return form, nil
	}
	if err := s.accessSvc.RequireViewer(userID, formID); err != nil {
		return nil, err
	}
	return form, nil
}

// DeleteForm удаляет форму вместе со всей вложенной структурой,
// версиями и ответами. Только владелец.
func (s *FormService) DeleteForm(userID, formID uint) error {
	if err := s.accessSvc.RequireOwner(userID, formID); err != nil {
		return err
	}
	return s.formRepo.Delete(formID)
}

// ListMyForms возвращает формы, на которых у пользователя есть роль
func (s *FormService) ListMyForms(userID uint, limit, offset int) ([]entity.Form, int64, error) {
	return s.formRepo.ListByUser(userID, normalizeLimit(limit), offset)
}

// ListTemplates возвращает публичные шаблоны с фильтрацией по категории
// и поиском по названию
func (s *FormService) ListTemplates(filters repository.TemplateFilters, limit, offset int) ([]entity.Form, int64, error) {
	return s.formRepo.ListTemplates(filters, normalizeLimit(limit), offset)
}

// ListCategories возвращает все категории шаблонов
func (s *FormService) ListCategories() ([]entity.Category, error) {
	return s.categoryRepo.List()
}

// CloneTemplate создает новую форму пользователя как глубокую копию
// публичного шаблона. Структура шаблона переносится его документом через
// обычный путь публикации, поэтому копия сразу получает версию v1.0.
// Ответы и история версий шаблона не переносятся.
func (s *FormService) CloneTemplate(userID, templateID uint) (*entity.Form, error) {
	template, err := s.formRepo.GetDetail(templateID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate || !template.IsPublic {
		return nil, apperrors.ErrForbidden
	}

	doc := DocumentFromForm(template)

	clone := &entity.Form{
		OwnerID: userID,
		Title:   template.Title,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(clone).Error; err != nil {
			return fmt.Errorf("create cloned form: %w", err)
		}
		if err := tx.Create(&entity.FormRole{
			FormID: clone.ID,
			UserID: userID,
			Role:   entity.RoleOwner,
		}).Error; err != nil {
			return err
		}
		// Первая публикация копии заполняет структуру и выпускает v1.0
		_, err := s.versionSvc.publishTx(tx, clone.ID, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FormService] Пользователь #%d клонировал шаблон #%d в форму #%d", userID, templateID, clone.ID)
	return s.formRepo.GetDetail(clone.ID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
