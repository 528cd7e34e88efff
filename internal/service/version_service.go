package service

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// VersionService управляет жизненным циклом версий формы: публикация,
// повторная активация старой версии, просмотр истории.
type VersionService struct {
	db          *gorm.DB
	formRepo    repository.FormRepository
	versionRepo repository.VersionRepository
	imageRepo   repository.ImageRepository
	cacheRepo   repository.CacheRepository
	assembler   *FormAssembler
}

// NewVersionService создает новый сервис версий
func NewVersionService(
	db *gorm.DB,
	formRepo repository.FormRepository,
	versionRepo repository.VersionRepository,
	imageRepo repository.ImageRepository,
	cacheRepo repository.CacheRepository,
	assembler *FormAssembler,
) *VersionService {
	return &VersionService{
		db:          db,
		formRepo:    formRepo,
		versionRepo: versionRepo,
		imageRepo:   imageRepo,
		cacheRepo:   cacheRepo,
		assembler:   assembler,
	}
}

// Publish применяет документ к живым строкам формы и фиксирует результат
// как новую активную версию. Вся операция атомарна: строка формы берется
// под FOR UPDATE, поэтому конкурирующие публикации одной формы
// сериализуются, а остаточная гонка ловится частичным уникальным индексом
// и возвращается как ErrPublishConflict.
func (s *VersionService) Publish(formID uint, doc *FormDocument) (*entity.FormVersion, error) {
	var version *entity.FormVersion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		v, err := s.publishTx(tx, formID, doc)
		if err != nil {
			return err
		}
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFormCache(formID)
	log.Printf("[VersionService] Форма #%d опубликована как %s (версия #%d)", formID, version.Revision, version.ID)
	return version, nil
}

// publishTx выполняет публикацию внутри уже открытой транзакции.
// Создание формы и первая публикация проходят одной транзакцией, поэтому
// сбой публикации не оставляет форму-сироту без версии.
func (s *VersionService) publishTx(tx *gorm.DB, formID uint, doc *FormDocument) (*entity.FormVersion, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	existingImages, err := s.imageRepo.FilterExisting(doc.ImageIDs())
	if err != nil {
		return nil, fmt.Errorf("verify image references: %w", err)
	}

	snapshot, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal form snapshot: %w", err)
	}

	var form entity.Form
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&form, formID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("lock form #%d: %w", formID, err)
	}

	if err := s.assembler.Apply(tx, &form, doc, existingImages); err != nil {
		return nil, err
	}

	revision, err := s.nextRevision(tx, formID)
	if err != nil {
		return nil, err
	}

	version := &entity.FormVersion{
		FormID:   formID,
		Revision: revision,
		Content:  entity.JSONValue(snapshot),
		Active:   true,
	}
	if err := s.versionRepo.CreateActive(tx, version); err != nil {
		return nil, err
	}

	if err := tx.Model(&entity.Form{}).Where("id = ?", formID).
		Update("active_version_id", version.ID).Error; err != nil {
		return nil, err
	}
	return version, nil
}

// ActivateVersion делает ранее опубликованную версию снова активной.
// Версия не копируется: существующая строка перенумеровывается в новую
// наивысшую ревизию, поэтому собранные против нее ответы остаются
// привязанными к той же версии.
func (s *VersionService) ActivateVersion(formID, versionID uint) (*entity.FormVersion, error) {
	var activated *entity.FormVersion
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var form entity.Form
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&form, formID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("lock form #%d: %w", formID, err)
		}

		var version entity.FormVersion
		if err := tx.Where("id = ? AND form_id = ?", versionID, formID).
			First(&version).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("load version #%d: %w", versionID, err)
		}
		if version.Active {
			// Повторная активация активной версии - no-op
			activated = &version
			return nil
		}

		revision, err := s.nextRevision(tx, formID)
		if err != nil {
			return err
		}
		if err := s.versionRepo.ActivateExisting(tx, formID, versionID, revision); err != nil {
			return err
		}
		if err := tx.Model(&entity.Form{}).Where("id = ?", formID).
			Update("active_version_id", versionID).Error; err != nil {
			return err
		}

		version.Revision = revision
		version.Active = true
		activated = &version
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFormCache(formID)
	return activated, nil
}

// ListVersions возвращает историю версий формы, новые первыми
func (s *VersionService) ListVersions(formID uint) ([]entity.FormVersion, error) {
	return s.versionRepo.ListByFormID(formID)
}

// GetActiveVersion возвращает активную версию формы
func (s *VersionService) GetActiveVersion(formID uint) (*entity.FormVersion, error) {
	return s.versionRepo.GetActiveByFormID(formID)
}

// DeleteVersionResponses удаляет все ответы, собранные против версии.
// Административная операция владельца, сама версия не трогается.
func (s *VersionService) DeleteVersionResponses(formID, versionID uint) (int64, error) {
	version, err := s.versionRepo.GetByID(versionID)
	if err != nil {
		return 0, err
	}
	if version.FormID != formID {
		return 0, apperrors.ErrNotFound
	}
	return s.versionRepo.DeleteResponsesByVersion(versionID)
}

// nextRevision вычисляет метку следующей ревизии формы внутри транзакции.
// Первая публикация получает v1.0.
func (s *VersionService) nextRevision(tx *gorm.DB, formID uint) (string, error) {
	var latest entity.FormVersion
	err := tx.Where("form_id = ?", formID).
		Order("split_part(substring(revision from 2), '.', 1)::int DESC, split_part(revision, '.', 2)::int DESC").
		First(&latest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return entity.FirstRevision, nil
		}
		return "", fmt.Errorf("load latest revision of form #%d: %w", formID, err)
	}
	next, err := entity.NextRevision(latest.Revision)
	if err != nil {
		return "", fmt.Errorf("advance revision %q: %w", latest.Revision, err)
	}
	return next, nil
}

func (s *VersionService) invalidateFormCache(formID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(formDocCacheKey(formID)); err != nil {
		log.Printf("[VersionService] Не удалось сбросить кеш формы #%d: %v", formID, err)
	}
}

// formDocCacheKey - ключ кеша опубликованного документа формы
func formDocCacheKey(formID uint) string {
	return fmt.Sprintf("form:published:%d", formID)
}
