package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// VersionRepo реализует repository.VersionRepository
type VersionRepo struct {
	db *gorm.DB
}

// NewVersionRepo создает новый репозиторий версий форм
func NewVersionRepo(db *gorm.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

// GetByID возвращает версию по ID
func (r *VersionRepo) GetByID(id uint) (*entity.FormVersion, error) {
	var version entity.FormVersion
	err := r.db.First(&version, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetActiveByFormID возвращает активную версию формы
func (r *VersionRepo) GetActiveByFormID(formID uint) (*entity.FormVersion, error) {
	var version entity.FormVersion
	err := r.db.Where("form_id = ? AND active = TRUE", formID).First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetLatestByFormID возвращает версию с наивысшей ревизией.
// Сортировка по (major, minor), извлеченным из метки "vMAJOR.MINOR";
// формат фиксирован, minor однозначный, поэтому разбор надежен.
func (r *VersionRepo) GetLatestByFormID(formID uint) (*entity.FormVersion, error) {
	var version entity.FormVersion
	err := r.db.Where("form_id = ?", formID).
		Order("split_part(substring(revision from 2), '.', 1)::int DESC, split_part(revision, '.', 2)::int DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// ListByFormID возвращает все версии формы, новые первыми
func (r *VersionRepo) ListByFormID(formID uint) ([]entity.FormVersion, error) {
	var versions []entity.FormVersion
	err := r.db.Where("form_id = ?", formID).Order("id DESC").Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// CreateActive вставляет новую версию как активную внутри переданной транзакции.
// Сначала деактивируются все версии формы, затем вставляется строка с active=true.
// Partial unique index idx_form_single_active_version гарантирует max 1 активную
// версию на форму:
// - 23505 (unique violation) → проигравшая одновременная публикация
// - Другая DB ошибка → возвращается как есть
func (r *VersionRepo) CreateActive(tx *gorm.DB, version *entity.FormVersion) error {
	if err := tx.Model(&entity.FormVersion{}).
		Where("form_id = ? AND active = TRUE", version.FormID).
		Update("active", false).Error; err != nil {
		return fmt.Errorf("deactivate versions of form #%d failed: %w", version.FormID, err)
	}

	version.Active = true
	if err := tx.Create(version).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w #%d", repository.ErrPublishConflict, version.FormID)
		}
		return fmt.Errorf("create version for form #%d failed: %w", version.FormID, err)
	}
	return nil
}

// ActivateExisting перенумеровывает существующую версию в новую наивысшую
// ревизию и делает ее активной, сохраняя идентичность строки.
// RowsAffected == 0 → версия не принадлежит форме.
func (r *VersionRepo) ActivateExisting(tx *gorm.DB, formID, versionID uint, revision string) error {
	if err := tx.Model(&entity.FormVersion{}).
		Where("form_id = ? AND active = TRUE AND id <> ?", formID, versionID).
		Update("active", false).Error; err != nil {
		return fmt.Errorf("deactivate versions of form #%d failed: %w", formID, err)
	}

	result := tx.Model(&entity.FormVersion{}).
		Where("id = ? AND form_id = ?", versionID, formID).
		Updates(map[string]interface{}{
			"revision": revision,
			"active":   true,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w #%d", repository.ErrPublishConflict, formID)
		}
		return fmt.Errorf("activate version #%d failed: %w", versionID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("version #%d of form #%d: %w", versionID, formID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteResponsesByVersion удаляет все ответы, собранные против версии
func (r *VersionRepo) DeleteResponsesByVersion(versionID uint) (int64, error) {
	result := r.db.Where("version_id = ?", versionID).Delete(&entity.FormResponse{})
	return result.RowsAffected, result.Error
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
