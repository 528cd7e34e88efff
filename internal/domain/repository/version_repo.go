package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// ErrPublishConflict возвращается, когда две одновременные публикации одной
// формы столкнулись на частичном уникальном индексе "одна активная версия".
// Проигравший получает эту ошибку вместо молчаливого перетирания активации.
var ErrPublishConflict = errors.New("concurrent publish detected for form")

// VersionRepository определяет методы для работы с версиями форм
type VersionRepository interface {
	GetByID(id uint) (*entity.FormVersion, error)
	// GetActiveByFormID возвращает активную версию формы
	GetActiveByFormID(formID uint) (*entity.FormVersion, error)
	// GetLatestByFormID возвращает версию с наивысшей ревизией
	GetLatestByFormID(formID uint) (*entity.FormVersion, error)
	ListByFormID(formID uint) ([]entity.FormVersion, error)

	// CreateActive вставляет новую версию как активную внутри переданной
	// транзакции: деактивирует все версии формы, затем вставляет строку с
	// active=true. Остаточная гонка двух публикаций ловится частичным
	// уникальным индексом и возвращается как ErrPublishConflict.
	CreateActive(tx *gorm.DB, version *entity.FormVersion) error

	// ActivateExisting перенумеровывает существующую версию в новую наивысшую
	// ревизию и делает ее активной, сохраняя идентичность строки (а значит и
	// привязку уже собранных ответов). Работает внутри переданной транзакции.
	ActivateExisting(tx *gorm.DB, formID, versionID uint, revision string) error

	// DeleteResponsesByVersion удаляет ответы, собранные против версии.
	// Отдельная административная операция, версию не трогает.
	DeleteResponsesByVersion(versionID uint) (int64, error)
}
