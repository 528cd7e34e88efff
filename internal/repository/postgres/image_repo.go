package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// ImageRepo реализует repository.ImageRepository
type ImageRepo struct {
	db *gorm.DB
}

// NewImageRepo создает новый репозиторий метаданных изображений
func NewImageRepo(db *gorm.DB) *ImageRepo {
	return &ImageRepo{db: db}
}

// FilterExisting возвращает подмножество переданных id, существующих в таблице images
func (r *ImageRepo) FilterExisting(ids []uint) (map[uint]bool, error) {
	existing := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []uint
	err := r.db.Model(&entity.Image{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}
