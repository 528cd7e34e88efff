package entity

import (
	"time"
)

// Image хранит метаданные загруженного изображения.
// Само содержимое файла не хранится и не отдается этим сервисом.
type Image struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OwnerID  uint   `gorm:"not null;index" json:"owner_id"`
	URL      string `gorm:"size:500;not null" json:"url"`
	Filename string `gorm:"size:255;not null;default:''" json:"filename"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Image) TableName() string {
	return "images"
}
