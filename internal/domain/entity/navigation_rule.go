package entity

import (
	"time"
)

// NavigationRule представляет правило ветвления: раздел + условие → целевой раздел
type NavigationRule struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	FormID          uint   `gorm:"not null;index" json:"form_id"`
	SectionID       uint   `gorm:"not null;index" json:"section_id"`
	Condition       string `gorm:"size:500;not null" json:"condition"`
	TargetSectionID uint   `gorm:"not null" json:"target_section_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (NavigationRule) TableName() string {
	return "navigation_rules"
}
