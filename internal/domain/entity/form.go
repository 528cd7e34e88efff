package entity

import (
	"time"
)

// DefaultUpdateWindowHours - окно редактирования ответа по умолчанию,
// если у формы не задано собственное значение
const DefaultUpdateWindowHours = 24

// Form представляет форму (или шаблон) с разделами и вопросами
type Form struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:1000;not null;default:''" json:"description"`
	IsTemplate  bool   `gorm:"not null;default:false;index" json:"is_template"`
	IsPublic    bool   `gorm:"not null;default:false" json:"is_public"`
	IsQuiz      bool   `gorm:"not null;default:false" json:"is_quiz"`
	CategoryID  *uint  `gorm:"index" json:"category_id,omitempty"`

	// ActiveVersionID указывает на текущую активную версию.
	// NULL до первой публикации.
	ActiveVersionID *uint `gorm:"index" json:"active_version_id,omitempty"`

	// Настройки формы
	EmailUpdatesEnabled bool `gorm:"not null;default:true" json:"email_updates_enabled"`
	UpdateWindowHours   int  `gorm:"not null;default:0" json:"update_window_hours"`

	Sections        []Section        `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
	Versions        []FormVersion    `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"versions,omitempty"`
	NavigationRules []NavigationRule `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"navigation_rules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Form) TableName() string {
	return "forms"
}

// IsPublished проверяет, была ли форма хотя бы раз опубликована
func (f *Form) IsPublished() bool {
	return f.ActiveVersionID != nil
}

// EditWindow возвращает длительность окна редактирования ответов
func (f *Form) EditWindow() time.Duration {
	hours := f.UpdateWindowHours
	if hours <= 0 {
		hours = DefaultUpdateWindowHours
	}
	return time.Duration(hours) * time.Hour
}
