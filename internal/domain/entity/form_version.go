package entity

import (
	"time"
)

// FormVersion представляет неизменяемый снимок содержимого формы
// на момент публикации. Ровно одна версия формы активна в любой момент
// (частичный уникальный индекс idx_form_single_active_version).
type FormVersion struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	FormID uint `gorm:"not null;index" json:"form_id"`

	// Revision - человекочитаемая метка ревизии вида "vMAJOR.MINOR"
	Revision string `gorm:"size:20;not null" json:"revision"`

	// Content - JSON-снимок отправленного документа формы.
	// Используется для аудита и отдачи по share-ссылке; живые реляционные
	// строки остаются источником истины для активной версии.
	Content JSONValue `gorm:"type:jsonb;not null" json:"content"`

	Active    bool      `gorm:"not null;default:false" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (FormVersion) TableName() string {
	return "form_versions"
}

// IsSuperseded проверяет, вытеснена ли версия более новой публикацией
func (v *FormVersion) IsSuperseded() bool {
	return !v.Active
}
