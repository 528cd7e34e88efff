package entity

import (
	"time"
)

// Section представляет раздел формы.
// SeqOrder - стабильная идентичность раздела внутри формы (уникальный индекс
// по (form_id, seq_order)): при повторной отправке документа раздел с тем же
// seq_order обновляется, а не дублируется.
type Section struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	FormID      uint   `gorm:"not null;index;uniqueIndex:idx_section_form_order" json:"form_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:1000;not null;default:''" json:"description"`
	SeqOrder    int    `gorm:"not null;uniqueIndex:idx_section_form_order" json:"seq_order"`

	Items []Item `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Section) TableName() string {
	return "sections"
}
