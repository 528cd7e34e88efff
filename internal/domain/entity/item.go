package entity

import (
	"time"
)

// Виды элементов формы
const (
	ItemKindQuestion      = "question"
	ItemKindQuestionGroup = "question_group"
	ItemKindPageBreak     = "page_break"
	ItemKindText          = "text"
	ItemKindImage         = "image"
)

// Item представляет элемент раздела формы.
// Title - стабильная идентичность элемента внутри формы (уникальный индекс
// по (form_id, title)): дубликаты названий в одной форме отклоняются на
// уровне схемы, а не сливаются молча.
type Item struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	FormID      uint   `gorm:"not null;index;uniqueIndex:idx_item_form_title" json:"form_id"`
	SectionID   uint   `gorm:"not null;index" json:"section_id"`
	Title       string `gorm:"size:300;not null;uniqueIndex:idx_item_form_title" json:"title"`
	Description string `gorm:"size:1000;not null;default:''" json:"description"`
	Kind        string `gorm:"size:20;not null;default:'question'" json:"kind"`

	Questions []Question `gorm:"many2many:item_questions" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Item) TableName() string {
	return "items"
}

// HoldsQuestions проверяет, может ли элемент содержать вопросы
func (i *Item) HoldsQuestions() bool {
	return i.Kind == ItemKindQuestion || i.Kind == ItemKindQuestionGroup
}

// IsValidItemKind проверяет допустимость вида элемента
func IsValidItemKind(kind string) bool {
	switch kind {
	case ItemKindQuestion, ItemKindQuestionGroup, ItemKindPageBreak, ItemKindText, ItemKindImage:
		return true
	}
	return false
}
