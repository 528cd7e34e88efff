package entity

import (
	"time"
)

// Действия навигации при выборе варианта
const (
	GotoActionNext    = "next"
	GotoActionSubmit  = "submit"
	GotoActionSection = "section"
)

// Option представляет вариант ответа choice-вопроса.
// Варианты не имеют внешней стабильной идентичности, поэтому при каждом
// обновлении вопроса заменяются целиком (delete-all-then-reinsert).
type Option struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Value      string `gorm:"size:500;not null" json:"value"`
	IsOther    bool   `gorm:"not null;default:false" json:"is_other"`

	// ImageID - необязательная ссылка на метаданные изображения.
	// Неизвестный id деградирует до "без изображения", не валя операцию.
	ImageID *uint `gorm:"index" json:"image_id,omitempty"`

	// GotoAction - действие перехода при выборе варианта:
	// "next", "submit" или "section:<id>"
	GotoAction string `gorm:"size:30;not null;default:'next'" json:"goto_action"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Option) TableName() string {
	return "options"
}
