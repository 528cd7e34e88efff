package entity

import (
	"time"
)

// Grading представляет конфигурацию оценивания вопроса.
// Принадлежит ровно одному вопросу; при переоценке вставляется новая запись,
// ссылка вопроса перенаправляется, а старая запись удаляется в той же
// транзакции (осиротевшие записи не накапливаются).
type Grading struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Points          int       `gorm:"not null;default:0" json:"points"`
	RightFeedback   string    `gorm:"size:1000;not null;default:''" json:"right_feedback"`
	WrongFeedback   string    `gorm:"size:1000;not null;default:''" json:"wrong_feedback"`
	GeneralFeedback string    `gorm:"size:1000;not null;default:''" json:"general_feedback"`
	AnswerKey       JSONValue `gorm:"type:jsonb" json:"answer_key,omitempty"`
	AutoFeedback    bool      `gorm:"not null;default:false" json:"auto_feedback"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Grading) TableName() string {
	return "gradings"
}
