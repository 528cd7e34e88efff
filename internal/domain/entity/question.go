package entity

import (
	"time"
)

// Виды вопросов
const (
	QuestionKindChoice = "choice"
	QuestionKindText   = "text"
	QuestionKindScale  = "scale"
	QuestionKindDate   = "date"
	QuestionKindTime   = "time"
	QuestionKindFile   = "file"
	QuestionKindRow    = "row"
)

// Question представляет вопрос формы.
// Вопрос привязывается к элементу через join-таблицу item_questions;
// сопоставление при повторной отправке документа идет по ключу
// (item_id, kind, required) - совпавший вопрос переиспользуется,
// чтобы не терять его варианты и оценивание.
type Question struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Kind     string `gorm:"size:20;not null" json:"kind"`
	Required bool   `gorm:"not null;default:false" json:"required"`

	// GradingID указывает на конфигурацию оценивания (только для квизов)
	GradingID *uint    `gorm:"index" json:"grading_id,omitempty"`
	Grading   *Grading `gorm:"foreignKey:GradingID" json:"grading,omitempty"`

	Options []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsChoice проверяет, является ли вопрос вопросом с вариантами
func (q *Question) IsChoice() bool {
	return q.Kind == QuestionKindChoice
}

// IsGraded проверяет, настроено ли оценивание для вопроса
func (q *Question) IsGraded() bool {
	return q.GradingID != nil
}

// IsValidQuestionKind проверяет допустимость вида вопроса
func IsValidQuestionKind(kind string) bool {
	switch kind {
	case QuestionKindChoice, QuestionKindText, QuestionKindScale,
		QuestionKindDate, QuestionKindTime, QuestionKindFile, QuestionKindRow:
		return true
	}
	return false
}

// ItemQuestion - join-запись между элементом формы и вопросом
type ItemQuestion struct {
	ItemID     uint `gorm:"primaryKey" json:"item_id"`
	QuestionID uint `gorm:"primaryKey" json:"question_id"`
}

// TableName определяет имя таблицы для GORM
func (ItemQuestion) TableName() string {
	return "item_questions"
}
