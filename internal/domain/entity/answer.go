package entity

import (
	"time"
)

// Answer представляет ответ на один вопрос внутри FormResponse
type Answer struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ResponseID uint `gorm:"not null;index;uniqueIndex:idx_answer_response_question" json:"response_id"`
	QuestionID uint `gorm:"not null;uniqueIndex:idx_answer_response_question" json:"question_id"`

	// Value - структурированное сериализованное значение ответа
	Value    JSONValue `gorm:"type:jsonb" json:"value"`
	Score    int       `gorm:"not null;default:0" json:"score"`
	Feedback string    `gorm:"size:1000;not null;default:''" json:"feedback"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "answers"
}
