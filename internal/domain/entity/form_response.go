package entity

import (
	"time"
)

// FormResponse представляет один отправленный набор ответов.
// Ответ навсегда привязан к той версии формы, которая была активна в момент
// отправки - публикация новой версии не перепривязывает старые ответы.
type FormResponse struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	FormID    uint `gorm:"not null;index" json:"form_id"`
	VersionID uint `gorm:"not null;index" json:"version_id"`

	RespondentEmail string `gorm:"size:100;not null;default:''" json:"respondent_email,omitempty"`
	TotalScore      int    `gorm:"not null;default:0" json:"total_score"`

	// AccessToken - подписанный токен самообслуживания респондента (24 часа).
	// Хранится на строке для повторной сверки при обмене токена,
	// защита от переиспользования после удаления/замены ответа.
	AccessToken string `gorm:"size:500;not null;default:''" json:"-"`

	Answers []Answer `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (FormResponse) TableName() string {
	return "form_responses"
}

// EditableUntil возвращает момент истечения окна редактирования ответа
func (r *FormResponse) EditableUntil(form *Form) time.Time {
	return r.CreatedAt.Add(form.EditWindow())
}
