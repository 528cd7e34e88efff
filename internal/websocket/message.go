package websocket

import (
	"encoding/json"
	"time"
)

// Типы событий совместного редактирования
const (
	// EventState - полное состояние черновика формы (снимок для опоздавших)
	EventState = "collab:state"
	// EventPatch - инкрементальное изменение черновика
	EventPatch = "collab:patch"
	// EventPresence - список подключенных редакторов комнаты
	EventPresence = "collab:presence"
	// EventPublished - форма была опубликована, черновики нужно перечитать
	EventPublished = "collab:published"
)

// Event - сообщение в комнате совместного редактирования формы
type Event struct {
	Type    string          `json:"type"`
	FormID  uint            `json:"form_id"`
	UserID  uint            `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// NewEvent создает событие с текущим временем отправки
func NewEvent(eventType string, formID, userID uint, payload json.RawMessage) *Event {
	return &Event{
		Type:    eventType,
		FormID:  formID,
		UserID:  userID,
		Payload: payload,
		SentAt:  time.Now(),
	}
}

// Marshal сериализует событие для отправки в сокет
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
