package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONValue - пользовательский тип для работы с JSONB-колонками
// (снапшоты версий, значения ответов, ключи ответов в оценивании)
type JSONValue json.RawMessage

// Scan реализует интерфейс sql.Scanner для JSONValue
// Используется GORM для чтения JSONB данных из базы
func (v *JSONValue) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*v = nil
		return nil
	}

	switch data := value.(type) {
	case []byte:
		*v = append((*v)[0:0], data...)
		return nil
	case string:
		*v = JSONValue(data)
		return nil
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}
}

// Value реализует интерфейс driver.Valuer для JSONValue
// Используется GORM для записи JSONValue в JSONB в базе
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// MarshalJSON отдает сырое содержимое как есть
func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// UnmarshalJSON сохраняет сырое содержимое как есть
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[0:0], data...)
	return nil
}
