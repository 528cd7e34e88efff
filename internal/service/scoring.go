package service

import (
	"encoding/json"
	"reflect"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// ScoreAnswer вычисляет балл и автоматический фидбек для значения ответа
// по конфигурации оценивания вопроса. Вопрос без оценивания дает 0 баллов
// и пустой фидбек. Балл всегда вычисляется сервером по ключу ответа,
// присланные клиентом баллы игнорируются.
func ScoreAnswer(question *entity.Question, value entity.JSONValue) (int, string) {
	if question == nil || question.Grading == nil {
		return 0, ""
	}
	grading := question.Grading

	match := jsonEqual(grading.AnswerKey, value)

	score := 0
	if match {
		score = grading.Points
	}

	feedback := ""
	if grading.AutoFeedback {
		switch {
		case match && grading.RightFeedback != "":
			feedback = grading.RightFeedback
		case !match && grading.WrongFeedback != "":
			feedback = grading.WrongFeedback
		default:
			feedback = grading.GeneralFeedback
		}
	}

	return score, feedback
}

// jsonEqual сравнивает два JSON-значения структурно, а не побайтово:
// порядок ключей и пробелы не влияют на результат
func jsonEqual(a, b entity.JSONValue) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
