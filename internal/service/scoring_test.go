package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

func gradedQuestion(points int, answerKey string, autoFeedback bool) *entity.Question {
	return &entity.Question{
		ID:   1,
		Kind: entity.QuestionKindChoice,
		Grading: &entity.Grading{
			Points:        points,
			RightFeedback: "Верно",
			WrongFeedback: "Неверно",
			AnswerKey:     entity.JSONValue(answerKey),
			AutoFeedback:  autoFeedback,
		},
	}
}

func TestScoreAnswer_MatchAwardsPoints(t *testing.T) {
	q := gradedQuestion(5, `{"selected": "B"}`, true)

	score, feedback := ScoreAnswer(q, entity.JSONValue(`{"selected": "B"}`))
	assert.Equal(t, 5, score)
	assert.Equal(t, "Верно", feedback)
}

func TestScoreAnswer_MismatchGivesZero(t *testing.T) {
	q := gradedQuestion(5, `{"selected": "B"}`, true)

	score, feedback := ScoreAnswer(q, entity.JSONValue(`{"selected": "C"}`))
	assert.Equal(t, 0, score)
	assert.Equal(t, "Неверно", feedback)
}

func TestScoreAnswer_KeyOrderAndWhitespaceIgnored(t *testing.T) {
	q := gradedQuestion(3, `{"a": 1, "b": [1, 2]}`, false)

	score, _ := ScoreAnswer(q, entity.JSONValue(`{"b":[1,2],"a":1}`))
	assert.Equal(t, 3, score, "структурно равные значения должны совпадать")
}

func TestScoreAnswer_FeedbackSuppressedWithoutAutoFeedback(t *testing.T) {
	q := gradedQuestion(5, `"yes"`, false)

	score, feedback := ScoreAnswer(q, entity.JSONValue(`"yes"`))
	assert.Equal(t, 5, score)
	assert.Empty(t, feedback)
}

func TestScoreAnswer_UngradedQuestionGivesZero(t *testing.T) {
	q := &entity.Question{ID: 2, Kind: entity.QuestionKindText}

	score, feedback := ScoreAnswer(q, entity.JSONValue(`"любой текст"`))
	assert.Equal(t, 0, score)
	assert.Empty(t, feedback)
}

func TestScoreAnswer_NilQuestion(t *testing.T) {
	score, feedback := ScoreAnswer(nil, entity.JSONValue(`"x"`))
	assert.Equal(t, 0, score)
	assert.Empty(t, feedback)
}

func TestScoreAnswer_EmptyAnswerKeyNeverMatches(t *testing.T) {
	q := gradedQuestion(5, "", true)

	score, _ := ScoreAnswer(q, entity.JSONValue(`""`))
	assert.Equal(t, 0, score)
}
