package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/pkg/auth"
)

func newResponseFixture(t *testing.T) (*ResponseService, *MockFormRepository, *MockResponseRepository, *auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService("response-test-secret", 24, 24)
	require.NoError(t, err)

	formRepo := new(MockFormRepository)
	responseRepo := new(MockResponseRepository)
	accessSvc := NewAccessService(new(MockRoleRepository), new(MockUserRepository), formRepo, &NoopEmailService{})

	svc := NewResponseService(
		nil, // db не нужен для путей, проверяемых здесь
		formRepo,
		new(MockVersionRepository),
		responseRepo,
		new(MockUserRepository),
		accessSvc,
		jwtService,
		&NoopEmailService{},
		"https://forms.example.com",
	)
	return svc, formRepo, responseRepo, jwtService
}

func quizForm() *entity.Form {
	return &entity.Form{
		ID:     1,
		IsQuiz: true,
		Sections: []entity.Section{
			{
				ID:       10,
				SeqOrder: 1,
				Items: []entity.Item{
					{
						ID:    100,
						Kind:  entity.ItemKindQuestion,
						Title: "Столица Казахстана",
						Questions: []entity.Question{
							{
								ID:       1000,
								Kind:     entity.QuestionKindChoice,
								Required: true,
								Grading: &entity.Grading{
									Points:    5,
									AnswerKey: entity.JSONValue(`"Астана"`),
								},
							},
						},
					},
					{
						ID:    101,
						Kind:  entity.ItemKindQuestion,
						Title: "Комментарий",
						Questions: []entity.Question{
							{ID: 1001, Kind: entity.QuestionKindText},
						},
					},
				},
			},
		},
	}
}

func TestQuestionIndex_CollectsAllQuestions(t *testing.T) {
	index := questionIndex(quizForm())
	require.Len(t, index, 2)
	assert.NotNil(t, index[1000].Grading)
	assert.Nil(t, index[1001].Grading)
}

func TestValidateSubmission_RejectsForeignQuestion(t *testing.T) {
	sub := &ResponseSubmission{Answers: []AnswerSubmission{
		{QuestionID: 9999, Value: entity.JSONValue(`"x"`)},
	}}
	err := validateSubmission(sub, questionIndex(quizForm()))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateSubmission_RejectsDuplicateAnswers(t *testing.T) {
	sub := &ResponseSubmission{Answers: []AnswerSubmission{
		{QuestionID: 1000, Value: entity.JSONValue(`"Астана"`)},
		{QuestionID: 1000, Value: entity.JSONValue(`"Алматы"`)},
	}}
	err := validateSubmission(sub, questionIndex(quizForm()))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateSubmission_RejectsEmptySet(t *testing.T) {
	err := validateSubmission(&ResponseSubmission{}, questionIndex(quizForm()))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCheckRequiredAnswered(t *testing.T) {
	questions := questionIndex(quizForm())

	// Обязательный вопрос без ответа
	sub := &ResponseSubmission{Answers: []AnswerSubmission{
		{QuestionID: 1001, Value: entity.JSONValue(`"текст"`)},
	}}
	assert.ErrorIs(t, checkRequiredAnswered(sub, questions), apperrors.ErrValidation)

	// Необязательный вопрос можно пропустить
	sub = &ResponseSubmission{Answers: []AnswerSubmission{
		{QuestionID: 1000, Value: entity.JSONValue(`"Астана"`)},
	}}
	assert.NoError(t, checkRequiredAnswered(sub, questions))
}

func TestSubmit_RejectsUnpublishedForm(t *testing.T) {
	svc, formRepo, _, _ := newResponseFixture(t)

	// У формы нет активной версии - принимать ответы не на что
	formRepo.On("GetDetail", uint(1)).Return(quizForm(), nil)

	_, err := svc.Submit(1, &ResponseSubmission{Answers: []AnswerSubmission{
		{QuestionID: 1000, Value: entity.JSONValue(`"Астана"`)},
	}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateByToken_RejectsReplacedToken(t *testing.T) {
	svc, _, responseRepo, jwtService := newResponseFixture(t)

	token, err := jwtService.GenerateResponseToken(50, 1)
	require.NoError(t, err)

	// На строке сохранен другой (более новый) токен - предъявленный
	// отклоняется несмотря на валидную подпись
	responseRepo.On("GetWithAnswers", uint(50)).Return(&entity.FormResponse{
		ID:          50,
		FormID:      1,
		AccessToken: "совсем-другой-токен",
	}, nil)

	_, err = svc.UpdateByToken(token, &ResponseSubmission{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUpdateByToken_RejectsExpiredEditWindow(t *testing.T) {
	svc, formRepo, responseRepo, jwtService := newResponseFixture(t)

	token, err := jwtService.GenerateResponseToken(50, 1)
	require.NoError(t, err)

	responseRepo.On("GetWithAnswers", uint(50)).Return(&entity.FormResponse{
		ID:          50,
		FormID:      1,
		AccessToken: token,
		CreatedAt:   time.Now().Add(-48 * time.Hour),
	}, nil)
	formRepo.On("GetDetail", uint(1)).Return(quizForm(), nil)

	_, err = svc.UpdateByToken(token, &ResponseSubmission{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateByOwner_RejectsExpiredEditWindow(t *testing.T) {
	svc, formRepo, responseRepo, _ := newResponseFixture(t)

	form := quizForm()
	form.OwnerID = 7
	formRepo.On("GetByID", uint(1)).Return(form, nil)
	formRepo.On("GetDetail", uint(1)).Return(form, nil)
	responseRepo.On("GetWithAnswers", uint(50)).Return(&entity.FormResponse{
		ID:        50,
		FormID:    1,
		CreatedAt: time.Now().Add(-26 * time.Hour),
	}, nil)

	// Окно редактирования (по умолчанию 24 часа) истекло и для владельца
	_, err := svc.UpdateByOwner(7, 1, 50, &ResponseSubmission{Answers: []AnswerSubmission{
		{QuestionID: 1000, Value: entity.JSONValue(`"Астана"`)},
	}})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateByToken_RejectsTokenOfOtherKind(t *testing.T) {
	svc, _, _, jwtService := newResponseFixture(t)

	shareToken, err := jwtService.GenerateShareToken(1, 44)
	require.NoError(t, err)

	_, err = svc.UpdateByToken(shareToken, &ResponseSubmission{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestExchangeToken_ReturnsResponseWithForm(t *testing.T) {
	svc, formRepo, responseRepo, jwtService := newResponseFixture(t)

	token, err := jwtService.GenerateResponseToken(50, 1)
	require.NoError(t, err)

	responseRepo.On("GetWithAnswers", uint(50)).Return(&entity.FormResponse{
		ID:          50,
		FormID:      1,
		AccessToken: token,
		TotalScore:  5,
	}, nil)
	formRepo.On("GetDetail", uint(1)).Return(quizForm(), nil)

	response, form, err := svc.ExchangeToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(50), response.ID)
	assert.Equal(t, uint(1), form.ID)
}

func TestExchangeToken_KeepsOriginalVersionBinding(t *testing.T) {
	svc, formRepo, responseRepo, jwtService := newResponseFixture(t)

	token, err := jwtService.GenerateResponseToken(50, 1)
	require.NoError(t, err)

	// После отправки форма была переопубликована: активная версия ушла
	// вперед, но ответ остается привязан к версии на момент отправки
	newActive := uint(7)
	form := quizForm()
	form.ActiveVersionID = &newActive

	responseRepo.On("GetWithAnswers", uint(50)).Return(&entity.FormResponse{
		ID:          50,
		FormID:      1,
		VersionID:   3,
		AccessToken: token,
	}, nil)
	formRepo.On("GetDetail", uint(1)).Return(form, nil)

	response, _, err := svc.ExchangeToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), response.VersionID)
}

func TestEditWindow_DefaultAndCustom(t *testing.T) {
	form := &entity.Form{}
	assert.Equal(t, 24*time.Hour, form.EditWindow())

	form.UpdateWindowHours = 72
	assert.Equal(t, 72*time.Hour, form.EditWindow())
}
