package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

func validDocument() *FormDocument {
	return &FormDocument{
		Title: "Опрос удовлетворенности",
		Sections: []SectionDocument{
			{
				Title:    "Основное",
				SeqOrder: 1,
				Items: []ItemDocument{
					{
						Title: "Оцените сервис",
						Kind:  entity.ItemKindQuestion,
						Question: &QuestionDocument{
							Kind:     entity.QuestionKindChoice,
							Required: true,
							Options: []OptionDocument{
								{Value: "Хорошо"},
								{Value: "Плохо"},
							},
						},
					},
				},
			},
			{
				Title:    "Дополнительно",
				SeqOrder: 2,
				Items: []ItemDocument{
					{
						Title:    "Комментарий",
						Kind:     entity.ItemKindQuestion,
						Question: &QuestionDocument{Kind: entity.QuestionKindText},
					},
				},
			},
		},
	}
}

func TestFormDocument_ValidateOK(t *testing.T) {
	require.NoError(t, validDocument().Validate())
}

func TestFormDocument_ValidateRequiresTitle(t *testing.T) {
	doc := validDocument()
	doc.Title = ""
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)
}

func TestFormDocument_ValidateRejectsDuplicateSeqOrder(t *testing.T) {
	doc := validDocument()
	doc.Sections[1].SeqOrder = doc.Sections[0].SeqOrder
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)
}

func TestFormDocument_ValidateRejectsDuplicateItemTitleAcrossSections(t *testing.T) {
	doc := validDocument()
	// Дубликат названия в другом разделе тоже недопустим:
	// название элемента уникально в пределах всей формы
	doc.Sections[1].Items[0].Title = doc.Sections[0].Items[0].Title
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)
}

func TestFormDocument_ValidateRejectsUnknownKinds(t *testing.T) {
	doc := validDocument()
	doc.Sections[0].Items[0].Kind = "carousel"
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)

	doc = validDocument()
	doc.Sections[0].Items[0].Question.Kind = "matrix"
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)
}

func TestFormDocument_ValidateRejectsQuestionAndGroupTogether(t *testing.T) {
	doc := validDocument()
	doc.Sections[0].Items[0].Questions = []QuestionDocument{{Kind: entity.QuestionKindText}}
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)
}

func TestFormDocument_ValidateRejectsNavRuleToUnknownSection(t *testing.T) {
	doc := validDocument()
	doc.NavigationRules = []NavRuleDocument{
		{SectionSeq: 1, Condition: "score > 3", TargetSectionSeq: 99},
	}
	assert.ErrorIs(t, doc.Validate(), apperrors.ErrValidation)
}

func TestFormDocument_ValidateAcceptsNavRuleBetweenKnownSections(t *testing.T) {
	doc := validDocument()
	doc.NavigationRules = []NavRuleDocument{
		{SectionSeq: 1, Condition: "score > 3", TargetSectionSeq: 2},
	}
	require.NoError(t, doc.Validate())
}

func TestItemDocument_AllQuestions(t *testing.T) {
	single := ItemDocument{Question: &QuestionDocument{Kind: entity.QuestionKindText}}
	assert.Len(t, single.AllQuestions(), 1)

	group := ItemDocument{Questions: []QuestionDocument{
		{Kind: entity.QuestionKindRow},
		{Kind: entity.QuestionKindRow},
	}}
	assert.Len(t, group.AllQuestions(), 2)

	empty := ItemDocument{}
	assert.Empty(t, empty.AllQuestions())
}

func TestDocumentFromForm(t *testing.T) {
	gradingID := uint(7)
	form := &entity.Form{
		ID:                  42,
		Title:               "Викторина по географии",
		IsQuiz:              true,
		IsPublic:            true,
		EmailUpdatesEnabled: false,
		UpdateWindowHours:   48,
		Sections: []entity.Section{
			{
				ID:       100,
				Title:    "Столицы",
				SeqOrder: 1,
				Items: []entity.Item{
					{
						Title: "Столица Казахстана",
						Kind:  entity.ItemKindQuestion,
						Questions: []entity.Question{
							{
								Kind:      entity.QuestionKindChoice,
								Required:  true,
								GradingID: &gradingID,
								Grading: &entity.Grading{
									Points:    5,
									AnswerKey: entity.JSONValue(`"Астана"`),
								},
								Options: []entity.Option{
									{Value: "Астана"},
									{Value: "Алматы"},
								},
							},
						},
					},
				},
			},
			{ID: 200, Title: "Финал", SeqOrder: 2},
		},
		NavigationRules: []entity.NavigationRule{
			{SectionID: 100, Condition: "score > 3", TargetSectionID: 200},
		},
	}

	doc := DocumentFromForm(form)

	require.NoError(t, doc.Validate())
	require.Len(t, doc.Sections, 2)
	require.Len(t, doc.Sections[0].Items, 1)

	questions := doc.Sections[0].Items[0].AllQuestions()
	require.Len(t, questions, 1)
	require.NotNil(t, questions[0].Grading)
	assert.Equal(t, 5, questions[0].Grading.Points)
	assert.Len(t, questions[0].Options, 2)

	// Правила ветвления адресуются по seq_order, а не по id разделов
	require.Len(t, doc.NavigationRules, 1)
	assert.Equal(t, 1, doc.NavigationRules[0].SectionSeq)
	assert.Equal(t, 2, doc.NavigationRules[0].TargetSectionSeq)

	// Публичность шаблона не переносится в копию
	assert.Nil(t, doc.IsPublic)
	require.NotNil(t, doc.Settings)
	assert.Equal(t, 48, *doc.Settings.UpdateWindowHours)
}

func TestFormDocument_ImageIDs(t *testing.T) {
	imgA, imgB := uint(10), uint(20)
	doc := validDocument()
	doc.Sections[0].Items[0].Question.Options[0].ImageID = &imgA
	doc.Sections[0].Items[0].Question.Options[1].ImageID = &imgB

	assert.ElementsMatch(t, []uint{10, 20}, doc.ImageIDs())
}
