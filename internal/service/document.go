package service

import (
	"fmt"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// FormDocument представляет вложенный документ формы, отправляемый клиентом.
// Этот же документ сериализуется в снимок версии при публикации.
type FormDocument struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	IsPublic        *bool             `json:"is_public,omitempty"`
	IsQuiz          *bool             `json:"is_quiz,omitempty"`
	CategoryID      *uint             `json:"category_id,omitempty"`
	Settings        *SettingsDocument `json:"settings,omitempty"`
	Sections        []SectionDocument `json:"sections"`
	NavigationRules []NavRuleDocument `json:"navigation_rules,omitempty"`
}

// SettingsDocument - настройки формы внутри документа
type SettingsDocument struct {
	EmailUpdatesEnabled *bool `json:"email_updates_enabled,omitempty"`
	UpdateWindowHours   *int  `json:"update_window_hours,omitempty"`
}

// SectionDocument - раздел внутри документа; seq_order является
// стабильной идентичностью раздела
type SectionDocument struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	SeqOrder    int            `json:"seq_order"`
	Items       []ItemDocument `json:"items"`
}

// ItemDocument - элемент раздела; title является стабильной идентичностью
// элемента внутри формы. Question и Questions взаимоисключающие:
// одиночный вопрос либо группа вопросов.
type ItemDocument struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Kind        string             `json:"kind"`
	Question    *QuestionDocument  `json:"question,omitempty"`
	Questions   []QuestionDocument `json:"questions,omitempty"`
}

// QuestionDocument - вопрос внутри документа
type QuestionDocument struct {
	Kind     string           `json:"kind"`
	Required bool             `json:"required"`
	Grading  *GradingDocument `json:"grading,omitempty"`
	Options  []OptionDocument `json:"options,omitempty"`
}

// OptionDocument - вариант choice-вопроса
type OptionDocument struct {
	Value      string `json:"value"`
	ImageID    *uint  `json:"image_id,omitempty"`
	IsOther    bool   `json:"is_other"`
	GotoAction string `json:"goto_action,omitempty"`
}

// GradingDocument - конфигурация оценивания вопроса
type GradingDocument struct {
	Points          int              `json:"points"`
	RightFeedback   string           `json:"right_feedback,omitempty"`
	WrongFeedback   string           `json:"wrong_feedback,omitempty"`
	GeneralFeedback string           `json:"general_feedback,omitempty"`
	AnswerKey       entity.JSONValue `json:"answer_key,omitempty"`
	AutoFeedback    bool             `json:"auto_feedback"`
}

// NavRuleDocument - правило ветвления; разделы адресуются по seq_order
type NavRuleDocument struct {
	SectionSeq       int    `json:"section_seq"`
	Condition        string `json:"condition"`
	TargetSectionSeq int    `json:"target_section_seq"`
}

// Questions возвращает вопросы элемента независимо от того,
// одиночный это вопрос или группа
func (d *ItemDocument) AllQuestions() []QuestionDocument {
	if d.Question != nil {
		return []QuestionDocument{*d.Question}
	}
	return d.Questions
}

// Validate проверяет структурную корректность документа:
// уникальность seq_order разделов, уникальность названий элементов
// внутри всей формы, допустимость видов элементов и вопросов.
func (d *FormDocument) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}

	seenSeq := make(map[int]bool, len(d.Sections))
	seenTitles := make(map[string]bool)

	for _, section := range d.Sections {
		if seenSeq[section.SeqOrder] {
			return fmt.Errorf("%w: duplicate section seq_order %d", apperrors.ErrValidation, section.SeqOrder)
		}
		seenSeq[section.SeqOrder] = true

		for _, item := range section.Items {
			if item.Title == "" {
				return fmt.Errorf("%w: item title is required", apperrors.ErrValidation)
			}
			// Название элемента - его идентичность внутри формы; дубликат
			// в любом разделе означает неоднозначное сопоставление при upsert
			if seenTitles[item.Title] {
				return fmt.Errorf("%w: duplicate item title %q", apperrors.ErrValidation, item.Title)
			}
			seenTitles[item.Title] = true

			if item.Kind != "" && !entity.IsValidItemKind(item.Kind) {
				return fmt.Errorf("%w: unknown item kind %q", apperrors.ErrValidation, item.Kind)
			}
			if item.Question != nil && len(item.Questions) > 0 {
				return fmt.Errorf("%w: item %q has both question and questions", apperrors.ErrValidation, item.Title)
			}
			for _, q := range item.AllQuestions() {
				if !entity.IsValidQuestionKind(q.Kind) {
					return fmt.Errorf("%w: unknown question kind %q", apperrors.ErrValidation, q.Kind)
				}
			}
		}
	}

	for _, rule := range d.NavigationRules {
		if !seenSeq[rule.SectionSeq] || !seenSeq[rule.TargetSectionSeq] {
			return fmt.Errorf("%w: navigation rule references unknown section", apperrors.ErrValidation)
		}
	}

	return nil
}

// DocumentFromForm строит документ из живых строк формы с полной вложенной
// структурой. Используется при клонировании шаблонов: документ шаблона
// проигрывается через обычный путь публикации в новую форму.
// is_public намеренно не переносится - копия всегда приватная.
func DocumentFromForm(form *entity.Form) *FormDocument {
	isQuiz := form.IsQuiz
	emailUpdates := form.EmailUpdatesEnabled
	window := form.UpdateWindowHours

	doc := &FormDocument{
		Title:       form.Title,
		Description: form.Description,
		IsQuiz:      &isQuiz,
		CategoryID:  form.CategoryID,
		Settings: &SettingsDocument{
			EmailUpdatesEnabled: &emailUpdates,
			UpdateWindowHours:   &window,
		},
	}

	sectionSeq := make(map[uint]int, len(form.Sections))
	for _, section := range form.Sections {
		sectionSeq[section.ID] = section.SeqOrder
		sd := SectionDocument{
			Title:       section.Title,
			Description: section.Description,
			SeqOrder:    section.SeqOrder,
		}
		for _, item := range section.Items {
			itemDoc := ItemDocument{
				Title:       item.Title,
				Description: item.Description,
				Kind:        item.Kind,
			}
			for i := range item.Questions {
				itemDoc.Questions = append(itemDoc.Questions, questionDocument(&item.Questions[i]))
			}
			sd.Items = append(sd.Items, itemDoc)
		}
		doc.Sections = append(doc.Sections, sd)
	}

	for _, rule := range form.NavigationRules {
		doc.NavigationRules = append(doc.NavigationRules, NavRuleDocument{
			SectionSeq:       sectionSeq[rule.SectionID],
			Condition:        rule.Condition,
			TargetSectionSeq: sectionSeq[rule.TargetSectionID],
		})
	}

	return doc
}

func questionDocument(q *entity.Question) QuestionDocument {
	qd := QuestionDocument{
		Kind:     q.Kind,
		Required: q.Required,
	}
	if q.Grading != nil {
		qd.Grading = &GradingDocument{
			Points:          q.Grading.Points,
			RightFeedback:   q.Grading.RightFeedback,
			WrongFeedback:   q.Grading.WrongFeedback,
			GeneralFeedback: q.Grading.GeneralFeedback,
			AnswerKey:       q.Grading.AnswerKey,
			AutoFeedback:    q.Grading.AutoFeedback,
		}
	}
	for _, opt := range q.Options {
		od := OptionDocument{
			Value:      opt.Value,
			IsOther:    opt.IsOther,
			GotoAction: opt.GotoAction,
		}
		if opt.ImageID != nil {
			imageID := *opt.ImageID
			od.ImageID = &imageID
		}
		qd.Options = append(qd.Options, od)
	}
	return qd
}

// ImageIDs собирает все ссылки на изображения из вариантов ответов
func (d *FormDocument) ImageIDs() []uint {
	var ids []uint
	for _, section := range d.Sections {
		for _, item := range section.Items {
			for _, q := range item.AllQuestions() {
				for _, opt := range q.Options {
					if opt.ImageID != nil {
						ids = append(ids, *opt.ImageID)
					}
				}
			}
		}
	}
	return ids
}
