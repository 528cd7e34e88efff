package dto

import (
	"time"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
)

// OptionResponse представляет вариант ответа в формате для клиента
type OptionResponse struct {
	ID         uint   `json:"id"`
	Value      string `json:"value"`
	IsOther    bool   `json:"is_other"`
	ImageID    *uint  `json:"image_id,omitempty"`
	GotoAction string `json:"goto_action"`
}

// GradingResponse представляет конфигурацию оценивания в формате для клиента.
// Ключ ответа намеренно не включается: он не должен утекать респондентам.
type GradingResponse struct {
	Points          int    `json:"points"`
	GeneralFeedback string `json:"general_feedback,omitempty"`
	AutoFeedback    bool   `json:"auto_feedback"`
}

// QuestionResponse представляет вопрос в формате для клиента
type QuestionResponse struct {
	ID       uint             `json:"id"`
	Kind     string           `json:"kind"`
	Required bool             `json:"required"`
	Grading  *GradingResponse `json:"grading,omitempty"`
	Options  []OptionResponse `json:"options,omitempty"`
}

// ItemResponse представляет элемент раздела в формате для клиента
type ItemResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Kind        string             `json:"kind"`
	Questions   []QuestionResponse `json:"questions,omitempty"`
}

// SectionResponse представляет раздел в формате для клиента
type SectionResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	SeqOrder    int            `json:"seq_order"`
	Items       []ItemResponse `json:"items"`
}

// NavigationRuleResponse представляет правило ветвления в формате для клиента
type NavigationRuleResponse struct {
	ID              uint   `json:"id"`
	SectionID       uint   `json:"section_id"`
	Condition       string `json:"condition"`
	TargetSectionID uint   `json:"target_section_id"`
}

// FormResponse представляет форму в формате для клиента
type FormResponse struct {
	ID                  uint              `json:"id"`
	OwnerID             uint              `json:"owner_id"`
	Title               string            `json:"title"`
	Description         string            `json:"description,omitempty"`
	IsTemplate          bool              `json:"is_template"`
	IsPublic            bool              `json:"is_public"`
	IsQuiz              bool              `json:"is_quiz"`
	CategoryID          *uint             `json:"category_id,omitempty"`
	ActiveVersionID     *uint             `json:"active_version_id,omitempty"`
	EmailUpdatesEnabled bool              `json:"email_updates_enabled"`
	UpdateWindowHours   int               `json:"update_window_hours"`
	Sections            []SectionResponse `json:"sections,omitempty"`

	NavigationRules []NavigationRuleResponse `json:"navigation_rules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VersionResponse представляет версию формы в формате для клиента
type VersionResponse struct {
	ID        uint      `json:"id"`
	FormID    uint      `json:"form_id"`
	Revision  string    `json:"revision"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AnswerResponse представляет ответ на вопрос в формате для клиента
type AnswerResponse struct {
	QuestionID uint             `json:"question_id"`
	Value      entity.JSONValue `json:"value"`
	Score      int              `json:"score"`
	Feedback   string           `json:"feedback,omitempty"`
}

// SubmissionResponse представляет принятый ответ на форму в формате для клиента
type SubmissionResponse struct {
	ID              uint             `json:"id"`
	FormID          uint             `json:"form_id"`
	VersionID       uint             `json:"version_id"`
	RespondentEmail string           `json:"respondent_email,omitempty"`
	TotalScore      int              `json:"total_score"`
	Answers         []AnswerResponse `json:"answers,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CollaboratorResponse представляет роль пользователя на форме
type CollaboratorResponse struct {
	FormID uint   `json:"form_id"`
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// PaginatedFormsResponse представляет пагинированный список форм
type PaginatedFormsResponse struct {
	Forms   []FormResponse `json:"forms"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// PaginatedSubmissionsResponse представляет пагинированный список ответов
type PaginatedSubmissionsResponse struct {
	Responses []SubmissionResponse `json:"responses"`
	Total     int64                `json:"total"`
	Page      int                  `json:"page"`
	PerPage   int                  `json:"per_page"`
}

// NewFormResponse создает DTO формы. includeGrading управляет включением
// сведений об оценивании (только для владельца и редакторов).
func NewFormResponse(form *entity.Form, includeGrading bool) *FormResponse {
	resp := &FormResponse{
		ID:                  form.ID,
		OwnerID:             form.OwnerID,
		Title:               form.Title,
		Description:         form.Description,
		IsTemplate:          form.IsTemplate,
		IsPublic:            form.IsPublic,
		IsQuiz:              form.IsQuiz,
		CategoryID:          form.CategoryID,
		ActiveVersionID:     form.ActiveVersionID,
		EmailUpdatesEnabled: form.EmailUpdatesEnabled,
		UpdateWindowHours:   form.UpdateWindowHours,
		CreatedAt:           form.CreatedAt,
		UpdatedAt:           form.UpdatedAt,
	}
	for _, section := range form.Sections {
		resp.Sections = append(resp.Sections, newSectionResponse(&section, includeGrading))
	}
	for _, rule := range form.NavigationRules {
		resp.NavigationRules = append(resp.NavigationRules, NavigationRuleResponse{
			ID:              rule.ID,
			SectionID:       rule.SectionID,
			Condition:       rule.Condition,
			TargetSectionID: rule.TargetSectionID,
		})
	}
	return resp
}

func newSectionResponse(section *entity.Section, includeGrading bool) SectionResponse {
	sr := SectionResponse{
		ID:          section.ID,
		Title:       section.Title,
		Description: section.Description,
		SeqOrder:    section.SeqOrder,
		Items:       []ItemResponse{},
	}
	for _, item := range section.Items {
		ir := ItemResponse{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Kind:        item.Kind,
		}
		for _, q := range item.Questions {
			ir.Questions = append(ir.Questions, newQuestionResponse(&q, includeGrading))
		}
		sr.Items = append(sr.Items, ir)
	}
	return sr
}

func newQuestionResponse(q *entity.Question, includeGrading bool) QuestionResponse {
	qr := QuestionResponse{
		ID:       q.ID,
		Kind:     q.Kind,
		Required: q.Required,
	}
	if includeGrading && q.Grading != nil {
		qr.Grading = &GradingResponse{
			Points:          q.Grading.Points,
			GeneralFeedback: q.Grading.GeneralFeedback,
			AutoFeedback:    q.Grading.AutoFeedback,
		}
	}
	for _, opt := range q.Options {
		qr.Options = append(qr.Options, OptionResponse{
			ID:         opt.ID,
			Value:      opt.Value,
			IsOther:    opt.IsOther,
			ImageID:    opt.ImageID,
			GotoAction: opt.GotoAction,
		})
	}
	return qr
}

// NewListFormResponse создает список DTO форм без вложенной структуры
func NewListFormResponse(forms []entity.Form) []FormResponse {
	result := make([]FormResponse, 0, len(forms))
	for i := range forms {
		form := forms[i]
		form.Sections = nil
		form.NavigationRules = nil
		result = append(result, *NewFormResponse(&form, false))
	}
	return result
}

// NewVersionResponse создает DTO версии формы
func NewVersionResponse(version *entity.FormVersion) *VersionResponse {
	return &VersionResponse{
		ID:        version.ID,
		FormID:    version.FormID,
		Revision:  version.Revision,
		Active:    version.Active,
		CreatedAt: version.CreatedAt,
	}
}

// NewListVersionResponse создает список DTO версий
func NewListVersionResponse(versions []entity.FormVersion) []VersionResponse {
	result := make([]VersionResponse, 0, len(versions))
	for i := range versions {
		result = append(result, *NewVersionResponse(&versions[i]))
	}
	return result
}

// NewSubmissionResponse создает DTO принятого ответа.
// includeFeedback управляет включением баллов и фидбека по вопросам.
func NewSubmissionResponse(response *entity.FormResponse, includeFeedback bool) *SubmissionResponse {
	sr := &SubmissionResponse{
		ID:              response.ID,
		FormID:          response.FormID,
		VersionID:       response.VersionID,
		RespondentEmail: response.RespondentEmail,
		TotalScore:      response.TotalScore,
		CreatedAt:       response.CreatedAt,
		UpdatedAt:       response.UpdatedAt,
	}
	for _, answer := range response.Answers {
		ar := AnswerResponse{
			QuestionID: answer.QuestionID,
			Value:      answer.Value,
		}
		if includeFeedback {
			ar.Score = answer.Score
			ar.Feedback = answer.Feedback
		}
		sr.Answers = append(sr.Answers, ar)
	}
	return sr
}

// NewListSubmissionResponse создает список DTO ответов
func NewListSubmissionResponse(responses []entity.FormResponse) []SubmissionResponse {
	result := make([]SubmissionResponse, 0, len(responses))
	for i := range responses {
		result = append(result, *NewSubmissionResponse(&responses[i], true))
	}
	return result
}

// NewCollaboratorResponse создает список DTO ролей на форме
func NewCollaboratorResponse(roles []entity.FormRole) []CollaboratorResponse {
	result := make([]CollaboratorResponse, 0, len(roles))
	for _, role := range roles {
		result = append(result, CollaboratorResponse{
			FormID: role.FormID,
			UserID: role.UserID,
			Role:   role.Role,
		})
	}
	return result
}
