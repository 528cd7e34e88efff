package service

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/pkg/auth"
)

// AnswerSubmission - присланный ответ на один вопрос
type AnswerSubmission struct {
	QuestionID uint             `json:"question_id" binding:"required"`
	Value      entity.JSONValue `json:"value" binding:"required"`
}

// ResponseSubmission - присланный набор ответов на форму
type ResponseSubmission struct {
	RespondentEmail string             `json:"respondent_email"`
	Answers         []AnswerSubmission `json:"answers" binding:"required"`
}

// SubmitResult - результат приема ответа: сохраненный ответ плюс
// токен самообслуживания респондента
type SubmitResult struct {
	Response    *entity.FormResponse `json:"response"`
	AccessToken string               `json:"access_token"`
	EditURL     string               `json:"edit_url"`
}

// ResponseService принимает, редактирует и выдает ответы на формы.
// Баллы всегда вычисляются сервером по ключам ответов активной версии.
type ResponseService struct {
	db           *gorm.DB
	formRepo     repository.FormRepository
	versionRepo  repository.VersionRepository
	responseRepo repository.ResponseRepository
	userRepo     repository.UserRepository
	accessSvc    *AccessService
	jwtService   *auth.JWTService
	emailSvc     EmailService
	appBaseURL   string
}

// NewResponseService создает новый сервис ответов
func NewResponseService(
	db *gorm.DB,
	formRepo repository.FormRepository,
	versionRepo repository.VersionRepository,
	responseRepo repository.ResponseRepository,
	userRepo repository.UserRepository,
	accessSvc *AccessService,
	jwtService *auth.JWTService,
	emailSvc EmailService,
	appBaseURL string,
) *ResponseService {
	return &ResponseService{
		db:           db,
		formRepo:     formRepo,
		versionRepo:  versionRepo,
		responseRepo: responseRepo,
		userRepo:     userRepo,
		accessSvc:    accessSvc,
		jwtService:   jwtService,
		emailSvc:     emailSvc,
		appBaseURL:   appBaseURL,
	}
}

// Submit принимает новый ответ на форму. Ответ навсегда привязывается
// к версии, активной в момент отправки. После сохранения респонденту
// выдается токен самообслуживания, а уведомления уходят в фоне и не
// влияют на результат операции.
func (s *ResponseService) Submit(formID uint, sub *ResponseSubmission) (*SubmitResult, error) {
	form, err := s.formRepo.GetDetail(formID)
	if err != nil {
		return nil, err
	}
	if !form.IsPublished() {
		return nil, fmt.Errorf("%w: form has no active version", apperrors.ErrNotFound)
	}
	version, err := s.versionRepo.GetActiveByFormID(formID)
	if err != nil {
		return nil, err
	}

	questions := questionIndex(form)
	if err := validateSubmission(sub, questions); err != nil {
		return nil, err
	}
	if err := checkRequiredAnswered(sub, questions); err != nil {
		return nil, err
	}

	response := &entity.FormResponse{
		FormID:          formID,
		VersionID:       version.ID,
		RespondentEmail: sub.RespondentEmail,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		total := 0
		answers := make([]entity.Answer, 0, len(sub.Answers))
		for _, as := range sub.Answers {
			score, feedback := ScoreAnswer(questions[as.QuestionID], as.Value)
			total += score
			answers = append(answers, entity.Answer{
				QuestionID: as.QuestionID,
				Value:      as.Value,
				Score:      score,
				Feedback:   feedback,
			})
		}
		response.TotalScore = total
		response.Answers = answers
		return tx.Create(response).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save response for form #%d: %w", formID, err)
	}

	result := &SubmitResult{Response: response}
	token, err := s.jwtService.GenerateResponseToken(response.ID, formID)
	if err != nil {
		// Ответ уже сохранен; без токена остаются пути владельца
		log.Printf("[ResponseService] Не удалось выпустить токен для ответа #%d: %v", response.ID, err)
	} else if err := s.responseRepo.UpdateAccessToken(response.ID, token); err != nil {
		log.Printf("[ResponseService] Не удалось сохранить токен ответа #%d: %v", response.ID, err)
	} else {
		response.AccessToken = token
		result.AccessToken = token
		result.EditURL = fmt.Sprintf("%s/responses/edit?token=%s", s.appBaseURL, token)
	}

	go s.notifySubmission(form, response, result.EditURL)

	return result, nil
}

// UpdateByToken обновляет ответ по токену самообслуживания респондента.
// Токен сверяется с сохраненным на строке ответа, правка разрешена только
// внутри окна редактирования формы.
func (s *ResponseService) UpdateByToken(tokenString string, sub *ResponseSubmission) (*entity.FormResponse, error) {
	claims, err := s.jwtService.ParseToken(tokenString, auth.UsageResponse)
	if err != nil {
		return nil, err
	}
	response, err := s.responseRepo.GetWithAnswers(claims.ResponseID)
	if err != nil {
		return nil, err
	}
	// Строка хранит последний выданный токен: предъявление устаревшего
	// или чужого токена отклоняется даже при валидной подписи
	if response.AccessToken == "" || response.AccessToken != tokenString {
		return nil, apperrors.ErrUnauthorized
	}
	if response.FormID != claims.FormID {
		return nil, apperrors.ErrUnauthorized
	}

	form, err := s.formRepo.GetDetail(response.FormID)
	if err != nil {
		return nil, err
	}
	if time.Now().After(response.EditableUntil(form)) {
		return nil, fmt.Errorf("%w: edit window expired", apperrors.ErrForbidden)
	}

	return s.applyUpdate(form, response, sub)
}

// UpdateByOwner обновляет ответ от имени владельца формы.
// Окно редактирования действует для владельца так же, как для респондента.
func (s *ResponseService) UpdateByOwner(userID, formID, responseID uint, sub *ResponseSubmission) (*entity.FormResponse, error) {
	if err := s.accessSvc.RequireOwner(userID, formID); err != nil {
		return nil, err
	}
	response, err := s.responseRepo.GetWithAnswers(responseID)
	if err != nil {
		return nil, err
	}
	if response.FormID != formID {
		return nil, apperrors.ErrNotFound
	}
	form, err := s.formRepo.GetDetail(formID)
	if err != nil {
		return nil, err
	}
	if time.Now().After(response.EditableUntil(form)) {
		return nil, fmt.Errorf("%w: edit window expired", apperrors.ErrForbidden)
	}
	return s.applyUpdate(form, response, sub)
}

// applyUpdate переоценивает и сохраняет присланные ответы, затем
// пересчитывает итоговый балл по всем ответам строки, а не только по
// измененным. Ответы на вопросы, отсутствующие в присланном наборе,
// сохраняются как есть.
func (s *ResponseService) applyUpdate(form *entity.Form, response *entity.FormResponse, sub *ResponseSubmission) (*entity.FormResponse, error) {
	questions := questionIndex(form)
	if err := validateSubmission(sub, questions); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, as := range sub.Answers {
			score, feedback := ScoreAnswer(questions[as.QuestionID], as.Value)
			answer := entity.Answer{
				ResponseID: response.ID,
				QuestionID: as.QuestionID,
				Value:      as.Value,
				Score:      score,
				Feedback:   feedback,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "response_id"}, {Name: "question_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "score", "feedback", "updated_at"}),
			}).Create(&answer).Error
			if err != nil {
				return fmt.Errorf("upsert answer to question #%d: %w", as.QuestionID, err)
			}
		}

		// Итог пересчитывается заново по всем строкам ответа
		var total int64
		err := tx.Model(&entity.Answer{}).
			Where("response_id = ?", response.ID).
			Select("COALESCE(SUM(score), 0)").Scan(&total).Error
		if err != nil {
			return fmt.Errorf("recompute total score of response #%d: %w", response.ID, err)
		}

		updates := map[string]interface{}{"total_score": total}
		if sub.RespondentEmail != "" {
			updates["respondent_email"] = sub.RespondentEmail
		}
		return tx.Model(&entity.FormResponse{}).
			Where("id = ?", response.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.responseRepo.GetWithAnswers(response.ID)
}

// ExchangeToken обменивает токен самообслуживания на ответ респондента.
// Возвращает ответ вместе с формой, чтобы клиент мог отрисовать правку.
func (s *ResponseService) ExchangeToken(tokenString string) (*entity.FormResponse, *entity.Form, error) {
	claims, err := s.jwtService.ParseToken(tokenString, auth.UsageResponse)
	if err != nil {
		return nil, nil, err
	}
	response, err := s.responseRepo.GetWithAnswers(claims.ResponseID)
	if err != nil {
		return nil, nil, err
	}
	if response.AccessToken == "" || response.AccessToken != tokenString {
		return nil, nil, apperrors.ErrUnauthorized
	}
	if response.FormID != claims.FormID {
		return nil, nil, apperrors.ErrUnauthorized
	}
	form, err := s.formRepo.GetDetail(response.FormID)
	if err != nil {
		return nil, nil, err
	}
	return response, form, nil
}

// GetResponse возвращает ответ с деталями. Любая роль на форме.
func (s *ResponseService) GetResponse(userID, formID, responseID uint) (*entity.FormResponse, error) {
	if err := s.accessSvc.RequireViewer(userID, formID); err != nil {
		return nil, err
	}
	response, err := s.responseRepo.GetWithAnswers(responseID)
	if err != nil {
		return nil, err
	}
	if response.FormID != formID {
		return nil, apperrors.ErrNotFound
	}
	return response, nil
}

// ListResponses возвращает ответы формы. Любая роль на форме.
func (s *ResponseService) ListResponses(userID, formID uint, limit, offset int) ([]entity.FormResponse, int64, error) {
	if err := s.accessSvc.RequireViewer(userID, formID); err != nil {
		return nil, 0, err
	}
	return s.responseRepo.ListByFormID(formID, normalizeLimit(limit), offset)
}

// DeleteResponse удаляет ответ. Только владелец формы.
func (s *ResponseService) DeleteResponse(userID, formID, responseID uint) error {
	if err := s.accessSvc.RequireOwner(userID, formID); err != nil {
		return err
	}
	response, err := s.responseRepo.GetByID(responseID)
	if err != nil {
		return err
	}
	if response.FormID != formID {
		return apperrors.ErrNotFound
	}
	return s.responseRepo.Delete(responseID)
}

// notifySubmission рассылает уведомления о новом ответе.
// Выполняется в фоне, ошибки только логируются.
func (s *ResponseService) notifySubmission(form *entity.Form, response *entity.FormResponse, editURL string) {
	if response.RespondentEmail != "" && editURL != "" {
		if err := s.emailSvc.SendSubmissionConfirmation(response.RespondentEmail, form.Title, editURL); err != nil {
			log.Printf("[ResponseService] Подтверждение на %s не отправлено: %v", response.RespondentEmail, err)
		}
	}
	if !form.EmailUpdatesEnabled {
		return
	}
	owner, err := s.userRepo.GetByID(form.OwnerID)
	if err != nil {
		log.Printf("[ResponseService] Владелец формы #%d не найден для уведомления: %v", form.ID, err)
		return
	}
	if err := s.emailSvc.SendNewResponseAlert(owner.Email, form.Title, response.ID); err != nil {
		log.Printf("[ResponseService] Уведомление владельцу %s не отправлено: %v", owner.Email, err)
	}
}

// questionIndex собирает вопросы формы с их оцениванием в индекс по id
func questionIndex(form *entity.Form) map[uint]*entity.Question {
	index := make(map[uint]*entity.Question)
	for si := range form.Sections {
		for ii := range form.Sections[si].Items {
			item := &form.Sections[si].Items[ii]
			for qi := range item.Questions {
				q := &item.Questions[qi]
				index[q.ID] = q
			}
		}
	}
	return index
}

// validateSubmission проверяет, что все ответы ссылаются на вопросы формы,
// не дублируются и несут значение
func validateSubmission(sub *ResponseSubmission, questions map[uint]*entity.Question) error {
	if len(sub.Answers) == 0 {
		return fmt.Errorf("%w: at least one answer is required", apperrors.ErrValidation)
	}

	answered := make(map[uint]bool, len(sub.Answers))
	for _, as := range sub.Answers {
		if _, ok := questions[as.QuestionID]; !ok {
			return fmt.Errorf("%w: question #%d does not belong to this form", apperrors.ErrValidation, as.QuestionID)
		}
		if answered[as.QuestionID] {
			return fmt.Errorf("%w: duplicate answer to question #%d", apperrors.ErrValidation, as.QuestionID)
		}
		answered[as.QuestionID] = true
		if len(as.Value) == 0 {
			return fmt.Errorf("%w: answer value is required for question #%d", apperrors.ErrValidation, as.QuestionID)
		}
	}
	return nil
}

// checkRequiredAnswered проверяет, что каждый обязательный вопрос формы
// получил ответ. Применяется только при первичной отправке: правка может
// затрагивать подмножество вопросов.
func checkRequiredAnswered(sub *ResponseSubmission, questions map[uint]*entity.Question) error {
	answered := make(map[uint]bool, len(sub.Answers))
	for _, as := range sub.Answers {
		answered[as.QuestionID] = true
	}
	for id, q := range questions {
		if q.Required && !answered[id] {
			return fmt.Errorf("%w: required question #%d is not answered", apperrors.ErrValidation, id)
		}
	}
	return nil
}
