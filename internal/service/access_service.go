package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

// AccessService - шлюз контроля доступа к формам. Все операции над формой
// проходят через Authorize до выполнения бизнес-логики.
// Различие статусов стандартизовано: неаутентифицированный запрос
// получает ErrUnauthorized, аутентифицированный без нужной роли - ErrForbidden.
type AccessService struct {
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
	formRepo repository.FormRepository
	emailSvc EmailService
}

// NewAccessService создает новый сервис контроля доступа
func NewAccessService(
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	formRepo repository.FormRepository,
	emailSvc EmailService,
) *AccessService {
	return &AccessService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		formRepo: formRepo,
		emailSvc: emailSvc,
	}
}

// Authorize проверяет, что пользователь имеет на форме одну из требуемых
// ролей. userID == 0 означает неаутентифицированный запрос.
func (s *AccessService) Authorize(userID, formID uint, roles ...string) (*entity.FormRole, error) {
	if userID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	role, err := s.roleRepo.GetByFormAndUser(formID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, err
	}
	if !role.Allows(roles...) {
		return nil, apperrors.ErrForbidden
	}
	return role, nil
}

// RequireOwner проверяет, что пользователь является владельцем формы.
// Владение определяется по form.owner_id: строка роли владельца вторична
// и нужна только для выборок "мои формы".
func (s *AccessService) RequireOwner(userID, formID uint) error {
	if userID == 0 {
		return apperrors.ErrUnauthorized
	}
	form, err := s.formRepo.GetByID(formID)
	if err != nil {
		return err
	}
	if form.OwnerID != userID {
		return apperrors.ErrForbidden
	}
	return nil
}

// RequireEditor проверяет, что пользователь может редактировать форму
// (владелец или редактор)
func (s *AccessService) RequireEditor(userID, formID uint) error {
	_, err := s.Authorize(userID, formID, entity.RoleOwner, entity.RoleEditor)
	return err
}

// RequireViewer проверяет, что пользователь имеет хотя бы доступ на чтение
func (s *AccessService) RequireViewer(userID, formID uint) error {
	_, err := s.Authorize(userID, formID, entity.RoleOwner, entity.RoleEditor, entity.RoleViewer)
	return err
}

// Invite выдает пользователю роль на форме по email и отправляет приглашение.
// Только владелец может приглашать; роль владельца передать нельзя.
func (s *AccessService) Invite(ownerID, formID uint, email, role string) (*entity.FormRole, error) {
	if role != entity.RoleEditor && role != entity.RoleViewer {
		return nil, fmt.Errorf("%w: role must be editor or viewer", apperrors.ErrValidation)
	}
	if err := s.RequireOwner(ownerID, formID); err != nil {
		return nil, err
	}

	invitee, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if invitee.ID == ownerID {
		return nil, fmt.Errorf("%w: cannot change own role", apperrors.ErrValidation)
	}

	if err := s.roleRepo.Grant(formID, invitee.ID, role); err != nil {
		return nil, err
	}

	form, err := s.formRepo.GetByID(formID)
	if err == nil {
		// Письмо не должно откатывать уже выданную роль
		if sendErr := s.emailSvc.SendCollaborationInvite(invitee.Email, form.Title, role); sendErr != nil {
			log.Printf("[AccessService] Не удалось отправить приглашение на %s: %v", invitee.Email, sendErr)
		}
	}

	return &entity.FormRole{FormID: formID, UserID: invitee.ID, Role: role}, nil
}

// ListCollaborators возвращает всех пользователей с ролями на форме
func (s *AccessService) ListCollaborators(userID, formID uint) ([]entity.FormRole, error) {
	if err := s.RequireViewer(userID, formID); err != nil {
		return nil, err
	}
	return s.roleRepo.ListByFormID(formID)
}

// Revoke отзывает роль пользователя на форме. Только владелец;
// роль владельца отозвать нельзя.
func (s *AccessService) Revoke(ownerID, formID, targetUserID uint) error {
	if err := s.RequireOwner(ownerID, formID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return fmt.Errorf("%w: owner role cannot be revoked", apperrors.ErrValidation)
	}
	target, err := s.roleRepo.GetByFormAndUser(formID, targetUserID)
	if err != nil {
		return err
	}
	if target.Role == entity.RoleOwner {
		return fmt.Errorf("%w: owner role cannot be revoked", apperrors.ErrValidation)
	}
	return s.roleRepo.Revoke(formID, targetUserID)
}
