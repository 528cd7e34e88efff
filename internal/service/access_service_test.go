package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

func newAccessFixture() (*AccessService, *MockRoleRepository, *MockUserRepository, *MockFormRepository, *MockEmailService) {
	roleRepo := new(MockRoleRepository)
	userRepo := new(MockUserRepository)
	formRepo := new(MockFormRepository)
	emailSvc := new(MockEmailService)
	svc := NewAccessService(roleRepo, userRepo, formRepo, emailSvc)
	return svc, roleRepo, userRepo, formRepo, emailSvc
}

func TestAccessService_AuthorizeMatrix(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		wantErr  error
	}{
		{"владелец проходит проверку владельца", entity.RoleOwner, []string{entity.RoleOwner}, nil},
		{"редактор проходит проверку редактирования", entity.RoleEditor, []string{entity.RoleOwner, entity.RoleEditor}, nil},
		{"читатель не проходит проверку редактирования", entity.RoleViewer, []string{entity.RoleOwner, entity.RoleEditor}, apperrors.ErrForbidden},
		{"редактор не проходит проверку владельца", entity.RoleEditor, []string{entity.RoleOwner}, apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, roleRepo, _, _, _ := newAccessFixture()
			roleRepo.On("GetByFormAndUser", uint(1), uint(7)).
				Return(&entity.FormRole{FormID: 1, UserID: 7, Role: tt.role}, nil)

			_, err := svc.Authorize(7, 1, tt.required...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAccessService_AnonymousGetsUnauthorized(t *testing.T) {
	// Без аутентификации - 401, а не 403
	svc, _, _, _, _ := newAccessFixture()

	_, err := svc.Authorize(0, 1, entity.RoleViewer)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAccessService_NoRoleGetsForbidden(t *testing.T) {
	// Аутентифицирован, но роли на форме нет - 403
	svc, roleRepo, _, _, _ := newAccessFixture()
	roleRepo.On("GetByFormAndUser", uint(1), uint(7)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Authorize(7, 1, entity.RoleViewer)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAccessService_InviteGrantsRoleAndSendsEmail(t *testing.T) {
	svc, roleRepo, userRepo, formRepo, emailSvc := newAccessFixture()

	formRepo.On("GetByID", uint(1)).Return(&entity.Form{ID: 1, OwnerID: 7, Title: "Опрос"}, nil)
	userRepo.On("GetByEmail", "editor@example.com").
		Return(&entity.User{ID: 9, Email: "editor@example.com"}, nil)
	roleRepo.On("Grant", uint(1), uint(9), entity.RoleEditor).Return(nil)
	emailSvc.On("SendCollaborationInvite", "editor@example.com", "Опрос", entity.RoleEditor).Return(nil)

	granted, err := svc.Invite(7, 1, "editor@example.com", entity.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, uint(9), granted.UserID)
	assert.Equal(t, entity.RoleEditor, granted.Role)
	roleRepo.AssertExpectations(t)
	emailSvc.AssertExpectations(t)
}

func TestAccessService_InviteRejectsOwnerRole(t *testing.T) {
	svc, _, _, _, _ := newAccessFixture()

	_, err := svc.Invite(7, 1, "someone@example.com", entity.RoleOwner)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAccessService_InviteRequiresOwner(t *testing.T) {
	// Редактор не владелец: owner_id формы указывает на другого пользователя
	svc, _, _, formRepo, _ := newAccessFixture()
	formRepo.On("GetByID", uint(1)).Return(&entity.Form{ID: 1, OwnerID: 3}, nil)

	_, err := svc.Invite(7, 1, "someone@example.com", entity.RoleViewer)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAccessService_RevokeProtectsOwner(t *testing.T) {
	svc, _, _, formRepo, _ := newAccessFixture()
	formRepo.On("GetByID", uint(1)).Return(&entity.Form{ID: 1, OwnerID: 7}, nil)

	err := svc.Revoke(7, 1, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAccessService_RevokeRemovesCollaborator(t *testing.T) {
	svc, roleRepo, _, formRepo, _ := newAccessFixture()
	formRepo.On("GetByID", uint(1)).Return(&entity.Form{ID: 1, OwnerID: 7}, nil)
	roleRepo.On("GetByFormAndUser", uint(1), uint(9)).
		Return(&entity.FormRole{FormID: 1, UserID: 9, Role: entity.RoleViewer}, nil)
	roleRepo.On("Revoke", uint(1), uint(9)).Return(nil)

	require.NoError(t, svc.Revoke(7, 1, 9))
	roleRepo.AssertExpectations(t)
}

func TestAccessService_RequireOwnerComparesFormOwner(t *testing.T) {
	svc, _, _, formRepo, _ := newAccessFixture()
	formRepo.On("GetByID", uint(1)).Return(&entity.Form{ID: 1, OwnerID: 7}, nil)

	assert.NoError(t, svc.RequireOwner(7, 1))
	assert.ErrorIs(t, svc.RequireOwner(9, 1), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.RequireOwner(0, 1), apperrors.ErrUnauthorized)
}
