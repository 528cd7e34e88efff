package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
)

func newFormFixture() (*FormService, *MockFormRepository) {
	formRepo := new(MockFormRepository)
	roleRepo := new(MockRoleRepository)
	accessSvc := NewAccessService(roleRepo, new(MockUserRepository), formRepo, &NoopEmailService{})
	versionSvc := NewVersionService(nil, formRepo, new(MockVersionRepository), nil, nil, NewFormAssembler())

	// db == nil: фикстура годится только для путей, завершающихся
	// до открытия транзакции
	svc := NewFormService(nil, formRepo, roleRepo, nil, accessSvc, versionSvc)
	return svc, formRepo
}

func TestCreateForm_RejectsInvalidDocumentBeforeAnyWrite(t *testing.T) {
	svc, _ := newFormFixture()

	doc := validDocument()
	doc.Sections[1].SeqOrder = doc.Sections[0].SeqOrder

	// Невалидный документ отклоняется до единственной транзакции,
	// в которой создаются форма, роль владельца и первая версия
	_, err := svc.CreateForm(7, doc, false)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCloneTemplate_RequiresPublicTemplate(t *testing.T) {
	svc, formRepo := newFormFixture()

	formRepo.On("GetDetail", uint(5)).
		Return(&entity.Form{ID: 5, IsTemplate: true, IsPublic: false}, nil)

	_, err := svc.CloneTemplate(7, 5)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCloneTemplate_RejectsOrdinaryForm(t *testing.T) {
	svc, formRepo := newFormFixture()

	formRepo.On("GetDetail", uint(6)).
		Return(&entity.Form{ID: 6, IsTemplate: false, IsPublic: true}, nil)

	_, err := svc.CloneTemplate(7, 6)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
