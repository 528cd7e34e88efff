package service

import (
	"time"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/domain/repository"
)

// ============================================================================
// Общие моки репозиториев для тестов сервисного слоя
// ============================================================================

// MockFormRepository реализует repository.FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(form *entity.Form) error {
	args := m.Called(form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(id uint) (*entity.Form, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Form), args.Error(1)
}

func (m *MockFormRepository) GetDetail(id uint) (*entity.Form, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Form), args.Error(1)
}

func (m *MockFormRepository) Update(form *entity.Form) error {
	args := m.Called(form)
	return args.Error(0)
}

func (m *MockFormRepository) UpdateActiveVersion(formID uint, versionID uint) error {
	args := m.Called(formID, versionID)
	return args.Error(0)
}

func (m *MockFormRepository) ListByUser(userID uint, limit, offset int) ([]entity.Form, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Form), args.Get(1).(int64), args.Error(2)
}

func (m *MockFormRepository) ListTemplates(filters repository.TemplateFilters, limit, offset int) ([]entity.Form, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Form), args.Get(1).(int64), args.Error(2)
}

func (m *MockFormRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockRoleRepository реализует repository.RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetByFormAndUser(formID, userID uint) (*entity.FormRole, error) {
	args := m.Called(formID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FormRole), args.Error(1)
}

func (m *MockRoleRepository) Grant(formID, userID uint, role string) error {
	args := m.Called(formID, userID, role)
	return args.Error(0)
}

func (m *MockRoleRepository) ListByFormID(formID uint) ([]entity.FormRole, error) {
	args := m.Called(formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FormRole), args.Error(1)
}

func (m *MockRoleRepository) Revoke(formID, userID uint) error {
	args := m.Called(formID, userID)
	return args.Error(0)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockVersionRepository реализует repository.VersionRepository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) GetByID(id uint) (*entity.FormVersion, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FormVersion), args.Error(1)
}

func (m *MockVersionRepository) GetActiveByFormID(formID uint) (*entity.FormVersion, error) {
	args := m.Called(formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FormVersion), args.Error(1)
}

func (m *MockVersionRepository) GetLatestByFormID(formID uint) (*entity.FormVersion, error) {
	args := m.Called(formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FormVersion), args.Error(1)
}

func (m *MockVersionRepository) ListByFormID(formID uint) ([]entity.FormVersion, error) {
	args := m.Called(formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.FormVersion), args.Error(1)
}

func (m *MockVersionRepository) CreateActive(tx *gorm.DB, version *entity.FormVersion) error {
	args := m.Called(tx, version)
	return args.Error(0)
}

func (m *MockVersionRepository) ActivateExisting(tx *gorm.DB, formID, versionID uint, revision string) error {
	args := m.Called(tx, formID, versionID, revision)
	return args.Error(0)
}

func (m *MockVersionRepository) DeleteResponsesByVersion(versionID uint) (int64, error) {
	args := m.Called(versionID)
	return args.Get(0).(int64), args.Error(1)
}

// MockResponseRepository реализует repository.ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) GetByID(id uint) (*entity.FormResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FormResponse), args.Error(1)
}

func (m *MockResponseRepository) GetWithAnswers(id uint) (*entity.FormResponse, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FormResponse), args.Error(1)
}

func (m *MockResponseRepository) ListByFormID(formID uint, limit, offset int) ([]entity.FormResponse, int64, error) {
	args := m.Called(formID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.FormResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) UpdateAccessToken(responseID uint, token string) error {
	args := m.Called(responseID, token)
	return args.Error(0)
}

func (m *MockResponseRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendSubmissionConfirmation(toEmail, formTitle, editURL string) error {
	args := m.Called(toEmail, formTitle, editURL)
	return args.Error(0)
}

func (m *MockEmailService) SendNewResponseAlert(toEmail, formTitle string, responseID uint) error {
	args := m.Called(toEmail, formTitle, responseID)
	return args.Error(0)
}

func (m *MockEmailService) SendCollaborationInvite(toEmail, formTitle, role string) error {
	args := m.Called(toEmail, formTitle, role)
	return args.Error(0)
}
