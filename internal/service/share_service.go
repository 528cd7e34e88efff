package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/pkg/auth"
)

// Срок кеширования снимка опубликованной версии. Снимки неизменяемы,
// TTL ограничивает только занимаемую память.
const sharedSnapshotTTL = 6 * time.Hour

// ShareLink - выпущенная публичная ссылка на форму
type ShareLink struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	FormID    uint   `json:"form_id"`
	VersionID uint   `json:"version_id"`
	Revision  string `json:"revision"`
}

// SharedForm - форма, отдаваемая анонимному респонденту по share-ссылке
type SharedForm struct {
	FormID    uint          `json:"form_id"`
	VersionID uint          `json:"version_id"`
	Revision  string        `json:"revision"`
	Document  *FormDocument `json:"document"`
}

// ShareService выпускает и разрешает публичные ссылки на формы.
// Ссылка кодирует пару (form_id, version_id): респондент видит снимок
// конкретной версии, даже если форма была переопубликована после выпуска
// ссылки. Прием ответов при этом всегда идет против активной версии.
type ShareService struct {
	formRepo    repository.FormRepository
	versionRepo repository.VersionRepository
	cacheRepo   repository.CacheRepository
	accessSvc   *AccessService
	jwtService  *auth.JWTService
	appBaseURL  string
}

// NewShareService создает новый сервис публичных ссылок
func NewShareService(
	formRepo repository.FormRepository,
	versionRepo repository.VersionRepository,
	cacheRepo repository.CacheRepository,
	accessSvc *AccessService,
	jwtService *auth.JWTService,
	appBaseURL string,
) *ShareService {
	return &ShareService{
		formRepo:    formRepo,
		versionRepo: versionRepo,
		cacheRepo:   cacheRepo,
		accessSvc:   accessSvc,
		jwtService:  jwtService,
		appBaseURL:  appBaseURL,
	}
}

// CreateShareLink выпускает подписанную ссылку на активную версию формы.
// Доступно владельцу и редакторам. Ссылка действует 24 часа.
func (s *ShareService) CreateShareLink(userID, formID uint) (*ShareLink, error) {
	if err := s.accessSvc.RequireEditor(userID, formID); err != nil {
		return nil, err
	}
	version, err := s.versionRepo.GetActiveByFormID(formID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: form has no active version", apperrors.ErrValidation)
		}
		return nil, err
	}

	token, err := s.jwtService.GenerateShareToken(formID, version.ID)
	if err != nil {
		return nil, fmt.Errorf("issue share token for form #%d: %w", formID, err)
	}

	return &ShareLink{
		Token:     token,
		URL:       fmt.Sprintf("%s/shared/forms?token=%s", s.appBaseURL, token),
		FormID:    formID,
		VersionID: version.ID,
		Revision:  version.Revision,
	}, nil
}

// ResolveShareToken обменивает share-токен на снимок версии формы.
// Снимки неизменяемы, поэтому кешируются по id версии.
func (s *ShareService) ResolveShareToken(tokenString string) (*SharedForm, error) {
	claims, err := s.jwtService.ParseToken(tokenString, auth.UsageShare)
	if err != nil {
		return nil, err
	}

	cacheKey := sharedVersionCacheKey(claims.VersionID)
	if s.cacheRepo != nil {
		var cached SharedForm
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			if cached.FormID == claims.FormID {
				return &cached, nil
			}
		}
	}

	version, err := s.versionRepo.GetByID(claims.VersionID)
	if err != nil {
		return nil, err
	}
	if version.FormID != claims.FormID {
		return nil, apperrors.ErrUnauthorized
	}

	var doc FormDocument
	if err := json.Unmarshal(version.Content, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot of version #%d: %w", version.ID, err)
	}

	shared := &SharedForm{
		FormID:    version.FormID,
		VersionID: version.ID,
		Revision:  version.Revision,
		Document:  &doc,
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, shared, sharedSnapshotTTL); err != nil {
			log.Printf("[ShareService] Не удалось закешировать снимок версии #%d: %v", version.ID, err)
		}
	}
	return shared, nil
}

// sharedVersionCacheKey - ключ кеша снимка версии для share-ссылок
func sharedVersionCacheKey(versionID uint) string {
	return fmt.Sprintf("form:version:%d:snapshot", versionID)
}
