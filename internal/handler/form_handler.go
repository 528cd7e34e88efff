package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	"github.com/yourusername/formbuilder-api/internal/handler/dto"
	"github.com/yourusername/formbuilder-api/internal/middleware"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/internal/service"
	ws "github.com/yourusername/formbuilder-api/internal/websocket"
)

// FormHandler обрабатывает запросы, связанные с формами:
// жизненный цикл, публикация версий, доступ и публичные ссылки
type FormHandler struct {
	formService    *service.FormService
	versionService *service.VersionService
	accessService  *service.AccessService
	shareService   *service.ShareService
	collabHub      *ws.Hub
}

// NewFormHandler создает новый обработчик форм
func NewFormHandler(
	formService *service.FormService,
	versionService *service.VersionService,
	accessService *service.AccessService,
	shareService *service.ShareService,
	collabHub *ws.Hub,
) *FormHandler {
	return &FormHandler{
		formService:    formService,
		versionService: versionService,
		accessService:  accessService,
		shareService:   shareService,
		collabHub:      collabHub,
	}
}

// CreateFormRequest представляет запрос на создание формы
type CreateFormRequest struct {
	service.FormDocument
	IsTemplate bool `json:"is_template"`
}

// CreateForm обрабатывает запрос на создание формы.
// Форма сразу публикуется как v1.0.
func (h *FormHandler) CreateForm(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := h.formService.CreateForm(userID, &req.FormDocument, req.IsTemplate)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFormResponse(form, true))
}

// GetForm возвращает форму с полной вложенной структурой
func (h *FormHandler) GetForm(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	formID := c.MustGet("formID").(uint)

	form, err := h.formService.GetFormDetail(userID, formID)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	// Сведения об оценивании видят только владелец и редакторы
	includeGrading := h.accessService.RequireEditor(userID, formID) == nil
	c.JSON(http.StatusOK, dto.NewFormResponse(form, includeGrading))
}

// DeleteForm удаляет форму со всей структурой, версиями и ответами
func (h *FormHandler) DeleteForm(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	if err := h.formService.DeleteForm(userID, formID); err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Form deleted"})
}

// ListMyForms возвращает формы текущего пользователя
func (h *FormHandler) ListMyForms(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	page, perPage := paginationParams(c)

	forms, total, err := h.formService.ListMyForms(userID, perPage, (page-1)*perPage)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedFormsResponse{
		Forms:   dto.NewListFormResponse(forms),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// Publish применяет присланный документ и выпускает новую активную версию
func (h *FormHandler) Publish(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	if err := h.accessService.RequireEditor(userID, formID); err != nil {
		h.handleFormError(c, err)
		return
	}

	var doc service.FormDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.versionService.Publish(formID, &doc)
	if err != nil {
		if errors.Is(err, repository.ErrPublishConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Form was published concurrently, retry with the latest state"})
			return
		}
		h.handleFormError(c, err)
		return
	}

	// Редакторы в комнате узнают о новой версии сразу
	h.collabHub.NotifyPublished(formID, version.Revision)

	c.JSON(http.StatusCreated, dto.NewVersionResponse(version))
}

// ListVersions возвращает историю версий формы
func (h *FormHandler) ListVersions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	if err := h.accessService.RequireViewer(userID, formID); err != nil {
		h.handleFormError(c, err)
		return
	}

	versions, err := h.versionService.ListVersions(formID)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"versions": dto.NewListVersionResponse(versions)})
}

// ActivateVersion делает ранее опубликованную версию снова активной
func (h *FormHandler) ActivateVersion(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	versionID := c.MustGet("versionID").(uint)

	if err := h.accessService.RequireEditor(userID, formID); err != nil {
		h.handleFormError(c, err)
		return
	}

	version, err := h.versionService.ActivateVersion(formID, versionID)
	if err != nil {
		if errors.Is(err, repository.ErrPublishConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Form was published concurrently, retry with the latest state"})
			return
		}
		h.handleFormError(c, err)
		return
	}

	h.collabHub.NotifyPublished(formID, version.Revision)

	c.JSON(http.StatusOK, dto.NewVersionResponse(version))
}

// DeleteVersionResponses удаляет все ответы, собранные против версии
func (h *FormHandler) DeleteVersionResponses(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	versionID := c.MustGet("versionID").(uint)

	if err := h.accessService.RequireOwner(userID, formID); err != nil {
		h.handleFormError(c, err)
		return
	}

	deleted, err := h.versionService.DeleteVersionResponses(formID, versionID)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// InviteRequest представляет запрос на выдачу роли
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=editor viewer"`
}

// Invite выдает пользователю роль на форме по email
func (h *FormHandler) Invite(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	granted, err := h.accessService.Invite(userID, formID, req.Email, req.Role)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CollaboratorResponse{
		FormID: granted.FormID,
		UserID: granted.UserID,
		Role:   granted.Role,
	})
}

// ListCollaborators возвращает всех пользователей с ролями на форме
func (h *FormHandler) ListCollaborators(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	roles, err := h.accessService.ListCollaborators(userID, formID)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"collaborators": dto.NewCollaboratorResponse(roles)})
}

// RevokeCollaborator отзывает роль пользователя на форме
func (h *FormHandler) RevokeCollaborator(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	targetID := c.MustGet("collaboratorID").(uint)

	if err := h.accessService.Revoke(userID, formID, targetID); err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role revoked"})
}

// CreateShareLink выпускает публичную ссылку на активную версию формы
func (h *FormHandler) CreateShareLink(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	link, err := h.shareService.CreateShareLink(userID, formID)
	if err != nil {
		h.handleFormError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}

func (h *FormHandler) handleFormError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in FormHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// paginationParams извлекает параметры пагинации из query-строки
func paginationParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
