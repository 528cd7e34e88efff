package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/formbuilder-api/internal/domain/repository"
	"github.com/yourusername/formbuilder-api/internal/handler/dto"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/internal/service"
)

// TemplateHandler обрабатывает запросы к галерее публичных шаблонов
type TemplateHandler struct {
	formService *service.FormService
}

// NewTemplateHandler создает новый обработчик шаблонов
func NewTemplateHandler(formService *service.FormService) *TemplateHandler {
	return &TemplateHandler{formService: formService}
}

// ListTemplates возвращает публичные шаблоны с фильтрацией по категории
// и поиском по названию
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	page, perPage := paginationParams(c)

	filters := repository.TemplateFilters{
		Search: c.Query("search"),
	}
	if categoryStr := c.Query("category_id"); categoryStr != "" {
		categoryID, err := strconv.ParseUint(categoryStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		id := uint(categoryID)
		filters.CategoryID = &id
	}

	templates, total, err := h.formService.ListTemplates(filters, perPage, (page-1)*perPage)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedFormsResponse{
		Forms:   dto.NewListFormResponse(templates),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// ListCategories возвращает все категории шаблонов
func (h *TemplateHandler) ListCategories(c *gin.Context) {
	categories, err := h.formService.ListCategories()
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CloneTemplate создает форму пользователя как копию публичного шаблона
func (h *TemplateHandler) CloneTemplate(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	templateID := c.MustGet("templateID").(uint)

	form, err := h.formService.CloneTemplate(userID, templateID)
	if err != nil {
		h.handleTemplateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFormResponse(form, true))
}

func (h *TemplateHandler) handleTemplateError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in TemplateHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
