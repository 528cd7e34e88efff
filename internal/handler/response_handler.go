package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/formbuilder-api/internal/domain/entity"
	"github.com/yourusername/formbuilder-api/internal/handler/dto"
	apperrors "github.com/yourusername/formbuilder-api/internal/pkg/errors"
	"github.com/yourusername/formbuilder-api/internal/service"
)

// Максимальный размер выборки при экспорте ответов
const exportBatchLimit = 10000

// ResponseHandler обрабатывает прием, правку и выдачу ответов на формы
type ResponseHandler struct {
	responseService *service.ResponseService
	shareService    *service.ShareService
}

// NewResponseHandler создает новый обработчик ответов
func NewResponseHandler(responseService *service.ResponseService, shareService *service.ShareService) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
		shareService:    shareService,
	}
}

// GetSharedForm отдает снимок версии формы по share-токену.
// Публичный маршрут для анонимных респондентов.
func (h *ResponseHandler) GetSharedForm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	shared, err := h.shareService.ResolveShareToken(token)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, shared)
}

// Submit принимает новый ответ на форму. Публичный маршрут.
func (h *ResponseHandler) Submit(c *gin.Context) {
	formID := c.MustGet("formID").(uint)

	var sub service.ResponseSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.responseService.Submit(formID, &sub)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"response":     dto.NewSubmissionResponse(result.Response, true),
		"access_token": result.AccessToken,
		"edit_url":     result.EditURL,
	})
}

// ExchangeToken обменивает токен самообслуживания на сохраненный ответ
// вместе с формой. Публичный маршрут.
func (h *ResponseHandler) ExchangeToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	response, form, err := h.responseService.ExchangeToken(token)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": dto.NewSubmissionResponse(response, true),
		"form":     dto.NewFormResponse(form, false),
	})
}

// UpdateByToken обновляет ответ по токену самообслуживания респондента.
// Публичный маршрут, правка разрешена внутри окна редактирования.
func (h *ResponseHandler) UpdateByToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	var sub service.ResponseSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.responseService.UpdateByToken(token, &sub)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmissionResponse(response, true))
}

// ListResponses возвращает ответы формы для владельца или редакторов
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	page, perPage := paginationParams(c)

	responses, total, err := h.responseService.ListResponses(userID, formID, perPage, (page-1)*perPage)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedSubmissionsResponse{
		Responses: dto.NewListSubmissionResponse(responses),
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	})
}

// GetResponse возвращает один ответ с деталями
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	responseID := c.MustGet("responseID").(uint)

	response, err := h.responseService.GetResponse(userID, formID, responseID)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmissionResponse(response, true))
}

// UpdateResponse обновляет ответ от имени владельца формы
func (h *ResponseHandler) UpdateResponse(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	responseID := c.MustGet("responseID").(uint)

	var sub service.ResponseSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.responseService.UpdateByOwner(userID, formID, responseID, &sub)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmissionResponse(response, true))
}

// DeleteResponse удаляет ответ. Только владелец формы.
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)
	responseID := c.MustGet("responseID").(uint)

	if err := h.responseService.DeleteResponse(userID, formID, responseID); err != nil {
		h.handleResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response deleted"})
}

// ExportResponses экспортирует ответы формы в XLSX или CSV
// (query-параметр format, по умолчанию xlsx)
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	formID := c.MustGet("formID").(uint)

	responses, _, err := h.responseService.ListResponses(userID, formID, exportBatchLimit, 0)
	if err != nil {
		h.handleResponseError(c, err)
		return
	}

	filename := fmt.Sprintf("form_%d_responses_%s", formID, time.Now().Format("2006-01-02"))
	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		h.exportCSV(c, responses, filename)
	case "xlsx":
		h.exportXLSX(c, responses, filename)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv"})
	}
}

func (h *ResponseHandler) exportCSV(c *gin.Context, responses []entity.FormResponse, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"ID", "Респондент", "Версия", "Баллы", "Отправлен", "Обновлен"})
	for _, r := range responses {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.ID), 10),
			sanitizeForExcel(r.RespondentEmail),
			strconv.FormatUint(uint64(r.VersionID), 10),
			strconv.Itoa(r.TotalScore),
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX экспортирует ответы в Excel с использованием StreamWriter
func (h *ResponseHandler) exportXLSX(c *gin.Context, responses []entity.FormResponse, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ответы"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ResponseHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"ID", "Респондент", "Версия", "Баллы", "Отправлен", "Обновлен"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ResponseHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range responses {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			r.ID,
			sanitizeForExcel(r.RespondentEmail),
			r.VersionID,
			r.TotalScore,
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Format(time.RFC3339),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ResponseHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ResponseHandler] Ошибка при Flush: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ResponseHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

func (h *ResponseHandler) handleResponseError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrExpiredToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is expired", "error_type": "token_expired"})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ResponseHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
