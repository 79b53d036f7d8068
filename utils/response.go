// File: /utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// FieldError is one field-level validation failure in a response body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Code    int          `json:"code"`
	Errors  []FieldError `json:"validation_errors"`
}

// SendError writes an error envelope with status as its code.
func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

// SendErrorMessage is SendError with a detail message.
func SendErrorMessage(c *gin.Context, status int, err, message string) {
	c.JSON(status, ErrorResponse{
		Error:   err,
		Message: message,
		Code:    status,
	})
}

func SendValidationError(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Message: err,
		Code:    http.StatusBadRequest,
	})
}

// SendValidationErrors writes a 400 listing each failing field.
func SendValidationErrors(c *gin.Context, message string, errs []FieldError) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Error:   "Validation failed",
		Message: message,
		Code:    http.StatusBadRequest,
		Errors:  errs,
	})
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusCreated, response)
}

// SendPaginated writes one page of data with paging totals.
func SendPaginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}
