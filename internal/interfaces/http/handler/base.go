package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexusgg/partner-portal/internal/interfaces/http/dto"
)

// BaseHandler provides common response helpers.
type BaseHandler struct{}

// Success sends a success envelope.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success envelope with pagination meta.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Error maps a service-layer error to its status and envelope.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	status, resp := dto.FromError(err)
	c.JSON(status, resp)
}

// BadRequest reports a malformed request body or parameter.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.CodeBadRequest, message))
}
