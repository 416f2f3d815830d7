package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"adminstore/internal/domain/catalogs/progressivetype"
	"adminstore/internal/infrastructure/http/v1/dto"
)

// ProgressiveTypeHandler adds reorder endpoints to the generic handler.
type ProgressiveTypeHandler struct {
	*AdminHandler[
		*progressivetype.ProgressiveType,
		dto.CreateProgressiveTypeRequest,
		dto.UpdateProgressiveTypeRequest,
		dto.ProgressiveTypeResponse,
	]
	service *progressivetype.Service
}

// NewProgressiveTypeHandler wires the handler for progressive types.
func NewProgressiveTypeHandler(base *BaseHandler, service *progressivetype.Service) *ProgressiveTypeHandler {
	generic := NewAdminHandler(base, AdminHandlerConfig[
		*progressivetype.ProgressiveType,
		dto.CreateProgressiveTypeRequest,
		dto.UpdateProgressiveTypeRequest,
		dto.ProgressiveTypeResponse,
	]{
		Service: service.AdminService,
		MapCreateDTO: func(req dto.CreateProgressiveTypeRequest) *progressivetype.ProgressiveType {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProgressiveTypeRequest, existing *progressivetype.ProgressiveType) *progressivetype.ProgressiveType {
			req.ApplyTo(&existing.AdminEntity)
			return existing
		},
		MapToDTO: dto.FromProgressiveType,
	})
	return &ProgressiveTypeHandler{AdminHandler: generic, service: service}
}

// MoveUp handles POST /progressive-types/:id/move-up.
func (h *ProgressiveTypeHandler) MoveUp(c *gin.Context) {
	h.move(c, h.service.MoveUp)
}

// MoveDown handles POST /progressive-types/:id/move-down.
func (h *ProgressiveTypeHandler) MoveDown(c *gin.Context) {
	h.move(c, h.service.MoveDown)
}

func (h *ProgressiveTypeHandler) move(c *gin.Context, fn func(context.Context, int64) (bool, error)) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	moved, err := fn(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MoveResponse{Moved: moved})
}
