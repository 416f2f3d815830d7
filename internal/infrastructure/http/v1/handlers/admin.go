package handlers

import (
	"github.com/gin-gonic/gin"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain"
	"adminstore/internal/infrastructure/http/v1/dto"
)

// AdminHandler provides generic HTTP handlers for admin list entities.
// The tenant is resolved by middleware, so handlers never see it.
type AdminHandler[T entity.Record, CreateDTO any, UpdateDTO any, ResponseDTO any] struct {
	*BaseHandler
	service *domain.AdminService[T]

	// Mapper functions
	mapCreateDTO func(dto CreateDTO) T
	mapUpdateDTO func(dto UpdateDTO, existing T) T
	mapToDTO     func(entity T) ResponseDTO
}

// AdminHandlerConfig configures the admin handler.
type AdminHandlerConfig[T entity.Record, CreateDTO any, UpdateDTO any, ResponseDTO any] struct {
	Service      *domain.AdminService[T]
	MapCreateDTO func(dto CreateDTO) T
	MapUpdateDTO func(dto UpdateDTO, existing T) T
	MapToDTO     func(entity T) ResponseDTO
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler[T entity.Record, CreateDTO any, UpdateDTO any, ResponseDTO any](
	base *BaseHandler,
	cfg AdminHandlerConfig[T, CreateDTO, UpdateDTO, ResponseDTO],
) *AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO] {
	return &AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

// List handles GET /{entity} - one page with search and sort.
func (h *AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO]) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	_, pageSizeSet := c.GetQuery("pageSize")
	opts := req.FilterOptions(pageSizeSet)

	result, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]ResponseDTO, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, h.mapToDTO(item))
	}

	h.OK(c, dto.ListResponse[ResponseDTO]{
		Items:      items,
		Pagination: dto.NewPaginationResponse(opts.PageIndex+1, opts.PageSize, result.TotalCount),
	})
}

// Get handles GET /{entity}/:id - get single entity.
func (h *AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO]) Get(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(item))
}

// Create handles POST /{entity} - create new entity.
func (h *AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), h.mapCreateDTO(req))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, h.mapToDTO(created))
}

// Update handles PUT /{entity}/:id - update name and active flag.
func (h *AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.mapUpdateDTO(req, existing)
	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(updated))
}

// Delete handles DELETE /{entity}/:id - soft delete entity.
func (h *AdminHandler[T, CreateDTO, UpdateDTO, ResponseDTO]) Delete(c *gin.Context) {
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
