// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"github.com/samber/lo"

	"adminstore/internal/core/entity"
	"adminstore/internal/domain"
)

// --- Pagination ---

// PaginationRequest contains pagination parameters. Page is one-based.
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1,max=1000000"`
	PageSize int `form:"pageSize" binding:"omitempty,min=0,max=500"`
}

// Defaults sets default pagination values.
func (p *PaginationRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
}

// ListRequest is the query string of a list endpoint.
type ListRequest struct {
	PaginationRequest
	Search      string `form:"search"`
	SearchField string `form:"searchField"`
	Sort        string `form:"sort"`
}

// FilterOptions converts the request into repository filter options.
// pageSize defaults to 20; an explicit pageSize=0 asks for the count only.
func (r *ListRequest) FilterOptions(pageSizeSet bool) domain.FilterOptions {
	r.Defaults()
	pageSize := r.PageSize
	if !pageSizeSet {
		pageSize = DefaultPageSize
	}
	return domain.FilterOptions{
		PageIndex:   r.Page - 1,
		PageSize:    pageSize,
		SearchField: r.SearchField,
		SearchQuery: r.Search,
		SortOrder:   domain.ParseSortOrder(r.Sort),
	}
}

// DefaultPageSize applies when the request has no pageSize.
const DefaultPageSize = 20

// PaginationResponse contains pagination metadata.
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewPaginationResponse creates pagination response.
func NewPaginationResponse(page, pageSize int, totalItems int64) PaginationResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalItems) / pageSize
		if int(totalItems)%pageSize > 0 {
			totalPages++
		}
	}
	return PaginationResponse{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T                `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// --- Admin list DTOs ---

// AdminResponse contains the fields shared by every admin list entity.
type AdminResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Created   time.Time `json:"created"`
	CreatedBy *string   `json:"createdBy,omitempty"`
}

// FromAdminEntity creates AdminResponse from entity.AdminEntity.
func FromAdminEntity(e entity.AdminEntity) AdminResponse {
	return AdminResponse{
		ID:        e.ID,
		Name:      e.Name,
		Active:    e.IsActive(),
		Created:   e.Created,
		CreatedBy: e.CreatedBy,
	}
}

// CreateAdminRequest is the body for creating an admin list entity.
// Name rules are checked by the entity, so blank names reach validation.
type CreateAdminRequest struct {
	Name      string  `json:"name"`
	Active    *bool   `json:"active"`
	CreatedBy *string `json:"createdBy"`
}

// ToAdminEntity converts the request into the shared entity fields.
func (r *CreateAdminRequest) ToAdminEntity() entity.AdminEntity {
	return entity.AdminEntity{
		Name:      r.Name,
		Active:    lo.ToPtr(lo.FromPtrOr(r.Active, true)),
		CreatedBy: r.CreatedBy,
	}
}

// UpdateAdminRequest is the body for updating an admin list entity.
// Only Name and Active are writable after creation.
type UpdateAdminRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// ApplyTo applies the request to an existing entity.
func (r *UpdateAdminRequest) ApplyTo(e *entity.AdminEntity) {
	e.Name = r.Name
	if r.Active != nil {
		e.Active = lo.ToPtr(*r.Active)
	}
}

// --- Move ---

// MoveResponse reports whether a reorder swapped two rows.
type MoveResponse struct {
	Moved bool `json:"moved"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
