package dto

import "adminstore/internal/domain/catalogs/progressivetype"

// ProgressiveTypeResponse is the response body for a progressive type.
type ProgressiveTypeResponse struct {
	AdminResponse
	DisplayOrder int `json:"displayOrder"`
}

// FromProgressiveType creates response DTO from domain entity.
func FromProgressiveType(p *progressivetype.ProgressiveType) ProgressiveTypeResponse {
	return ProgressiveTypeResponse{
		AdminResponse: FromAdminEntity(p.AdminEntity),
		DisplayOrder:  p.DisplayOrder,
	}
}

// CreateProgressiveTypeRequest is the request body for creating a progressive type.
// DisplayOrder is always assigned by the store.
type CreateProgressiveTypeRequest struct {
	CreateAdminRequest
}

// ToEntity converts DTO to domain entity.
func (r CreateProgressiveTypeRequest) ToEntity() *progressivetype.ProgressiveType {
	return &progressivetype.ProgressiveType{AdminEntity: r.ToAdminEntity()}
}

// UpdateProgressiveTypeRequest is the request body for updating a progressive type.
type UpdateProgressiveTypeRequest struct {
	UpdateAdminRequest
}
