package dto

import "adminstore/internal/domain/catalogs/denomination"

// DenominationResponse is the response body for a denomination.
type DenominationResponse struct {
	AdminResponse
}

// FromDenomination creates response DTO from domain entity.
func FromDenomination(d *denomination.Denomination) DenominationResponse {
	return DenominationResponse{AdminResponse: FromAdminEntity(d.AdminEntity)}
}

// CreateDenominationRequest is the request body for creating a denomination.
type CreateDenominationRequest struct {
	CreateAdminRequest
}

// ToEntity converts DTO to domain entity.
func (r CreateDenominationRequest) ToEntity() *denomination.Denomination {
	return &denomination.Denomination{AdminEntity: r.ToAdminEntity()}
}

// UpdateDenominationRequest is the request body for updating a denomination.
type UpdateDenominationRequest struct {
	UpdateAdminRequest
}
