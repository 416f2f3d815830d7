package handlers

import (
	"adminstore/internal/domain/catalogs/denomination"
	"adminstore/internal/infrastructure/http/v1/dto"
)

// DenominationHTTPHandler shortens the generic signature.
type DenominationHTTPHandler = AdminHandler[
	*denomination.Denomination,
	dto.CreateDenominationRequest,
	dto.UpdateDenominationRequest,
	dto.DenominationResponse,
]

// NewDenominationHandler wires the generic handler for denominations.
func NewDenominationHandler(base *BaseHandler, service *denomination.Service) *DenominationHTTPHandler {
	return NewAdminHandler(base, AdminHandlerConfig[
		*denomination.Denomination,
		dto.CreateDenominationRequest,
		dto.UpdateDenominationRequest,
		dto.DenominationResponse,
	]{
		Service: service.AdminService,
		MapCreateDTO: func(req dto.CreateDenominationRequest) *denomination.Denomination {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateDenominationRequest, existing *denomination.Denomination) *denomination.Denomination {
			req.ApplyTo(&existing.AdminEntity)
			return existing
		},
		MapToDTO: dto.FromDenomination,
	})
}
