// Package masterdata serves the materials, suppliers and cost elements the
// posting services refer to.
package masterdata

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/oilmill/backend/internal/application/uow"
	"github.com/oilmill/backend/internal/domain/costing"
	"github.com/oilmill/backend/internal/domain/masterdata"
	"github.com/oilmill/backend/internal/domain/shared"
)

// MasterDataService handles material, supplier and cost element operations
type MasterDataService struct {
	scope uow.TransactionScope
	repos uow.Repositories
}

// NewMasterDataService creates a new MasterDataService
func NewMasterDataService(scope uow.TransactionScope, repos uow.Repositories) *MasterDataService {
	return &MasterDataService{scope: scope, repos: repos}
}

// ListMaterials lists materials
func (s *MasterDataService) ListMaterials(ctx context.Context, filter MaterialListFilter) ([]MaterialResponse, error) {
	materials, err := s.repos.Materials().List(ctx, masterdata.MaterialFilter{
		Category:   masterdata.MaterialCategory(filter.Category),
		ActiveOnly: filter.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}
	out := make([]MaterialResponse, len(materials))
	for i := range materials {
		out[i] = ToMaterialResponse(&materials[i])
	}
	return out, nil
}

// GetMaterial returns one material
func (s *MasterDataService) GetMaterial(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	m, err := s.repos.Materials().FindByID(ctx, id)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewNotFoundError("material", id)
		}
		return nil, err
	}
	resp := ToMaterialResponse(m)
	return &resp, nil
}

// CreateMaterial creates a material
func (s *MasterDataService) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	m, err := masterdata.NewMaterial(req.Name, req.Unit, masterdata.MaterialCategory(strings.ToUpper(req.Category)), req.ShortCode, req.TaxRate)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Materials().Create(ctx, m); err != nil {
		return nil, err
	}
	resp := ToMaterialResponse(m)
	return &resp, nil
}

// ListSuppliers lists suppliers
func (s *MasterDataService) ListSuppliers(ctx context.Context, activeOnly bool) ([]SupplierResponse, error) {
	suppliers, err := s.repos.Suppliers().List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out, nil
}

// CreateSupplier creates a supplier
func (s *MasterDataService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := masterdata.NewSupplier(req.Name, req.ShortCode)
	if err != nil {
		return nil, err
	}
	supplier.ContactPerson = strings.TrimSpace(req.ContactPerson)
	supplier.Phone = strings.TrimSpace(req.Phone)
	supplier.Email = strings.TrimSpace(req.Email)
	supplier.Address = strings.TrimSpace(req.Address)
	supplier.GSTNumber = strings.ToUpper(strings.TrimSpace(req.GSTNumber))

	if err := s.repos.Suppliers().Create(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// ListCostElements lists cost elements, optionally for one stage
func (s *MasterDataService) ListCostElements(ctx context.Context, filter CostElementListFilter) ([]CostElementResponse, error) {
	elements, err := s.repos.CostElements().List(ctx, costing.ElementFilter{
		Stage:      costing.Applicability(filter.ApplicableTo),
		ActiveOnly: filter.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}
	out := make([]CostElementResponse, len(elements))
	for i := range elements {
		out[i] = ToCostElementResponse(&elements[i])
	}
	return out, nil
}

// CreateCostElement adds an element to the cost master
func (s *MasterDataService) CreateCostElement(ctx context.Context, req CreateCostElementRequest) (*CostElementResponse, error) {
	e, err := costing.NewCostElement(
		req.Name,
		req.Category,
		req.UnitType,
		costing.CalculationMethod(req.CalculationMethod),
		req.DefaultRate,
		costing.Applicability(req.ApplicableTo),
		req.IsOptional,
	)
	if err != nil {
		return nil, err
	}
	e.DisplayOrder = req.DisplayOrder
	if err := s.repos.CostElements().Create(ctx, e); err != nil {
		return nil, err
	}
	resp := ToCostElementResponse(e)
	return &resp, nil
}

// UpdateCostElement revises an element's rate and flags under a version check
func (s *MasterDataService) UpdateCostElement(ctx context.Context, id uuid.UUID, req UpdateCostElementRequest) (*CostElementResponse, error) {
	var element *costing.CostElement
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		element, err = repos.CostElements().FindByID(ctx, id)
		if err != nil {
			if shared.IsNotFound(err) {
				return shared.NewNotFoundError("cost element", id)
			}
			return err
		}
		if element.Version != req.Version {
			return shared.NewDomainError(shared.CodeConcurrencyConflict,
				"cost element was modified by another user, reload and retry")
		}

		rev := costing.Revision{
			DefaultRate:  element.DefaultRate,
			Active:       element.Active,
			IsOptional:   element.IsOptional,
			DisplayOrder: element.DisplayOrder,
		}
		if req.DefaultRate != nil {
			rev.DefaultRate = *req.DefaultRate
		}
		if req.Active != nil {
			rev.Active = *req.Active
		}
		if req.IsOptional != nil {
			rev.IsOptional = *req.IsOptional
		}
		if req.DisplayOrder != nil {
			rev.DisplayOrder = *req.DisplayOrder
		}
		if err := element.Revise(rev); err != nil {
			return err
		}
		return repos.CostElements().Update(ctx, element)
	})
	if err != nil {
		return nil, err
	}
	resp := ToCostElementResponse(element)
	return &resp, nil
}
