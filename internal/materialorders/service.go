package materialorders

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/imrishuroy/go-material-orders/internal/validation"
)

// Repository is the storage collaborator. Update merges and returns the
// updated document; Delete returns the removed one. Both report ErrNotFound
// for unknown ids.
type Repository interface {
	Create(ctx context.Context, o MaterialOrder) (*MaterialOrder, error)
	List(ctx context.Context) ([]MaterialOrder, error)
	Get(ctx context.Context, id string) (*MaterialOrder, error)
	Update(ctx context.Context, id string, p Patch) (*MaterialOrder, error)
	Delete(ctx context.Context, id string) (*MaterialOrder, error)
}

// Service validates requests and delegates persistence to a Repository.
// Errors are *validation.ValidationError, ErrNotFound, or storage failures.
type Service struct {
	repo     Repository
	validate *validatorv10.Validate
}

// NewService wires a Service. v must come from validation.New.
func NewService(repo Repository, v *validatorv10.Validate) *Service {
	return &Service{repo: repo, validate: v}
}

// Create validates req and persists a new material order.
func (s *Service) Create(ctx context.Context, req validation.CreateMaterialOrderRequest) (*MaterialOrder, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}

	quantity, _ := req.Quantity.Float64()
	unitPrice, _ := req.UnitPrice.Float64()
	totalPrice, _ := req.TotalPrice.Float64()

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	return s.repo.Create(ctx, MaterialOrder{
		MaterialID:        req.MaterialID,
		ItemDescription:   req.ItemDescription,
		Supplier:          req.Supplier,
		Quantity:          quantity,
		UnitOfMeasurement: req.UnitOfMeasurement,
		UnitPrice:         unitPrice,
		TotalPrice:        totalPrice,
		OrderDate:         req.OrderDate,
		Items:             req.Items,
		Status:            status,
	})
}

// List returns every material order.
func (s *Service) List(ctx context.Context) ([]MaterialOrder, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []MaterialOrder{}
	}
	return orders, nil
}

// Get returns one material order.
func (s *Service) Get(ctx context.Context, id string) (*MaterialOrder, error) {
	return s.repo.Get(ctx, id)
}

// Update applies the fields present in req to the stored order.
func (s *Service) Update(ctx context.Context, id string, req validation.UpdateMaterialOrderRequest) (*MaterialOrder, error) {
	if err := validation.Check(s.validate, req); err != nil {
		return nil, err
	}

	p := Patch{
		MaterialID:        req.MaterialID,
		ItemDescription:   req.ItemDescription,
		Supplier:          req.Supplier,
		UnitOfMeasurement: req.UnitOfMeasurement,
		OrderDate:         req.OrderDate,
		Items:             req.Items,
		Status:            req.Status,
	}
	p.Quantity = parsed(req.Quantity)
	p.UnitPrice = parsed(req.UnitPrice)
	p.TotalPrice = parsed(req.TotalPrice)

	return s.repo.Update(ctx, id, p)
}

// Delete removes a material order and returns it.
func (s *Service) Delete(ctx context.Context, id string) (*MaterialOrder, error) {
	return s.repo.Delete(ctx, id)
}

func parsed(n validation.Number) *float64 {
	f, ok := n.Float64()
	if !ok {
		return nil
	}
	return &f
}
