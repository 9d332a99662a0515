package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the session cart.
type Service interface {
	Get(ctx context.Context, accountID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, accountID, productID uuid.UUID, quantity int) (*View, error)
	SetQuantity(ctx context.Context, accountID, productID uuid.UUID, quantity int) (*View, error)
	Clear(ctx context.Context, accountID uuid.UUID) error
	Snapshot(ctx context.Context, accountID uuid.UUID) (Cart, error)
}

type service struct {
	store    Store
	products productLoader
	maxLines int
}

// NewService builds a cart service backed by the provided stack.
func NewService(store Store, products productLoader, maxLines int) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{store: store, products: products, maxLines: maxLines}, nil
}

func (s *service) Get(ctx context.Context, accountID uuid.UUID) (*View, error) {
	c, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.view(c)
}

func (s *service) Snapshot(ctx context.Context, accountID uuid.UUID) (Cart, error) {
	if accountID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	c, err := s.store.Load(ctx, accountID)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, accountID, productID uuid.UUID, quantity int) (*View, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsPurchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}
	item := Product{
		ID:         product.ID,
		SupplierID: product.SupplierID,
		Name:       product.Name,
		Unit:       product.Unit,
		UnitPrice:  product.Price,
	}

	return s.update(ctx, accountID, func(c Cart) (Cart, error) {
		if _, exists := c.Line(productID); !exists && s.maxLines > 0 && c.Len() >= s.maxLines {
			return Cart{}, pkgerrors.Newf(pkgerrors.CodeValidation, "cart is limited to %d products", s.maxLines)
		}
		next, err := AddItem(c, item, quantity)
		if err != nil {
			return Cart{}, mapReducerError(err)
		}
		return next, nil
	})
}

// SetQuantity overwrites a line; a quantity of zero or less removes it and
// is a no-op for an absent line.
func (s *service) SetQuantity(ctx context.Context, accountID, productID uuid.UUID, quantity int) (*View, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	return s.update(ctx, accountID, func(c Cart) (Cart, error) {
		if _, exists := c.Line(productID); !exists && quantity > 0 {
			return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		return SetQuantity(c, productID, quantity), nil
	})
}

func (s *service) update(ctx context.Context, accountID uuid.UUID, fn Mutation) (*View, error) {
	next, err := s.store.Update(ctx, accountID, fn)
	switch {
	case err == nil:
		return s.view(next)
	case pkgerrors.As(err) != nil:
		return nil, err
	case errors.Is(err, ErrContention):
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed too often, retry")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
}

func (s *service) Clear(ctx context.Context, accountID uuid.UUID) error {
	if accountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if err := s.store.Delete(ctx, accountID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) view(c Cart) (*View, error) {
	view, err := newView(c)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price cart")
	}
	return view, nil
}

func mapReducerError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "quantity must leave at least one unit in the cart")
	case errors.Is(err, pricing.ErrInvalidPrice):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "product has an invalid price")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item")
	}
}
