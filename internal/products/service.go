package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
)

// Service exposes supplier catalog management and public browsing.
type Service interface {
	CreateProduct(ctx context.Context, supplierID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error)
	ComparePrices(ctx context.Context, name string) (*PriceComparison, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name             string
	Category         string
	Price            decimal.Decimal
	Unit             string
	StockQuantity    int
	MinOrderQuantity int
	Description      *string
	ImageURL         *string
	Status           enums.ProductStatus
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name             *string
	Category         *string
	Price            *decimal.Decimal
	Unit             *string
	StockQuantity    *int
	MinOrderQuantity *int
	Description      *string
	ImageURL         *string
	Status           *enums.ProductStatus
}

// ListProductsInput captures the browse filters. Inactive listings are only
// returned to their owning supplier.
type ListProductsInput struct {
	Category        string
	SupplierID      *uuid.UUID
	Search          string
	IncludeInactive bool
	Pagination      pagination.Params
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) CreateProduct(ctx context.Context, supplierID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.MinOrderQuantity == 0 {
		input.MinOrderQuantity = 1
	}
	if input.Status == "" {
		input.Status = enums.ProductStatusActive
	}
	product := &models.Product{
		SupplierID:       supplierID,
		Name:             strings.TrimSpace(input.Name),
		Category:         strings.ToLower(strings.TrimSpace(input.Category)),
		Price:            input.Price,
		Unit:             strings.TrimSpace(input.Unit),
		StockQuantity:    input.StockQuantity,
		MinOrderQuantity: input.MinOrderQuantity,
		Description:      input.Description,
		ImageURL:         input.ImageURL,
		Status:           input.Status,
	}
	syncStockStatus(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"supplier_id": supplierID.String(),
		"product_id":  created.ID.String(),
	}), "product created")
	return NewProductDTO(created, nil), nil
}

func (s *service) UpdateProduct(ctx context.Context, supplierID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, supplierID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.ToLower(strings.TrimSpace(*input.Category))
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Unit != nil {
		product.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.MinOrderQuantity != nil {
		product.MinOrderQuantity = *input.MinOrderQuantity
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	syncStockStatus(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return NewProductDTO(updated, nil), nil
}

func (s *service) DeleteProduct(ctx context.Context, supplierID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, supplierID, productID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteProduct(ctx, supplierID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", productID.String()), "product deleted")
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, summary, err := s.repo.GetProductDetail(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product, summary), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*pagination.Page[ProductDTO], error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListProducts(ctx, productListQuery{
		Category:        strings.ToLower(strings.TrimSpace(input.Category)),
		SupplierID:      input.SupplierID,
		Search:          input.Search,
		IncludeInactive: input.IncludeInactive && input.SupplierID != nil,
		Cursor:          cursor,
		Limit:           input.Pagination.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	rows, next := pagination.Trim(rows, input.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	page := &pagination.Page[ProductDTO]{Items: make([]ProductDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, *NewProductDTO(&rows[i], nil))
	}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

// ComparePrices finds every active listing sharing the product name.
func (s *service) ComparePrices(ctx context.Context, name string) (*PriceComparison, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	rows, err := s.repo.ListOffersByName(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}

	comparison := &PriceComparison{Name: name, Offers: make([]OfferDTO, 0, len(rows)), MaxSavingsPerUnit: decimal.Zero}
	for _, row := range rows {
		comparison.Offers = append(comparison.Offers, row.toDTO())
	}
	if len(comparison.Offers) == 0 {
		return comparison, nil
	}

	cheapest := comparison.Offers[0]
	comparison.Cheapest = &cheapest
	dearest := comparison.Offers[len(comparison.Offers)-1]
	savings, err := pricing.SavingsPerUnit(dearest.Price, cheapest.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute savings")
	}
	comparison.MaxSavingsPerUnit = savings
	return comparison, nil
}

func (s *service) loadOwned(ctx context.Context, supplierID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another supplier")
	}
	return product, nil
}

// syncStockStatus keeps active and out_of_stock in line with the stock count.
// Inactive products are left alone.
func syncStockStatus(product *models.Product) {
	switch {
	case product.Status == enums.ProductStatusActive && product.StockQuantity == 0:
		product.Status = enums.ProductStatusOutOfStock
	case product.Status == enums.ProductStatusOutOfStock && product.StockQuantity > 0:
		product.Status = enums.ProductStatusActive
	}
}

func validateProduct(product *models.Product) error {
	item := pricing.Item{UnitPrice: product.Price, Unit: product.Unit}
	if err := item.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price or unit")
	}
	switch {
	case product.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case product.Category == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	case product.StockQuantity < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must not be negative")
	case product.MinOrderQuantity < 1:
		return pkgerrors.New(pkgerrors.CodeValidation, "min_order_quantity must be at least 1")
	case !product.Status.IsValid():
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", product.Status)
	}
	return nil
}
