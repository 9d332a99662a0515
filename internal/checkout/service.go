package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/internal/cart"
	"github.com/AadiSharma49/Street-Food-Solution/internal/checkout/helpers"
	"github.com/AadiSharma49/Street-Food-Solution/internal/orders"
	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	pkgcheckout "github.com/AadiSharma49/Street-Food-Solution/pkg/checkout"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/metrics"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartReader interface {
	Snapshot(ctx context.Context, accountID uuid.UUID) (cart.Cart, error)
	Clear(ctx context.Context, accountID uuid.UUID) error
}

type productStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
}

type accountLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, vendorID uuid.UUID, input CheckoutInput) (*Result, error)
}

// CheckoutInput captures optional data used during checkout. An empty
// delivery address falls back to the vendor's registered address.
type CheckoutInput struct {
	DeliveryAddress string
	Notes           *string
}

// Result lists the orders created, one per supplier.
type Result struct {
	Orders     []orders.OrderDTO `json:"orders"`
	GrandTotal decimal.Decimal   `json:"grand_total"`
}

// ServiceParams names the dependencies of the checkout service.
type ServiceParams struct {
	Tx       txRunner
	Cart     cartReader
	Products productStore
	Accounts accountLoader
	Orders   orders.Repository
	Outbox   outbox.Emitter
	Realtime realtime.Publisher
	Metrics  *metrics.MarketplaceMetrics
	Logger   *logger.Logger
}

type service struct {
	tx       txRunner
	cart     cartReader
	products productStore
	accounts accountLoader
	orders   orders.Repository
	outbox   outbox.Emitter
	realtime realtime.Publisher
	metrics  *metrics.MarketplaceMetrics
	logg     *logger.Logger
}

// supplierOrder is one supplier's slice of the cart, priced from the catalog.
type supplierOrder struct {
	supplier *models.Account
	items    []models.OrderItem
	subtotal decimal.Decimal
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		tx:       params.Tx,
		cart:     params.Cart,
		products: params.Products,
		accounts: params.Accounts,
		orders:   params.Orders,
		outbox:   params.Outbox,
		realtime: params.Realtime,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Execute(ctx context.Context, vendorID uuid.UUID, input CheckoutInput) (*Result, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	vendor, err := s.loadAccount(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	address, err := helpers.ValidateBuyer(vendor, input.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.cart.Snapshot(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if snapshot.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	groups, err := cart.GroupBySupplier(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart")
	}

	planned, err := s.plan(ctx, groups)
	if err != nil {
		return nil, err
	}

	notes := trimmedOrNil(input.Notes)
	created := make([]*models.Order, 0, len(planned))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		for _, group := range planned {
			for _, item := range group.items {
				ok, err := s.products.Reserve(ctx, tx, item.ProductID, item.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
				}
				if !ok {
					return helpers.UnavailableError([]helpers.LineIssue{{
						ProductID: item.ProductID,
						Name:      item.Name,
						Reason:    helpers.ReasonInsufficientStock,
						Requested: item.Quantity,
					}})
				}
			}

			order, err := ordersRepo.CreateOrder(ctx, &models.Order{
				VendorID:        vendorID,
				SupplierID:      group.supplier.ID,
				Status:          enums.OrderStatusPending,
				TotalAmount:     group.subtotal,
				DeliveryAddress: address,
				Notes:           notes,
				Items:           group.items,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}

			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPlaced,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{AccountID: vendorID, AccountType: enums.AccountTypeVendor},
				Data: payloads.OrderPlacedEvent{
					OrderID:     order.ID,
					VendorID:    vendorID,
					SupplierID:  order.SupplierID,
					TotalAmount: order.TotalAmount,
					ItemCount:   len(order.Items),
				},
			}); err != nil {
				return err
			}
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"vendor_id":   vendorID.String(),
		"order_count": len(created),
	})
	if err := s.cart.Clear(ctx, vendorID); err != nil {
		s.logg.Error(ctx, "clear cart after checkout", err)
	}
	s.metrics.AddOrdersPlaced(len(created))
	s.logg.Info(ctx, "checkout completed")

	result := &Result{Orders: make([]orders.OrderDTO, 0, len(created)), GrandTotal: decimal.Zero}
	for _, order := range created {
		dto := orders.FromModel(order)
		result.Orders = append(result.Orders, *dto)
		result.GrandTotal = result.GrandTotal.Add(order.TotalAmount)
		if s.realtime != nil {
			if err := s.realtime.Publish(ctx, order.SupplierID, string(enums.EventOrderPlaced), dto); err != nil {
				s.logg.Warn(ctx, "realtime order placed failed: "+err.Error())
			}
		}
	}
	return result, nil
}

// plan prices every line from the catalog and runs the availability, MOQ and
// minimum order value checks before anything is written.
func (s *service) plan(ctx context.Context, groups []cart.SupplierGroup) ([]supplierOrder, error) {
	var (
		issues  []helpers.LineIssue
		moq     []pkgcheckout.MOQValidationInput
		mov     []pkgcheckout.MinOrderValueInput
		planned = make([]supplierOrder, 0, len(groups))
	)
	for _, group := range groups {
		supplier, err := s.loadAccount(ctx, group.SupplierID)
		if err != nil {
			return nil, err
		}
		if err := helpers.ValidateSupplier(supplier); err != nil {
			return nil, err
		}

		next := supplierOrder{supplier: supplier, subtotal: decimal.Zero}
		for _, line := range group.Lines {
			product, err := s.products.FindByID(ctx, line.ProductID)
			if err != nil && !db.IsNotFound(err) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if err != nil {
				product = nil
			}
			if issue := helpers.CheckLine(line.ProductID, line.Name, line.Quantity, product); issue != nil {
				issues = append(issues, *issue)
				continue
			}

			total, err := pricing.LineTotal(product.Price, line.Quantity)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price line")
			}
			next.items = append(next.items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Unit:      product.Unit,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Total:     total,
			})
			next.subtotal = next.subtotal.Add(total)
			moq = append(moq, pkgcheckout.MOQValidationInput{
				ProductID:   product.ID,
				ProductName: product.Name,
				MOQ:         product.MinOrderQuantity,
				Quantity:    line.Quantity,
			})
		}
		mov = append(mov, pkgcheckout.MinOrderValueInput{
			SupplierID:    supplier.ID,
			SupplierName:  supplier.BusinessName,
			MinOrderValue: supplier.MinOrderValue,
			Subtotal:      next.subtotal,
		})
		planned = append(planned, next)
	}

	if err := helpers.UnavailableError(issues); err != nil {
		return nil, err
	}
	if err := pkgcheckout.ValidateMOQ(moq); err != nil {
		return nil, err
	}
	if err := pkgcheckout.ValidateMinOrderValue(mov); err != nil {
		return nil, err
	}
	return planned, nil
}

func (s *service) loadAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return account, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
