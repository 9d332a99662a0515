package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/metrics"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// InventoryReleaser returns stock when an order is cancelled.
type InventoryReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service defines order reads and status transitions.
type Service interface {
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, actor Actor, params ListParams) (*pagination.Page[OrderDTO], error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input StatusInput) (*OrderDTO, error)
}

// ServiceParams names the dependencies of the orders service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Outbox    outbox.Emitter
	Inventory InventoryReleaser
	Realtime  realtime.Publisher
	Metrics   *metrics.MarketplaceMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outbox.Emitter
	inventory InventoryReleaser
	realtime  realtime.Publisher
	metrics   *metrics.MarketplaceMetrics
	logg      *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory releaser required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		inventory: params.Inventory,
		realtime:  params.Realtime,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, actor Actor, params ListParams) (*pagination.Page[OrderDTO], error) {
	if actor.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query := listQuery{
		AccountID: actor.AccountID,
		AsVendor:  actor.IsVendor(),
		Cursor:    cursor,
		Limit:     params.Pagination.Limit,
	}
	if params.Status != nil {
		if !params.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		query.Status = *params.Status
	}

	rows, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page := pagination.NewPage(rows, params.Pagination.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	items := make([]OrderDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *FromModel(&page.Items[i]))
	}
	return &pagination.Page[OrderDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

// UpdateStatus applies one transition. Suppliers drive fulfilment; vendors
// may only cancel while the order is still pending.
func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input StatusInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.load(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !from.CanTransitionTo(input.Status) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", from, input.Status)
	}
	if err := authorizeTransition(actor, from, input.Status); err != nil {
		return nil, err
	}

	var reason *string
	if input.Status == enums.OrderStatusCancelled && input.Reason != nil {
		trimmed := strings.TrimSpace(*input.Reason)
		if trimmed != "" {
			reason = &trimmed
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, from, input.Status, reason)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed, reload and retry")
		}
		if input.Status == enums.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
				}
			}
		}

		event := payloads.OrderStatusChangedEvent{
			OrderID:    order.ID,
			VendorID:   order.VendorID,
			SupplierID: order.SupplierID,
			From:       from,
			To:         input.Status,
			ChangedBy:  actor.AccountID,
		}
		if reason != nil {
			event.Reason = *reason
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{AccountID: actor.AccountID, AccountType: actor.AccountType},
			Data:          event,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveOrderStatus(string(input.Status))
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"from":     string(from),
		"to":       string(input.Status),
	})
	s.logg.Info(ctx, "order status changed")

	updated, err := s.repo.FindOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	dto := FromModel(updated)
	s.notifyCounterparty(ctx, actor, dto)
	return dto, nil
}

func (s *service) notifyCounterparty(ctx context.Context, actor Actor, order *OrderDTO) {
	if s.realtime == nil {
		return
	}
	target := order.VendorID
	if actor.AccountID == order.VendorID {
		target = order.SupplierID
	}
	if err := s.realtime.Publish(ctx, target, string(enums.EventOrderStatusChanged), order); err != nil {
		s.logg.Warn(ctx, "realtime order update failed: "+err.Error())
	}
}

// load hides orders the actor is not party to.
func (s *service) load(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if actor.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.VendorID != actor.AccountID && order.SupplierID != actor.AccountID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func authorizeTransition(actor Actor, from, to enums.OrderStatus) error {
	if actor.IsVendor() {
		if to == enums.OrderStatusCancelled && from == enums.OrderStatusPending {
			return nil
		}
		if to == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeForbidden, "vendors can only cancel pending orders")
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the supplier can advance an order")
	}
	if actor.AccountType != enums.AccountTypeSupplier {
		return pkgerrors.New(pkgerrors.CodeForbidden, "account type not allowed")
	}
	return nil
}
