package grouporders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/config"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/metrics"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
)

const (
	defaultJoinRetries     = 3
	participantsConstraint = "ux_group_order_participants_vendor"
	expiredReason          = "expired before reaching target"
)

var errVersionConflict = errors.New("group order version changed")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages pooled purchases.
type Service interface {
	Create(ctx context.Context, supplierID uuid.UUID, input CreateInput) (*GroupOrderDTO, error)
	List(ctx context.Context, params ListParams) (*pagination.Page[GroupOrderDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*GroupOrderDTO, error)
	Join(ctx context.Context, vendorID, groupOrderID uuid.UUID, quantity int) (*JoinResult, error)
	Cancel(ctx context.Context, supplierID, groupOrderID uuid.UUID, reason string) (*GroupOrderDTO, error)
	ParticipantSavings(ctx context.Context, groupOrderID, vendorID uuid.UUID) (decimal.Decimal, error)
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// ServiceParams names the dependencies of the group orders service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Products productLoader
	Outbox   outbox.Emitter
	Realtime realtime.Publisher
	Metrics  *metrics.MarketplaceMetrics
	Config   config.GroupOrdersConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	outbox   outbox.Emitter
	realtime realtime.Publisher
	metrics  *metrics.MarketplaceMetrics
	cfg      config.GroupOrdersConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the group orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("group orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Config.JoinRetries <= 0 {
		params.Config.JoinRetries = defaultJoinRetries
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		products: params.Products,
		outbox:   params.Outbox,
		realtime: params.Realtime,
		metrics:  params.Metrics,
		cfg:      params.Config,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, supplierID uuid.UUID, input CreateInput) (*GroupOrderDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.TargetQuantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target_quantity must be positive")
	}
	if input.MinJoinQuantity <= 0 {
		input.MinJoinQuantity = 1
	}
	if input.MaxJoinQuantity < 0 || (input.MaxJoinQuantity > 0 && input.MaxJoinQuantity < input.MinJoinQuantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_join_quantity must be zero or at least min_join_quantity")
	}

	now := s.now().UTC()
	if input.EndTime.Before(now.Add(s.cfg.MinDuration)) || !input.EndTime.After(now) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "end_time must be at least %s in the future", s.cfg.MinDuration)
	}
	if s.cfg.MaxDuration > 0 && input.EndTime.After(now.Add(s.cfg.MaxDuration)) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "end_time must be within %s", s.cfg.MaxDuration)
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another supplier")
	}
	if !input.GroupPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group_price must be positive")
	}
	if _, err := pricing.SavingsPerUnit(product.Price, input.GroupPrice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "group_price must not exceed the product price")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = product.Name
	}
	order := &models.GroupOrder{
		ProductID:       product.ID,
		SupplierID:      supplierID,
		Title:           title,
		Description:     input.Description,
		Category:        product.Category,
		Unit:            product.Unit,
		TargetQuantity:  input.TargetQuantity,
		MinJoinQuantity: input.MinJoinQuantity,
		MaxJoinQuantity: input.MaxJoinQuantity,
		RegularPrice:    product.Price,
		GroupPrice:      input.GroupPrice,
		EndTime:         input.EndTime.UTC(),
		Status:          enums.GroupOrderStatusActive,
		Version:         1,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"group_order_id": order.ID.String(),
		"supplier_id":    supplierID.String(),
		"target":         order.TargetQuantity,
	}), "group order created")
	return s.present(ctx, order, now, true)
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[GroupOrderDTO], error) {
	status, err := normalizeStatusFilter(params.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, listParams{
		Status:        status,
		Category:      strings.TrimSpace(params.Category),
		SupplierID:    params.SupplierID,
		ParticipantID: params.ParticipantID,
		Cursor:        cursor,
		Limit:         params.Limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group orders")
	}

	rows, next := pagination.Trim(rows, params.Limit, func(m models.GroupOrder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	now := s.now().UTC()
	page := &pagination.Page[GroupOrderDTO]{Items: make([]GroupOrderDTO, 0, len(rows))}
	for i := range rows {
		dto, err := toDTO(&rows[i], now, false)
		if err != nil {
			// one corrupt row should not hide the rest of the board
			s.logg.Error(s.logg.WithField(ctx, "group_order_id", rows[i].ID.String()), "skipping unpresentable group order", err)
			continue
		}
		page.Items = append(page.Items, *dto)
	}
	if next != nil {
		page.NextCursor = pagination.EncodeCursor(*next)
	}
	return page, nil
}

// present reports a row the tracker rejects as an internal error and logs it.
func (s *service) present(ctx context.Context, order *models.GroupOrder, now time.Time, withParticipants bool) (*GroupOrderDTO, error) {
	dto, err := toDTO(order, now, withParticipants)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "group_order_id", order.ID.String()), "group order row is inconsistent", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "group order data is inconsistent")
	}
	return dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*GroupOrderDTO, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, order, s.now().UTC(), true)
}

func (s *service) Join(ctx context.Context, vendorID, groupOrderID uuid.UUID, quantity int) (*JoinResult, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"group_order_id": groupOrderID.String(),
		"vendor_id":      vendorID.String(),
		"quantity":       quantity,
	})

	for attempt := 1; attempt <= s.cfg.JoinRetries; attempt++ {
		result, err := s.tryJoin(ctx, vendorID, groupOrderID, quantity)
		if errors.Is(err, errVersionConflict) {
			s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "group order join lost a version race, retrying")
			continue
		}
		if err != nil {
			s.metrics.ObserveJoin(metrics.JoinResultRejected)
			return nil, err
		}

		s.metrics.ObserveJoin(metrics.JoinResultJoined)
		if result.Completed {
			s.metrics.IncCompletion()
			s.logg.Info(ctx, "group order reached its target")
		}
		s.publish(ctx, result.GroupOrder.SupplierID, result.GroupOrder)
		return result, nil
	}

	s.metrics.ObserveJoin(metrics.JoinResultConflict)
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "group order is busy, please retry")
}

func (s *service) tryJoin(ctx context.Context, vendorID, groupOrderID uuid.UUID, quantity int) (*JoinResult, error) {
	var result *JoinResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, groupOrderID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		next, err := Join(toTracker(order), vendorID, quantity, now)
		if err != nil {
			return mapTrackerError(err)
		}

		expected := order.Version
		completed := next.Status == enums.GroupOrderStatusCompleted
		order.CurrentQuantity = next.CurrentQuantity
		order.Status = next.Status
		if completed {
			order.CompletedAt = &now
		}
		ok, err := repo.UpdateState(ctx, order, expected)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update group order")
		}
		if !ok {
			return errVersionConflict
		}

		participant := models.GroupOrderParticipant{
			GroupOrderID: order.ID,
			VendorID:     vendorID,
			Quantity:     quantity,
			JoinedAt:     now,
		}
		if err := repo.AddParticipant(ctx, &participant); err != nil {
			if db.IsUniqueViolation(err, participantsConstraint) || db.IsUniqueViolation(err, "group_order_participants.vendor_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "vendor already joined this group order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add participant")
		}
		order.Participants = append(order.Participants, participant)

		if err := s.outbox.Emit(ctx, tx, joinedEvent(order, vendorID, quantity)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit group order joined")
		}
		if completed {
			if err := s.outbox.EmitOnce(ctx, tx, completedEvent(order, now)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit group order completed")
			}
		}

		savings, err := TotalSavingsForParticipant(next, vendorID)
		if err != nil {
			return mapTrackerError(err)
		}
		dto, err := s.present(ctx, order, now, true)
		if err != nil {
			return err
		}
		result = &JoinResult{GroupOrder: dto, Completed: completed, Savings: savings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Cancel(ctx context.Context, supplierID, groupOrderID uuid.UUID, reason string) (*GroupOrderDTO, error) {
	var dto *GroupOrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, groupOrderID)
		if err != nil {
			return err
		}
		if order.SupplierID != supplierID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the owning supplier can cancel")
		}
		next, err := Cancel(toTracker(order))
		if err != nil {
			return mapTrackerError(err)
		}

		now := s.now().UTC()
		expected := order.Version
		order.Status = next.Status
		order.CancelledAt = &now
		ok, err := repo.UpdateState(ctx, order, expected)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel group order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "group order changed, reload and retry")
		}

		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = "cancelled by supplier"
		}
		actor := &outbox.ActorRef{AccountID: supplierID, AccountType: enums.AccountTypeSupplier}
		if err := s.outbox.EmitOnce(ctx, tx, cancelledEvent(order, actor, reason)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit group order cancelled")
		}
		dto, err = s.present(ctx, order, now, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "group_order_id", groupOrderID.String()), "group order cancelled")
	return dto, nil
}

func (s *service) ParticipantSavings(ctx context.Context, groupOrderID, vendorID uuid.UUID) (decimal.Decimal, error) {
	order, err := s.load(ctx, s.repo, groupOrderID)
	if err != nil {
		return decimal.Zero, err
	}
	savings, err := TotalSavingsForParticipant(toTracker(order), vendorID)
	if err != nil {
		return decimal.Zero, mapTrackerError(err)
	}
	return savings, nil
}

// ExpireDue closes active orders whose end time has passed. Orders changed by
// a concurrent join are skipped and picked up on the next run.
func (s *service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	limit := s.cfg.ExpiryBatchMax
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.repo.ListExpired(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired group orders")
	}

	closed := 0
	var errs error
	for i := range rows {
		order := &rows[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			next, changed := Expire(toTracker(order), now)
			if !changed {
				return nil
			}
			expected := order.Version
			order.Status = next.Status
			stamp := now.UTC()
			event := completedEvent(order, stamp)
			if next.Status == enums.GroupOrderStatusCompleted {
				order.CompletedAt = &stamp
			} else {
				order.CancelledAt = &stamp
				event = cancelledEvent(order, nil, expiredReason)
			}
			ok, err := s.repo.WithTx(tx).UpdateState(ctx, order, expected)
			if err != nil || !ok {
				return err
			}
			if err := s.outbox.EmitOnce(ctx, tx, event); err != nil {
				return err
			}
			closed++
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire group order %s: %w", order.ID, err))
		}
	}
	return closed, errs
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.GroupOrder, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group order id required")
	}
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group order")
	}
	return order, nil
}

func (s *service) publish(ctx context.Context, accountID uuid.UUID, dto *GroupOrderDTO) {
	if s.realtime == nil {
		return
	}
	if err := s.realtime.Publish(ctx, accountID, realtime.EventGroupOrderUpdate, dto); err != nil {
		s.logg.Warn(ctx, "group order realtime publish failed: "+err.Error())
	}
}

func mapTrackerError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	case errors.Is(err, ErrOrderNotActive):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "group order is closed")
	case errors.Is(err, ErrDuplicateParticipant):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vendor already joined this group order")
	case errors.Is(err, ErrParticipantNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vendor has not joined this group order")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "group order data is inconsistent")
	}
}
