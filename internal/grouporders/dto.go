package grouporders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AadiSharma49/Street-Food-Solution/internal/pricing"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// CreateInput describes a new group order on one of the supplier's products.
type CreateInput struct {
	ProductID       uuid.UUID
	Title           string
	Description     *string
	TargetQuantity  int
	GroupPrice      decimal.Decimal
	EndTime         time.Time
	MinJoinQuantity int
	MaxJoinQuantity int
}

// ListParams filters the public listing. An empty status lists active orders.
type ListParams struct {
	Status        string
	Category      string
	SupplierID    *uuid.UUID
	ParticipantID *uuid.UUID
	Limit         int
	Cursor        string
}

// StatusFilterAll disables the status filter in ListParams.
const StatusFilterAll = "all"

// ParticipantDTO is a participant as shown to clients.
type ParticipantDTO struct {
	VendorID uuid.UUID `json:"vendor_id"`
	Quantity int       `json:"quantity"`
	JoinedAt time.Time `json:"joined_at"`
}

// GroupOrderDTO carries the stored order plus its derived figures.
type GroupOrderDTO struct {
	ID               uuid.UUID              `json:"id"`
	ProductID        uuid.UUID              `json:"product_id"`
	SupplierID       uuid.UUID              `json:"supplier_id"`
	Title            string                 `json:"title"`
	Description      *string                `json:"description,omitempty"`
	Category         string                 `json:"category"`
	Unit             string                 `json:"unit"`
	TargetQuantity   int                    `json:"target_quantity"`
	CurrentQuantity  int                    `json:"current_quantity"`
	MinJoinQuantity  int                    `json:"min_join_quantity"`
	MaxJoinQuantity  int                    `json:"max_join_quantity,omitempty"`
	RegularPrice     decimal.Decimal        `json:"regular_price"`
	GroupPrice       decimal.Decimal        `json:"group_price"`
	SavingsPerUnit   decimal.Decimal        `json:"savings_per_unit"`
	ProgressPercent  float64                `json:"progress_percent"`
	RemainingSeconds int64                  `json:"remaining_seconds"`
	ParticipantCount int                    `json:"participant_count"`
	Participants     []ParticipantDTO       `json:"participants,omitempty"`
	Status           enums.GroupOrderStatus `json:"status"`
	EndTime          time.Time              `json:"end_time"`
	CompletedAt      *time.Time             `json:"completed_at,omitempty"`
	CancelledAt      *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// JoinResult reports a successful join.
type JoinResult struct {
	GroupOrder *GroupOrderDTO  `json:"group_order"`
	Completed  bool            `json:"completed"`
	Savings    decimal.Decimal `json:"savings"`
}

func toTracker(m *models.GroupOrder) Order {
	o := Order{
		ID:               m.ID,
		TargetQuantity:   m.TargetQuantity,
		CurrentQuantity:  m.CurrentQuantity,
		MinJoinQuantity:  m.MinJoinQuantity,
		MaxJoinQuantity:  m.MaxJoinQuantity,
		UnitRegularPrice: m.RegularPrice,
		UnitGroupPrice:   m.GroupPrice,
		EndTime:          m.EndTime,
		Status:           m.Status,
		Participants:     make([]Participant, 0, len(m.Participants)),
	}
	for _, p := range m.Participants {
		o.Participants = append(o.Participants, Participant{
			ParticipantID: p.VendorID,
			Quantity:      p.Quantity,
			JoinedAt:      p.JoinedAt,
		})
	}
	return o
}

// toDTO fails on rows the tracker cannot price or measure (zero target,
// group price above regular). Creation rejects both, so such a row was
// written around the service.
func toDTO(m *models.GroupOrder, now time.Time, withParticipants bool) (*GroupOrderDTO, error) {
	o := toTracker(m)
	progress, err := ProgressPercent(o)
	if err != nil {
		return nil, fmt.Errorf("group order %s: %w", m.ID, err)
	}
	savings, err := pricing.SavingsPerUnit(m.RegularPrice, m.GroupPrice)
	if err != nil {
		return nil, fmt.Errorf("group order %s: %w", m.ID, err)
	}
	dto := &GroupOrderDTO{
		ID:               m.ID,
		ProductID:        m.ProductID,
		SupplierID:       m.SupplierID,
		Title:            m.Title,
		Description:      m.Description,
		Category:         m.Category,
		Unit:             m.Unit,
		TargetQuantity:   m.TargetQuantity,
		CurrentQuantity:  m.CurrentQuantity,
		MinJoinQuantity:  m.MinJoinQuantity,
		MaxJoinQuantity:  m.MaxJoinQuantity,
		RegularPrice:     m.RegularPrice,
		GroupPrice:       m.GroupPrice,
		SavingsPerUnit:   savings,
		ProgressPercent:  progress,
		RemainingSeconds: int64(RemainingTime(o, now) / time.Second),
		ParticipantCount: len(m.Participants),
		Status:           m.Status,
		EndTime:          m.EndTime,
		CompletedAt:      m.CompletedAt,
		CancelledAt:      m.CancelledAt,
		CreatedAt:        m.CreatedAt,
	}
	if m.Status != enums.GroupOrderStatusActive {
		dto.RemainingSeconds = 0
	}
	if withParticipants {
		dto.Participants = make([]ParticipantDTO, 0, len(m.Participants))
		for _, p := range m.Participants {
			dto.Participants = append(dto.Participants, ParticipantDTO{VendorID: p.VendorID, Quantity: p.Quantity, JoinedAt: p.JoinedAt})
		}
	}
	return dto, nil
}

func participantIDs(m *models.GroupOrder) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Participants))
	for _, p := range m.Participants {
		ids = append(ids, p.VendorID)
	}
	return ids
}

func normalizeStatusFilter(raw string) (enums.GroupOrderStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		return enums.GroupOrderStatusActive, nil
	case StatusFilterAll:
		return "", nil
	}
	return enums.ParseGroupOrderStatus(raw)
}
