package messages

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/outbox/payloads"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/pagination"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
)

const (
	// RealtimeEventType is pushed to the receiver for every new message.
	RealtimeEventType = "message.created"

	maxBodyRunes     = 2000
	previewRunes     = 80
	maxConversations = 100
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type accountLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// Service is direct messaging between accounts.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*MessageDTO, error)
	Conversation(ctx context.Context, me, partner uuid.UUID, params pagination.Params) (*pagination.Page[MessageDTO], error)
	Conversations(ctx context.Context, me uuid.UUID) ([]ConversationSummary, error)
}

// SendInput is a new message.
type SendInput struct {
	ReceiverID  uuid.UUID
	Body        string
	MessageType enums.MessageType
}

// MessageDTO is the client view of a message.
type MessageDTO struct {
	ID          uuid.UUID         `json:"id"`
	SenderID    uuid.UUID         `json:"sender_id"`
	ReceiverID  uuid.UUID         `json:"receiver_id"`
	Body        string            `json:"body"`
	MessageType enums.MessageType `json:"message_type"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ConversationSummary is one entry of the inbox.
type ConversationSummary struct {
	PartnerID     uuid.UUID  `json:"partner_id"`
	PartnerName   string     `json:"partner_name,omitempty"`
	LastMessage   MessageDTO `json:"last_message"`
	LastMessageAt time.Time  `json:"last_message_at"`
	UnreadCount   int64      `json:"unread_count"`
}

// ServiceParams names the messaging dependencies.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Accounts accountLoader
	Outbox   outbox.Emitter
	Realtime realtime.Publisher
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	accounts accountLoader
	outbox   outbox.Emitter
	realtime realtime.Publisher
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the messaging service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("messages repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account loader required")
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
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		accounts: params.Accounts,
		outbox:   params.Outbox,
		realtime: params.Realtime,
		logg:     params.Logger,
		now:      params.Now,
	}, nil
}

func toDTO(m models.Message) MessageDTO {
	return MessageDTO{
		ID:          m.ID,
		SenderID:    m.SenderID,
		ReceiverID:  m.ReceiverID,
		Body:        m.Body,
		MessageType: m.MessageType,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

// Send stores the message and queues an in-app notification for the receiver
// in the same transaction.
func (s *service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*MessageDTO, error) {
	if senderID == uuid.Nil || input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender and receiver are required")
	}
	if senderID == input.ReceiverID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if utf8.RuneCountInString(body) > maxBodyRunes {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "message body exceeds %d characters", maxBodyRunes)
	}
	kind := input.MessageType
	if kind == "" {
		kind = enums.MessageTypeText
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid message type")
	}

	sender, err := s.loadAccount(ctx, senderID, "sender")
	if err != nil {
		return nil, err
	}
	if _, err := s.loadAccount(ctx, input.ReceiverID, "receiver"); err != nil {
		return nil, err
	}

	record := &models.Message{
		SenderID:    senderID,
		ReceiverID:  input.ReceiverID,
		Body:        body,
		MessageType: kind,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
		}
		link := "/messages/" + senderID.String()
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationRequested,
			AggregateType: enums.AggregateNotification,
			AggregateID:   record.ID,
			Actor:         &outbox.ActorRef{AccountID: senderID, AccountType: sender.Type},
			Data: payloads.NotificationRequestedEvent{
				AccountID: input.ReceiverID,
				Type:      enums.NotificationTypeMessage,
				Title:     "New message from " + sender.BusinessName,
				Message:   preview(record),
				Link:      &link,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	dto := toDTO(*record)
	if s.realtime != nil {
		if err := s.realtime.Publish(ctx, input.ReceiverID, RealtimeEventType, dto); err != nil {
			s.logg.Warn(s.logg.WithAccountID(ctx, input.ReceiverID.String()), "realtime message push failed: "+err.Error())
		}
	}
	return &dto, nil
}

// Conversation returns a page of the thread oldest-first and marks the
// partner's messages to me as read. NextCursor walks further back in time.
func (s *service) Conversation(ctx context.Context, me, partner uuid.UUID, params pagination.Params) (*pagination.Page[MessageDTO], error) {
	if me == uuid.Nil || partner == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both participants are required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListConversation(ctx, me, partner, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversation")
	}
	if _, err := s.repo.MarkConversationRead(ctx, me, partner, s.now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark conversation read")
	}

	page := pagination.NewPage(rows, params.Limit, func(m models.Message) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	items := make([]MessageDTO, len(page.Items))
	for i, row := range page.Items {
		items[len(page.Items)-1-i] = toDTO(row)
	}
	return &pagination.Page[MessageDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) Conversations(ctx context.Context, me uuid.UUID) ([]ConversationSummary, error) {
	if me == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	partners, err := s.repo.ListPartners(ctx, me, maxConversations)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}

	summaries := make([]ConversationSummary, 0, len(partners))
	for _, row := range partners {
		last, err := s.repo.LastMessage(ctx, me, row.PartnerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last message")
		}
		summary := ConversationSummary{
			PartnerID:     row.PartnerID,
			LastMessage:   toDTO(*last),
			LastMessageAt: last.CreatedAt,
			UnreadCount:   row.Unread,
		}
		if partner, err := s.accounts.FindByID(ctx, row.PartnerID); err == nil {
			summary.PartnerName = partner.BusinessName
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *service) loadAccount(ctx context.Context, id uuid.UUID, role string) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", role)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+role)
	}
	return account, nil
}

func preview(m *models.Message) string {
	if m.MessageType != enums.MessageTypeText {
		return "Sent you a " + string(m.MessageType)
	}
	runes := []rune(m.Body)
	if len(runes) <= previewRunes {
		return m.Body
	}
	return string(runes[:previewRunes]) + "..."
}
