package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// Message is a direct message between two accounts.
type Message struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	SenderID    uuid.UUID         `gorm:"column:sender_id;type:uuid;not null;index"`
	ReceiverID  uuid.UUID         `gorm:"column:receiver_id;type:uuid;not null;index"`
	Body        string            `gorm:"column:body;not null"`
	MessageType enums.MessageType `gorm:"column:message_type;not null;default:'text'"`
	ReadAt      *time.Time        `gorm:"column:read_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
