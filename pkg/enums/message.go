package enums

import "fmt"

// MessageType describes the body of a direct message.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// IsValid reports whether the value is a known MessageType.
func (m MessageType) IsValid() bool {
	switch m {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// ParseMessageType defaults empty input to text.
func ParseMessageType(value string) (MessageType, error) {
	if value == "" {
		return MessageTypeText, nil
	}
	if t := MessageType(value); t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("invalid message type %q", value)
}
