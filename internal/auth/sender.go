package auth

import (
	"context"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

// Sender delivers a one-time code to a phone number.
type Sender interface {
	Send(ctx context.Context, phone string, channel enums.OTPChannel, code string) error
}

// LogSender writes codes to the log instead of an SMS gateway. The code is
// only included when revealCode is set, which the api does in dev.
type LogSender struct {
	logg       *logger.Logger
	revealCode bool
}

// NewLogSender builds the logging sender.
func NewLogSender(logg *logger.Logger, revealCode bool) *LogSender {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSender{logg: logg, revealCode: revealCode}
}

func (s *LogSender) Send(ctx context.Context, phone string, channel enums.OTPChannel, code string) error {
	fields := map[string]any{
		"phone":   maskPhone(phone),
		"channel": string(channel),
	}
	if s.revealCode {
		fields["code"] = code
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "otp dispatched")
	return nil
}
