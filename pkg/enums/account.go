package enums

import "fmt"

// AccountType distinguishes the two sides of the marketplace.
type AccountType string

const (
	AccountTypeVendor   AccountType = "vendor"
	AccountTypeSupplier AccountType = "supplier"
)

var validAccountTypes = []AccountType{
	AccountTypeVendor,
	AccountTypeSupplier,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}

// OTPChannel is the delivery channel requested for a one-time password.
type OTPChannel string

const (
	OTPChannelSMS      OTPChannel = "sms"
	OTPChannelWhatsApp OTPChannel = "whatsapp"
)

// IsValid reports whether the channel is supported.
func (c OTPChannel) IsValid() bool {
	return c == OTPChannelSMS || c == OTPChannelWhatsApp
}

// ParseOTPChannel defaults empty input to sms.
func ParseOTPChannel(value string) (OTPChannel, error) {
	if value == "" {
		return OTPChannelSMS, nil
	}
	channel := OTPChannel(value)
	if !channel.IsValid() {
		return "", fmt.Errorf("invalid otp channel %q", value)
	}
	return channel, nil
}
