package auth

import (
	"github.com/AadiSharma49/Street-Food-Solution/internal/accounts"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// SendOTPInput requests a code for a phone number.
type SendOTPInput struct {
	Phone    string
	Channel  enums.OTPChannel
	ClientIP string
}

// SendOTPResult describes the pending code without revealing it.
type SendOTPResult struct {
	Phone     string           `json:"phone"`
	Channel   enums.OTPChannel `json:"channel"`
	ExpiresIn int              `json:"expires_in"`
}

// LoginInput exchanges a code for tokens.
type LoginInput struct {
	Phone    string
	Code     string
	ClientIP string
}

// RegisterInput creates an account after the code is verified.
type RegisterInput struct {
	Profile  accounts.RegisterInput
	Code     string
	ClientIP string
}

// TokenPair is the credential bundle handed to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse contains the tokens and profile produced by a successful login.
type AuthResponse struct {
	TokenPair
	Account *accounts.AccountDTO `json:"account"`
}
