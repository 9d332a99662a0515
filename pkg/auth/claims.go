package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

// AccessTokenPayload is what the auth service knows when it mints a token.
type AccessTokenPayload struct {
	AccountID   uuid.UUID
	AccountType enums.AccountType
	Phone       string
	// JTI doubles as the session id; a fresh uuid is used when empty.
	JTI string
}

type AccessTokenClaims struct {
	AccountID   uuid.UUID         `json:"account_id"`
	AccountType enums.AccountType `json:"account_type"`
	Phone       string            `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Validate runs after the registered-claim checks (jwt.ClaimsValidator).
func (c AccessTokenClaims) Validate() error {
	switch {
	case c.AccountID == uuid.Nil:
		return errors.New("token has no account id")
	case !c.AccountType.IsValid():
		return errors.New("token has an unknown account type")
	case c.Subject != c.AccountID.String():
		return errors.New("token subject does not match account")
	case c.ID == "":
		return errors.New("token has no jti")
	}
	return nil
}
