package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
)

type contextKey string

const (
	ctxAccountID   contextKey = "account_id"
	ctxAccountType contextKey = "account_type"
	ctxAccessID    contextKey = "access_id"
)

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

func AccountTypeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountType).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// Actor bundles the authenticated account for handlers.
type Actor struct {
	AccountID   uuid.UUID
	AccountType enums.AccountType
}

// ActorFromContext parses the authenticated account; ok is false when the request is anonymous.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	id, err := uuid.Parse(AccountIDFromContext(ctx))
	if err != nil {
		return Actor{}, false
	}
	accountType, err := enums.ParseAccountType(AccountTypeFromContext(ctx))
	if err != nil {
		return Actor{}, false
	}
	return Actor{AccountID: id, AccountType: accountType}, true
}

// WithAccount injects the authenticated account into the context.
func WithAccount(ctx context.Context, accountID uuid.UUID, accountType enums.AccountType) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAccountID, accountID.String())
	return context.WithValue(ctx, ctxAccountType, string(accountType))
}
