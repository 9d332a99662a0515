package middleware

import (
	"net/http"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

// RequireAccountType rejects requests from any other side of the marketplace.
func RequireAccountType(accountType enums.AccountType, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AccountTypeFromContext(r.Context()) != string(accountType) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, accountType.String()+" account required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
