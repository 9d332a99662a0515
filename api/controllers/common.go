package controllers

import (
	"net/http"

	"github.com/AadiSharma49/Street-Food-Solution/api/middleware"
	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

// requireActor writes 401 and reports false when the request carries no account.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing"))
		return middleware.Actor{}, false
	}
	return actor, true
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}
