package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	"github.com/AadiSharma49/Street-Food-Solution/api/validators"
	"github.com/AadiSharma49/Street-Food-Solution/internal/messages"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
)

type sendMessageRequest struct {
	ReceiverID  uuid.UUID `json:"receiver_id" validate:"required"`
	Body        string    `json:"body" validate:"required"`
	MessageType string    `json:"message_type" validate:"omitempty,oneof=text image file"`
}

func SendMessage(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "messages")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		var req sendMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.Send(r.Context(), actor.AccountID, messages.SendInput{
			ReceiverID:  req.ReceiverID,
			Body:        req.Body,
			MessageType: enums.MessageType(req.MessageType),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, msg)
	}
}

// GetConversation returns one page of the thread with a partner, oldest first.
// Opening it marks the partner's messages read.
func GetConversation(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "messages")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		partnerID, err := validators.ParseURLUUID(r, "partnerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Conversation(r.Context(), actor.AccountID, partnerID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListConversations(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "messages")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		summaries, err := svc.Conversations(r.Context(), actor.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}
