package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AadiSharma49/Street-Food-Solution/api/responses"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/logger"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/realtime"
)

const defaultHeartbeat = 25 * time.Second

// RealtimeStream relays the caller's realtime channel as server-sent events.
// The subscription is released when the client disconnects.
func RealtimeStream(sub realtime.Subscriber, heartbeat time.Duration, logg *logger.Logger) http.HandlerFunc {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if sub == nil {
			serviceUnavailable(w, r, logg, "realtime")
			return
		}
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		ctx := r.Context()
		events, release, err := sub.Subscribe(ctx, actor.AccountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe realtime"))
			return
		}
		defer release()

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case evt, ok := <-events:
				if !ok {
					return
				}
				data, err := json.Marshal(evt)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "realtime.encode_failed", err)
					}
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
