package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"metastor/internal/apperr"
)

type EventResponse struct {
	ID        int64           `json:"id" example:"123"`
	EventType string          `json:"event_type" example:"subscription.activated"`
	EventTime time.Time       `json:"event_time"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
}

// @Summary      Get new events
// @Description  Retrieves the events journaled for the account since a given event ID. Used by clients to catch up after a websocket reconnect.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "The ID of the last event received. Omit or use 0 to get all events."
// @Success      200    {array}   EventResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil {
		s.writeError(w, r, apperr.MalformedInput("invalid 'since' parameter, must be a number"))
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), claims.AccountID, sinceID)
	if err != nil {
		s.writeError(w, r, apperr.Internal("failed to retrieve events", err))
		return
	}

	writeJSON(w, http.StatusOK, events)
}
