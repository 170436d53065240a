package api

import (
	"net/http"

	"metastor/internal/apperr"
	"metastor/internal/auth"
	"metastor/internal/websocket"
)

// @Summary      Event stream
// @Description  Upgrades to a websocket that pushes the account's events as they are journaled. Browsers cannot set headers on websocket requests, so the token travels in the query.
// @Tags         events
// @Param        token  query  string  true  "Bearer token"
// @Success      101
// @Failure      401  {object}  ErrorResponse
// @Router       /ws [get]
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		s.writeError(w, r, apperr.Unauthorized("missing token"))
		return
	}

	claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
	if err != nil {
		s.log.Debug().Err(err).Msg("ws connection attempt with invalid token")
		s.writeError(w, r, apperr.Unauthorized("invalid token"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(s.wsHub, conn, claims.AccountID)
	if !s.wsHub.Attach(client) {
		s.log.Debug().Int64("account_id", claims.AccountID).Msg("ws hub stopped, dropping connection")
		conn.Close()
		return
	}

	go client.ReadPump()
	go client.WritePump()
}
