package api

import (
	"net/http"
	"time"

	"metastor/internal/apperr"
	"metastor/internal/metrics"
)

// LoginRequest takes the wallet address as publicKey or, as older clients
// send it, pubKey.
type LoginRequest struct {
	PublicKey string `json:"publicKey,omitempty" validate:"required_without=PubKey" example:"9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"`
	PubKey    string `json:"pubKey,omitempty" validate:"required_without=PublicKey"`
	Signature string `json:"signature" validate:"required" example:"3q2+7w..."`
	Nonce     string `json:"nonce" validate:"required" example:"MetaStor Login 1717171717"`
}

type LoginUser struct {
	PubKey string `json:"pubKey"`
}

type LoginResponse struct {
	Success   bool      `json:"success" example:"true"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      LoginUser `json:"user"`
}

type NonceResponse struct {
	Nonce string `json:"nonce" example:"MetaStor Login 1717171717"`
}

type MeResponse struct {
	AccountID int64     `json:"accountId" example:"1"`
	PubKey    string    `json:"pubKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// @Summary      Wallet login
// @Description  Verifies an Ed25519 signature over the nonce and returns a one hour bearer token. The account is created on first login.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Signed challenge"
// @Success      200           {object}  LoginResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Failure      429           {object}  ErrorResponse
// @Router       /auth [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		metrics.RecordLogin("malformed")
		s.writeError(w, r, err)
		return
	}

	pubKey := req.PublicKey
	if pubKey == "" {
		pubKey = req.PubKey
	}

	session, err := s.auth.Login(r.Context(), pubKey, req.Signature, req.Nonce)
	if err != nil {
		metrics.RecordLogin(loginOutcome(err))
		s.writeError(w, r, err)
		return
	}
	metrics.RecordLogin("success")

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      LoginUser{PubKey: session.PubKey},
	})
}

func loginOutcome(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindMalformedInput:
		return "malformed"
	case apperr.KindInvalidSignature:
		return "invalid_signature"
	case apperr.KindUnauthorized:
		return "rejected_nonce"
	default:
		return "error"
	}
}

// @Summary      Login challenge
// @Description  Returns a fresh nonce for the wallet to sign.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  NonceResponse
// @Router       /auth/nonce [get]
func (s *Server) NonceHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NonceResponse{Nonce: s.auth.GenerateNonce()})
}

// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	resp := MeResponse{AccountID: claims.AccountID, PubKey: claims.PubKey}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}
