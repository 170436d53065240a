package api

import (
	"net/http"
	"strconv"

	"metastor/internal/apperr"
	"metastor/internal/metrics"
	"metastor/internal/models"
	"metastor/internal/plans"
	"metastor/internal/subscription"
)

type SubscriptionResponse struct {
	Subscription *models.Subscription `json:"subscription"`
	Plan         plans.Plan           `json:"plan"`
	StorageLimit string               `json:"storageLimit" example:"104857600"`
	StorageUsed  string               `json:"storageUsed" example:"0"`
}

type PlansResponse struct {
	Plans    []subscription.PricedPlan `json:"plans"`
	SolPrice float64                   `json:"solPrice" example:"20"`
}

type SubscribeRequest struct {
	Tier   string `json:"tier" validate:"required" example:"pro"`
	Period string `json:"period" validate:"required,oneof=monthly yearly" example:"yearly"`
}

type ConfirmRequest struct {
	SubscriptionID int64  `json:"subscriptionId" validate:"required,gt=0" example:"42"`
	Signature      string `json:"signature" validate:"required"`
}

type ConfirmResponse struct {
	Success      bool                 `json:"success" example:"true"`
	Subscription *models.Subscription `json:"subscription"`
}

// @Summary      Current subscription
// @Description  Returns the active subscription, or the free plan when none is active, with storage usage.
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SubscriptionResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /subscription [get]
func (s *Server) GetSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sub, plan, err := s.subscriptions.Current(r.Context(), claims.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.subscriptions.StorageStatus(r.Context(), claims.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SubscriptionResponse{
		Subscription: sub,
		Plan:         plan,
		StorageLimit: strconv.FormatUint(plan.StorageLimitBytes, 10),
		StorageUsed:  strconv.FormatUint(status.Used, 10),
	})
}

// @Summary      Plan catalog
// @Description  Lists every plan with prices converted at the current oracle rate.
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PlansResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /subscription/plans [get]
func (s *Server) GetPlansHandler(w http.ResponseWriter, r *http.Request) {
	priced, price, err := s.subscriptions.Plans(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlansResponse{Plans: priced, SolPrice: price})
}

// @Summary      Quote a subscription
// @Description  Prices the tier and period, stores an unactivated subscription and returns the unsigned transfer for the wallet to sign.
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        subscribeRequest  body      SubscribeRequest  true  "Tier and period"
// @Success      200               {object}  subscription.Quote
// @Failure      400               {object}  ErrorResponse
// @Failure      503               {object}  ErrorResponse
// @Router       /subscription/subscribe [post]
func (s *Server) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req SubscribeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tier, err := models.ParseTier(req.Tier)
	if err != nil {
		s.writeError(w, r, apperr.InvalidTier(req.Tier))
		return
	}
	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		s.writeError(w, r, apperr.MalformedInput("%v", err))
		return
	}

	quote, err := s.subscriptions.Quote(r.Context(), claims.AccountID, tier, period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.RecordQuote(tier.String(), period.String())

	writeJSON(w, http.StatusOK, quote)
}

// @Summary      Confirm a subscription payment
// @Description  Waits for the ledger to confirm the signed transfer, then activates the subscription and deactivates the previous one.
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        confirmRequest  body      ConfirmRequest  true  "Subscription and transaction signature"
// @Success      200             {object}  ConfirmResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      402             {object}  ErrorResponse "Transaction failed on the ledger"
// @Failure      403             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse
// @Failure      504             {object}  ErrorResponse "Confirmation timed out, retry with the same signature"
// @Router       /subscription/confirm [post]
func (s *Server) ConfirmSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req ConfirmRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sub, err := s.subscriptions.Confirm(r.Context(), claims.AccountID, req.SubscriptionID, req.Signature)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmResponse{Success: true, Subscription: sub})
}

// @Summary      Storage usage
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  subscription.StorageStatus
// @Failure      401  {object}  ErrorResponse
// @Router       /subscription/storage [get]
func (s *Server) StorageStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	status, err := s.subscriptions.StorageStatus(r.Context(), claims.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// @Summary      Payment history
// @Description  Lists up to 20 confirmed payments, newest first.
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   subscription.Payment
// @Failure      401  {object}  ErrorResponse
// @Router       /subscription/history [get]
func (s *Server) PaymentHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	history, err := s.subscriptions.History(r.Context(), claims.AccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
