package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"metastor/internal/apperr"
	"metastor/internal/quota"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
)

type ErrorResponse struct {
	Error   apperr.Kind `json:"error" example:"MalformedInput"`
	Details string      `json:"details" example:"signature is not valid base64"`
	// Retryable is set when the same request may succeed later.
	Retryable bool `json:"retryable,omitempty"`
}

type QuotaExceededResponse struct {
	Error        apperr.Kind `json:"error" example:"QuotaExceeded"`
	Details      string      `json:"details"`
	CurrentUsage string      `json:"currentUsage" example:"103809024"`
	Limit        string      `json:"limit" example:"104857600"`
	FileSize     string      `json:"fileSize" example:"2097152"`
	Tier         string      `json:"tier" example:"free"`
}

type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the status of the error kind. Internal errors are
// logged and their cause is not echoed to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)

	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		writeJSON(w, kind.HTTPStatus(), QuotaExceededResponse{
			Error:        apperr.KindQuotaExceeded,
			Details:      "storage limit exceeded",
			CurrentUsage: strconv.FormatUint(exceeded.CurrentUsage, 10),
			Limit:        strconv.FormatUint(exceeded.Limit, 10),
			FileSize:     strconv.FormatUint(exceeded.FileSize, 10),
			Tier:         exceeded.Tier.String(),
		})
		return
	}

	detail := apperr.DetailOf(err)
	if kind == apperr.KindInternal {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		if !isAppError(err) {
			detail = "internal server error"
		}
	} else if kind.HTTPStatus() >= http.StatusInternalServerError {
		hlog.FromRequest(r).Warn().Err(err).Str("kind", string(kind)).Msg("upstream failure")
	}

	writeJSON(w, kind.HTTPStatus(), ErrorResponse{Error: kind, Details: detail, Retryable: kind.Retryable()})
}

func isAppError(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e)
}

// decodeJSON reads a request body into dst and runs struct validation.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.MalformedInput("invalid request body: %v", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.MalformedInput("field %s failed on %q", fe.Field(), fe.Tag())
		}
		return apperr.MalformedInput("%v", err)
	}
	return nil
}
