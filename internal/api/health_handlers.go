package api

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string            `json:"status" example:"OK"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "OK", Timestamp: time.Now().UTC(), Checks: map[string]string{}}
	status := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		resp.Checks["database"] = err.Error()
		resp.Status = "DEGRADED"
		status = http.StatusServiceUnavailable
	} else {
		resp.Checks["database"] = "ok"
	}

	if s.blobs != nil {
		if err := s.blobs.Ping(ctx); err != nil {
			resp.Checks["storage"] = err.Error()
			resp.Status = "DEGRADED"
			status = http.StatusServiceUnavailable
		} else {
			resp.Checks["storage"] = "ok"
		}
	}

	writeJSON(w, status, resp)
}
