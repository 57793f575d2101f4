package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	service string
	db      Pinger
}

func NewHealthHandler(service string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message,omitempty"`
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.response("ok", ""))
}

// Ready reports 503 when the database does not answer within two seconds.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, h.response("fail", err.Error()))
		return
	}
	WriteJSON(w, http.StatusOK, h.response("ok", ""))
}

func (h *HealthHandler) response(status, msg string) healthResponse {
	return healthResponse{
		Status:    status,
		Service:   h.service,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   msg,
	}
}
