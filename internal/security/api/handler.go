// Package api exposes the security service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/aitooling/internal/common"
	"github.com/dmitrijs2005/aitooling/internal/httpx"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/dmitrijs2005/aitooling/internal/security/models"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidBody        = "Invalid request body"
	msgUsernameTaken      = "Username already exists"
	msgRegisterFailed     = "An error occurred while registering the user"
	msgLoginFailed        = "An error occurred while logging in"

	maxBodySize = 1 << 20
)

// AuthService is implemented by services.AuthService.
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, bool, error)
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Role     string `json:"role" validate:"max=50"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type registerResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// fieldMessages is keyed by struct field, then validator tag.
var fieldMessages = map[string]map[string]string{
	"Username": {
		"required": "Username is required",
		"max":      "Username must be between 1 and 100 characters",
	},
	"Password": {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
		"max":      "Password must be at least 6 characters",
	},
	"Role": {
		"max": "Role cannot exceed 50 characters",
	},
}

type Handler struct {
	auth     AuthService
	validate *validator.Validate
	logger   logging.Logger

	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
}

func NewHandler(auth AuthService, reg prometheus.Registerer, logger logging.Logger) *Handler {
	f := promauto.With(reg)
	return &Handler{
		auth:     auth,
		validate: validator.New(),
		logger:   logger.With("module", "auth_api"),
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "security",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "security",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgInvalidBody
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.StructField()][fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		h.registrations.WithLabelValues("invalid").Inc()
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			h.registrations.WithLabelValues("conflict").Inc()
			httpx.WriteError(w, http.StatusConflict, msgUsernameTaken)
			return
		}
		h.logger.Error(r.Context(), "registration failed", "error", err)
		h.registrations.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	h.registrations.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, registerResponse{ID: user.ID, Username: user.Username, Role: user.Role})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		h.logins.WithLabelValues("invalid").Inc()
		return
	}

	token, ok, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error(r.Context(), "login failed", "error", err)
		h.logins.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, msgLoginFailed)
		return
	}
	if !ok {
		h.logger.Info(r.Context(), "invalid credentials")
		h.logins.WithLabelValues("rejected").Inc()
		httpx.WriteError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	h.logins.WithLabelValues("ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}
