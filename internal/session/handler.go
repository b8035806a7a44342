package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/telvanni/user-directory/internal"
	"github.com/telvanni/user-directory/internal/transport"
	"github.com/telvanni/user-directory/pkg/logger"
)

// LoginDTO is the transport shape for POST /session.
type LoginDTO struct {
	UserName string `json:"user_name"`
	Password string `json:"user_password"`
}

func (d LoginDTO) Validate() error {
	if d.UserName == "" {
		return errors.New("user_name is required")
	}
	if d.Password == "" {
		return errors.New("user_password is required")
	}
	return nil
}

type ServiceAPI interface {
	Login(ctx context.Context, userName, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Current(ctx context.Context, token string) (*Profile, error)
	Resolve(ctx context.Context, token string) (*Session, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	RequestTimeout time.Duration
}

func NewHandler(svc ServiceAPI, requestTimeout time.Duration) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        svc,
		RequestTimeout: requestTimeout,
	}
}

// Create handles POST /session. On success the token travels back in the
// X-Auth-Token response header only; the body carries no secret.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	token, err := h.Service.Login(ctx, dto.UserName, dto.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidLogin) {
			h.WriteError(w, http.StatusForbidden, "invalid user name or password")
			return
		}
		h.Logger.Error("login failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set(transport.HeaderAuthToken, token)
	w.WriteHeader(http.StatusOK)
}

// Delete handles DELETE /session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractToken(r)
	if token == "" {
		h.WriteError(w, http.StatusForbidden, "missing session token")
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	if err := h.Service.Logout(ctx, token); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			h.WriteError(w, http.StatusForbidden, "not logged in")
			return
		}
		h.Logger.Error("logout failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Show handles GET /session, returning the caller's own non-sensitive
// projection.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractToken(r)
	if token == "" {
		h.WriteError(w, http.StatusForbidden, "missing session token")
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	profile, err := h.Service.Current(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			h.WriteError(w, http.StatusNotFound, "session not found")
			return
		}
		h.Logger.Error("fetch session failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

// Authenticate is the gate every operation except session creation passes
// through. It resolves the token via the cache and rejects the request
// before any user store access happens.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractToken(r)
		if token == "" {
			h.WriteError(w, http.StatusForbidden, "missing session token")
			return
		}

		ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
		defer cancel()

		sess, err := h.Service.Resolve(ctx, token)
		if err != nil {
			h.Logger.Error("session resolution failed", "error", err)
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if sess == nil {
			h.WriteError(w, http.StatusForbidden, "invalid session token")
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}
