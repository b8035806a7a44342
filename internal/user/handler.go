package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/telvanni/user-directory/internal"
	"github.com/telvanni/user-directory/internal/session"
	"github.com/telvanni/user-directory/internal/transport"
	"github.com/telvanni/user-directory/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, caller *session.Session) ([]*User, error)
	Get(ctx context.Context, caller *session.Session, id string) (*User, error)
	Create(ctx context.Context, caller *session.Session, dto CreateUserDTO) (*User, error)
	Update(ctx context.Context, caller *session.Session, id string, dto UpdateUserDTO) (*User, error)
	Delete(ctx context.Context, caller *session.Session, id string) error
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

// caller pulls the session the authentication gate attached. A missing
// session means the route was mounted outside the gate.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok || sess == nil {
		h.Logger.Error("no session in request context", "path", r.URL.Path)
		h.WriteError(w, http.StatusForbidden, "not authenticated")
		return nil, false
	}
	return sess, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.Logger.Error("unexpected service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	users, err := h.Service.List(ctx, sess)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{user}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	u, err := h.Service.Get(ctx, sess, chi.URLParam(r, "user"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	u, err := h.Service.Create(ctx, sess, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// UpdateUser handles PUT /users/{user}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.caller(w, r)
	if !ok {
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	u, err := h.Service.Update(ctx, sess, chi.URLParam(r, "user"), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /users/{user}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := internal.WithTimeout(r.Context(), h.RequestTimeout)
	defer cancel()

	if err := h.Service.Delete(ctx, sess, chi.URLParam(r, "user")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
